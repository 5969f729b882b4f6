package github

import "time"

// Commit is a single entry from the repository commits API.
type Commit struct {
	SHA string `json:"sha"`
}

// Release is a single entry from the repository releases API.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	PublishedAt time.Time `json:"published_at"`
	Prerelease  bool      `json:"prerelease"`
	Assets      []Asset   `json:"assets"`
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name               string    `json:"name"`
	BrowserDownloadURL string    `json:"browser_download_url"`
	Size               int64     `json:"size"`
	CreatedAt          time.Time `json:"created_at"`
}
