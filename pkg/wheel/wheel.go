// Package wheel parses Python package artifact filenames.
//
// A wheel filename follows the packaging convention
// {name}-{version}(-{build})?-{python tag}-{abi tag}-{platform tag}.whl.
// Parse classifies a filename as a wheel, a source distribution, or an
// unrecognized artifact and extracts the tag fields for wheels. The parser
// is pure: it performs no I/O and never fails, returning an Artifact with
// TypeUnknown for anything it cannot decode.
package wheel

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Type classifies an artifact by its filename.
type Type string

const (
	// TypeWheel is a prebuilt binary artifact with compatibility tags.
	TypeWheel Type = "wheel"

	// TypeSource is a source distribution (.tar.gz or .zip).
	TypeSource Type = "source"

	// TypeUnknown is anything the parser cannot classify.
	TypeUnknown Type = "unknown"
)

// filenameRE splits a wheel filename into name, version, optional build tag,
// python tag, abi tag, and platform tag segments.
var filenameRE = regexp.MustCompile(`^(.+?)-(.+?)(?:-(.+?))?-(.+?)-(.+?)-(.+?)\.whl$`)

// Artifact is a normalized record for a single discovered file.
//
// Tag fields are only populated for wheels. The provenance fields (Commit,
// ReleaseTag, Source, VersionDirectory) are attached by the source adapter
// that discovered the file, not by the parser. An Artifact is never mutated
// after the adapter returns it.
type Artifact struct {
	Filename    string `json:"filename"`
	Type        Type   `json:"type"`
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	BuildTag    string `json:"build_tag,omitempty"`
	PythonTag   string `json:"python_tag,omitempty"`
	ABITag      string `json:"abi_tag,omitempty"`
	PlatformTag string `json:"platform_tag,omitempty"`
	URL         string `json:"url,omitempty"`
	Size        int64  `json:"size,omitempty"`

	// Provenance, one of the following depending on the discovering adapter.
	Commit           string `json:"commit,omitempty"`
	ReleaseTag       string `json:"release_tag,omitempty"`
	Source           string `json:"source,omitempty"`
	VersionDirectory string `json:"version_directory,omitempty"`
}

// IsWheel reports whether the artifact is a wheel.
func (a Artifact) IsWheel() bool { return a.Type == TypeWheel }

// Parse decodes a filename into an Artifact.
//
// Wheel filenames yield TypeWheel with all tag fields populated;
// percent-encoded characters in the version segment are decoded
// ("0.6.1.post1%2Bcu118" becomes "0.6.1.post1+cu118"). Filenames ending in
// .tar.gz or .zip yield TypeSource with no tag fields. Everything else,
// including .whl names that do not match the segment pattern, yields
// TypeUnknown.
func Parse(filename string) Artifact {
	if strings.HasSuffix(filename, ".tar.gz") || strings.HasSuffix(filename, ".zip") {
		return Artifact{Filename: filename, Type: TypeSource}
	}
	m := filenameRE.FindStringSubmatch(filename)
	if m == nil {
		return Artifact{Filename: filename, Type: TypeUnknown}
	}
	version := m[2]
	if decoded, err := url.PathUnescape(version); err == nil {
		version = decoded
	}
	return Artifact{
		Filename:    filename,
		Type:        TypeWheel,
		Name:        m[1],
		Version:     version,
		BuildTag:    m[3],
		PythonTag:   m[4],
		ABITag:      m[5],
		PlatformTag: m[6],
	}
}

// WheelFilename reassembles the canonical filename from the parsed fields.
// For non-wheel artifacts it returns Filename unchanged. The version segment
// is emitted in its decoded form, so round-tripping a percent-encoded
// filename yields the normalized spelling.
func (a Artifact) WheelFilename() string {
	if a.Type != TypeWheel {
		return a.Filename
	}
	if a.BuildTag != "" {
		return fmt.Sprintf("%s-%s-%s-%s-%s-%s.whl", a.Name, a.Version, a.BuildTag, a.PythonTag, a.ABITag, a.PlatformTag)
	}
	return fmt.Sprintf("%s-%s-%s-%s-%s.whl", a.Name, a.Version, a.PythonTag, a.ABITag, a.PlatformTag)
}
