package snapshot

import (
	"regexp"
	"strings"
)

// SourceKind identifies the surface an artifact group was scraped from.
type SourceKind string

const (
	KindCommit  SourceKind = "commit"
	KindRelease SourceKind = "release"
	KindVersion SourceKind = "version"
	KindNightly SourceKind = "nightly"
	KindPackage SourceKind = "package"
)

var commitHashRE = regexp.MustCompile(`^[a-f0-9]{40}$`)

// SourceKey names one group of artifacts in a snapshot. The rendered form
// follows the established key grammar: bare commit hashes, "release_<tag>",
// "version_<v>", "nightly", and bare package names for legacy index scrapes.
type SourceKey struct {
	Kind SourceKind
	ID   string
}

func CommitKey(hash string) SourceKey  { return SourceKey{Kind: KindCommit, ID: hash} }
func ReleaseKey(tag string) SourceKey  { return SourceKey{Kind: KindRelease, ID: tag} }
func VersionKey(v string) SourceKey    { return SourceKey{Kind: KindVersion, ID: v} }
func NightlyKey() SourceKey            { return SourceKey{Kind: KindNightly, ID: "nightly"} }
func PackageKey(name string) SourceKey { return SourceKey{Kind: KindPackage, ID: name} }

// String renders the key in its wire form.
func (k SourceKey) String() string {
	switch k.Kind {
	case KindRelease:
		return "release_" + k.ID
	case KindVersion:
		return "version_" + k.ID
	case KindNightly:
		return "nightly"
	default:
		return k.ID
	}
}

// ParseSourceKey recovers a typed key from its wire form. Keys that are
// neither prefixed, "nightly", nor 40-char commit hashes are treated as
// package keys.
func ParseSourceKey(s string) SourceKey {
	switch {
	case s == "nightly":
		return NightlyKey()
	case strings.HasPrefix(s, "release_"):
		return ReleaseKey(strings.TrimPrefix(s, "release_"))
	case strings.HasPrefix(s, "version_"):
		return VersionKey(strings.TrimPrefix(s, "version_"))
	case commitHashRE.MatchString(s):
		return CommitKey(s)
	default:
		return PackageKey(s)
	}
}
