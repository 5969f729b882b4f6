// Package scrape discovers wheel artifacts across the surfaces a wheel
// server and its project expose: per-commit directories, GitHub release
// assets, the nightly index, per-version directories, and legacy
// package-style indexes.
//
// Each surface is a Source. Discover enumerates candidate identifiers
// (commit hashes, release tags, version strings, package names) and
// ListArtifacts resolves one identifier to its artifacts. The Runner walks
// sources sequentially and assembles a snapshot.
package scrape

import (
	"context"

	"github.com/mgoin/vllm-wheels/pkg/snapshot"
	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

// Source is one scrapeable surface.
type Source interface {
	// Kind reports which snapshot key kind this source's identifiers map to.
	Kind() snapshot.SourceKind

	// Discover enumerates candidate identifiers, best first, at most limit.
	// An empty result is not an error.
	Discover(ctx context.Context, limit int) ([]string, error)

	// ListArtifacts resolves one identifier to its artifacts. A candidate
	// with no artifacts returns an empty slice.
	ListArtifacts(ctx context.Context, id string) ([]wheel.Artifact, error)
}

// key maps a source identifier to its snapshot key.
func key(kind snapshot.SourceKind, id string) snapshot.SourceKey {
	switch kind {
	case snapshot.KindRelease:
		return snapshot.ReleaseKey(id)
	case snapshot.KindVersion:
		return snapshot.VersionKey(id)
	case snapshot.KindNightly:
		return snapshot.NightlyKey()
	case snapshot.KindPackage:
		return snapshot.PackageKey(id)
	default:
		return snapshot.CommitKey(id)
	}
}
