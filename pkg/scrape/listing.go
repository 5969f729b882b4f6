package scrape

import (
	"strings"

	"github.com/mgoin/vllm-wheels/pkg/integrations/wheelserver"
	"github.com/mgoin/vllm-wheels/pkg/wheel"
)

// artifactsFromEntries converts listing entries to artifacts. Directory
// links are skipped. Wheel names that fail tag parsing are dropped; sdists
// are kept as source artifacts. decorate stamps provenance on each record.
func artifactsFromEntries(entries []wheelserver.Entry, decorate func(*wheel.Artifact)) []wheel.Artifact {
	var artifacts []wheel.Artifact
	for _, e := range entries {
		if e.IsDir {
			continue
		}
		switch {
		case strings.HasSuffix(e.Name, ".whl"):
			a := wheel.Parse(e.Name)
			if !a.IsWheel() {
				continue
			}
			a.URL = e.URL
			decorate(&a)
			artifacts = append(artifacts, a)
		case strings.HasSuffix(e.Name, ".tar.gz"), strings.HasSuffix(e.Name, ".zip"):
			a := wheel.Parse(e.Name)
			a.URL = e.URL
			decorate(&a)
			artifacts = append(artifacts, a)
		}
	}
	return artifacts
}
