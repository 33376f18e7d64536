package release

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Release is one published upstream release of the iRock Modbus definition
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	ZipballURL  string    `json:"zipball_url"`
	PublishedAt time.Time `json:"published_at"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
}

// Version parses the release tag as a semantic version.
// A leading "v" prefix on the tag is tolerated.
func (r Release) Version() (*semver.Version, error) {
	return semver.NewVersion(strings.TrimPrefix(r.TagName, "v"))
}

// Filter returns the releases worth processing: drafts are always
// dropped, prereleases only kept when includePrerelease is set.
func Filter(releases []Release, includePrerelease bool) []Release {
	kept := []Release{}
	for _, r := range releases {
		if r.Draft {
			continue
		}
		if r.Prerelease && !includePrerelease {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
