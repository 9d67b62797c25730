// Package version holds the validate_tagger release version.
package version

import (
	"github.com/maloquacious/semver"
)

var version = semver.Version{Major: 1, Minor: 0, Patch: 0, Build: semver.Commit()}

// Version returns the release version, with the VCS commit the binary was
// built from as build metadata.
func Version() semver.Version {
	return version
}
