package domain

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultDisplayVersion is rendered when no version is supplied by the
// environment.
const DefaultDisplayVersion = "1"

// Version is the application display version. The display string is shown
// verbatim on the page; when it parses as a (possibly partial) semantic
// version it also carries a canonical form used to label deploys.
type Version struct {
	display   string
	canonical *semver.Version
}

// NewVersion creates a Version from a raw environment value. Blank input
// falls back to DefaultDisplayVersion; this constructor never fails.
func NewVersion(raw string) *Version {
	display := strings.TrimSpace(raw)
	if display == "" {
		display = DefaultDisplayVersion
	}
	v := &Version{display: display}
	if sv, err := semver.NewVersion(display); err == nil {
		v.canonical = sv
	}
	return v
}

// Display returns the string rendered on the page.
func (v *Version) Display() string {
	return v.display
}

// IsSemver reports whether the display value parsed as a semantic version.
func (v *Version) IsSemver() bool {
	return v.canonical != nil
}

// Canonical returns the normalized semver form with a v prefix, or the
// display string unchanged when the value is not semver.
func (v *Version) Canonical() string {
	if v.canonical == nil {
		return v.display
	}
	return "v" + v.canonical.String()
}

// String returns the display form.
func (v *Version) String() string {
	return v.display
}
