package versioning

import (
	"fmt"
	"regexp"
	"strconv"
)

// APIVersion is the semantic version of the host HTTP and bridge protocol
type APIVersion struct {
	Major      int    `json:"major"`
	Minor      int    `json:"minor"`
	Patch      int    `json:"patch"`
	Prerelease string `json:"prerelease,omitempty"`
}

// String returns the version as a string (e.g., "1.2.3" or "1.2.3-beta")
func (v APIVersion) String() string {
	version := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		version += "-" + v.Prerelease
	}
	return version
}

// Compare returns -1 if v < other, 0 if equal, 1 if v > other.
// A release sorts after any prerelease of the same version.
func (v APIVersion) Compare(other APIVersion) int {
	for _, d := range [][2]int{{v.Major, other.Major}, {v.Minor, other.Minor}, {v.Patch, other.Patch}} {
		if d[0] < d[1] {
			return -1
		}
		if d[0] > d[1] {
			return 1
		}
	}

	switch {
	case v.Prerelease == other.Prerelease:
		return 0
	case v.Prerelease == "":
		return 1
	case other.Prerelease == "":
		return -1
	case v.Prerelease < other.Prerelease:
		return -1
	default:
		return 1
	}
}

// Protocol versions
var (
	V1_0_0 = APIVersion{Major: 1, Minor: 0, Patch: 0}
	V1_1_0 = APIVersion{Major: 1, Minor: 1, Patch: 0} // events channel
)

// CurrentVersion is the protocol the host speaks
var CurrentVersion = V1_1_0

// MinimumSupportedVersion is the oldest client protocol the host still accepts
var MinimumSupportedVersion = V1_0_0

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-([a-zA-Z0-9\-\.]+))?$`)

// ParseVersion parses "MAJOR.MINOR.PATCH[-prerelease]"
func ParseVersion(versionStr string) (APIVersion, error) {
	matches := versionPattern.FindStringSubmatch(versionStr)
	if matches == nil {
		return APIVersion{}, fmt.Errorf("invalid version format: %s", versionStr)
	}

	parts := make([]int, 3)
	for i := range parts {
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return APIVersion{}, fmt.Errorf("invalid version component %q: %w", matches[i+1], err)
		}
		parts[i] = n
	}

	return APIVersion{Major: parts[0], Minor: parts[1], Patch: parts[2], Prerelease: matches[4]}, nil
}

// Compatibility describes whether the host can serve a requested version
type Compatibility struct {
	Requested  APIVersion `json:"requested_version"`
	Current    APIVersion `json:"current_version"`
	Compatible bool       `json:"compatible"`
	Reason     string     `json:"reason,omitempty"`
}

// CheckCompatibility accepts any version from MinimumSupportedVersion up to
// CurrentVersion within the same major version
func CheckCompatibility(requested APIVersion) Compatibility {
	c := Compatibility{Requested: requested, Current: CurrentVersion}

	switch {
	case requested.Compare(MinimumSupportedVersion) < 0:
		c.Reason = fmt.Sprintf("version %s is no longer supported, minimum is %s", requested, MinimumSupportedVersion)
	case requested.Major != CurrentVersion.Major || requested.Compare(CurrentVersion) > 0:
		c.Reason = fmt.Sprintf("version %s is not available, host speaks %s", requested, CurrentVersion)
	default:
		c.Compatible = true
	}
	return c
}

// SupportedRange returns the accepted range for response headers
func SupportedRange() string {
	return fmt.Sprintf("%s - %s", MinimumSupportedVersion, CurrentVersion)
}
