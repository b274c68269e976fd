package versions

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// EngineVersion is a database engine version. Percona images append a numeric release to
// the upstream version ("8.0.36-28"); that release orders builds of the same upstream
// version and is not a pre-release.
type EngineVersion struct {
	upstream *semver.Version
	release  int
}

// ParseEngineVersion parses versions like "16.3", "8.0.36-28" or "v7.0.12-7".
func ParseEngineVersion(s string) (*EngineVersion, error) {
	base, suffix, hasSuffix := strings.Cut(s, "-")
	if hasSuffix {
		if n, err := strconv.Atoi(suffix); err == nil && n >= 0 {
			upstream, err := semver.NewVersion(base)
			if err != nil {
				return nil, fmt.Errorf("invalid engine version %q: %w", s, err)
			}
			return &EngineVersion{upstream: upstream, release: n}, nil
		}
	}

	upstream, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("invalid engine version %q: %w", s, err)
	}
	return &EngineVersion{upstream: upstream}, nil
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o.
func (v *EngineVersion) Compare(o *EngineVersion) int {
	if c := v.upstream.Compare(o.upstream); c != 0 {
		return c
	}
	switch {
	case v.release < o.release:
		return -1
	case v.release > o.release:
		return 1
	default:
		return 0
	}
}

// String returns the version as it was parsed, without a leading "v".
func (v *EngineVersion) String() string {
	if v.release == 0 {
		return v.upstream.String()
	}
	return fmt.Sprintf("%s-%d", v.upstream, v.release)
}

// IsDowngrade reports whether moving from current to proposed goes back in version.
// Unparseable versions are never reported as a downgrade; validation rejects them.
func IsDowngrade(current, proposed string) bool {
	cur, err := ParseEngineVersion(current)
	if err != nil {
		return false
	}
	next, err := ParseEngineVersion(proposed)
	if err != nil {
		return false
	}
	return next.Compare(cur) < 0
}
