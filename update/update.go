// Package update checks GitHub releases for a newer medassist client
// binary and swaps it in place. Checks are cached on disk so the TUI's
// background poll stays off the API between sessions.
package update

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Repo       = "varun-cu-unv/MedAssist"
	BinaryName = "medassist"
)

// Release is one downloadable client build.
type Release struct {
	Version     string
	AssetURL    string
	ChecksumURL string
}

type semver struct {
	major, minor, patch int
}

func parseSemver(v string) (semver, error) {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return semver{}, fmt.Errorf("invalid semver: %q", v)
	}
	var out semver
	for i, dst := range []*int{&out.major, &out.minor, &out.patch} {
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return semver{}, err
		}
		*dst = n
	}
	return out, nil
}

func (s semver) greaterThan(o semver) bool {
	if s.major != o.major {
		return s.major > o.major
	}
	if s.minor != o.minor {
		return s.minor > o.minor
	}
	return s.patch > o.patch
}

// NewerThan reports whether the release outranks the running version.
// Unparseable versions (dev builds) never trigger an update.
func (r Release) NewerThan(current string) bool {
	cur, err := parseSemver(current)
	if err != nil {
		return false
	}
	rel, err := parseSemver(r.Version)
	if err != nil {
		return false
	}
	return rel.greaterThan(cur)
}
