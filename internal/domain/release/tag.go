// internal/domain/release/tag.go
package release

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

// tagPattern accepts an optional leading "v" and exactly three numeric components.
var tagPattern = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

// BaseVersion is used whenever no usable tag exists.
var BaseVersion = NewVersion(1, 0, 0)

// Version is a release tag of the form v<major>.<minor>.<patch>.
type Version struct {
	sv *semver.Version
}

func NewVersion(major, minor, patch uint64) Version {
	return Version{sv: semver.New(major, minor, patch, "", "")}
}

func (v Version) Major() uint64 { return v.sem().Major() }
func (v Version) Minor() uint64 { return v.sem().Minor() }
func (v Version) Patch() uint64 { return v.sem().Patch() }

// NextPatch returns the version with the patch component raised by one.
func (v Version) NextPatch() Version {
	next := v.sem().IncPatch()
	return Version{sv: &next}
}

// Compare returns -1, 0 or 1 comparing (major, minor, patch) numerically.
func (v Version) Compare(o Version) int {
	return v.sem().Compare(o.sem())
}

func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// String renders the tag with a leading "v".
func (v Version) String() string {
	return fmt.Sprintf("v%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// sem guards the zero Version, which behaves like v0.0.0.
func (v Version) sem() *semver.Version {
	if v.sv == nil {
		return semver.New(0, 0, 0, "", "")
	}
	return v.sv
}

// ParseKind tells which branch ParseTag took.
type ParseKind int

const (
	Parsed ParseKind = iota
	Malformed
)

func (k ParseKind) String() string {
	switch k {
	case Parsed:
		return "parsed"
	case Malformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ParseResult is either Parsed (Version is set) or Malformed (Raw holds the rejected input).
type ParseResult struct {
	Kind    ParseKind
	Version Version
	Raw     string
}

// ParseTag matches s against ^v?(\d+)\.(\d+)\.(\d+)$.
func ParseTag(s string) ParseResult {
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return ParseResult{Kind: Malformed, Raw: s}
	}
	parts := make([]uint64, 3)
	for i := range parts {
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil { // overflow
			return ParseResult{Kind: Malformed, Raw: s}
		}
		parts[i] = n
	}
	return ParseResult{Kind: Parsed, Version: NewVersion(parts[0], parts[1], parts[2]), Raw: s}
}
