// Package coords provides the immutable coordinates identifying feature-packs and artifacts.
package coords

import (
	"strings"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/hashicorp/go-version"
)

const (
	// FeaturePackExtension is the artifact extension of a packaged feature-pack.
	FeaturePackExtension = "zip"

	gavFormat = "groupId:artifactId[:version]"
)

// Ga is a group:artifact pair, the key under which a feature-pack may be laid out only once.
type Ga struct {
	GroupID    string
	ArtifactID string
}

func (ga Ga) String() string {
	return ga.GroupID + ":" + ga.ArtifactID
}

// Gav identifies a feature-pack by group, artifact and version. Version may be empty
// only before the feature-pack is resolved.
type Gav struct {
	GroupID    string
	ArtifactID string
	Version    string
}

// NewGav returns a Gav for the given parts.
func NewGav(groupID, artifactID, version string) Gav {
	return Gav{GroupID: groupID, ArtifactID: artifactID, Version: version}
}

// ParseGav parses `groupId:artifactId[:version]`.
func ParseGav(str string) (Gav, error) {
	parts := strings.Split(str, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Gav{}, errors.New(InvalidCoordinatesError{Value: str, Format: gavFormat})
	}

	for _, part := range parts {
		if part == "" {
			return Gav{}, errors.New(InvalidCoordinatesError{Value: str, Format: gavFormat})
		}
	}

	gav := Gav{GroupID: parts[0], ArtifactID: parts[1]}
	if len(parts) == 3 {
		gav.Version = parts[2]
	}

	return gav, nil
}

// MustParseGav is like ParseGav but panics on malformed input. Meant for tests and constants.
func MustParseGav(str string) Gav {
	gav, err := ParseGav(str)
	if err != nil {
		panic(err)
	}

	return gav
}

// Ga returns the group:artifact part.
func (gav Gav) Ga() Ga {
	return Ga{GroupID: gav.GroupID, ArtifactID: gav.ArtifactID}
}

// IsZero reports whether the Gav is unset.
func (gav Gav) IsZero() bool {
	return gav == Gav{}
}

// ArtifactCoords returns the coordinates of the packaged feature-pack artifact.
func (gav Gav) ArtifactCoords() ArtifactCoords {
	return ArtifactCoords{
		GroupID:    gav.GroupID,
		ArtifactID: gav.ArtifactID,
		Version:    gav.Version,
		Extension:  FeaturePackExtension,
	}
}

func (gav Gav) String() string {
	if gav.Version == "" {
		return gav.GroupID + ":" + gav.ArtifactID
	}

	return gav.GroupID + ":" + gav.ArtifactID + ":" + gav.Version
}

// Compare orders by group, artifact and then version, an empty version sorts first.
// Versions are compared semantically when both parse, lexically otherwise.
func (gav Gav) Compare(other Gav) int {
	if c := strings.Compare(gav.GroupID, other.GroupID); c != 0 {
		return c
	}

	if c := strings.Compare(gav.ArtifactID, other.ArtifactID); c != 0 {
		return c
	}

	return CompareVersions(gav.Version, other.Version)
}

// CompareVersions compares two version strings, an empty version sorts first.
func CompareVersions(a, b string) int {
	switch {
	case a == b:
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)

	if errA == nil && errB == nil {
		if c := va.Compare(vb); c != 0 {
			return c
		}
	}

	return strings.Compare(a, b)
}
