package coords

import (
	"path"
	"strings"
)

const (
	artifactFormat = "groupId:artifactId[:version[:classifier]]"

	// DefaultExtension is used when the coordinates do not name one.
	DefaultExtension = "jar"
)

// ArtifactCoords address a single file in an artifact repository.
type ArtifactCoords struct {
	GroupID    string
	ArtifactID string
	Version    string
	Classifier string
	Extension  string
}

// ParseArtifactCoords parses `groupId:artifactId[:version[:classifier]]`.
func ParseArtifactCoords(str string) (ArtifactCoords, error) {
	parts := strings.Split(str, ":")
	if len(parts) < 2 || len(parts) > 4 || parts[0] == "" || parts[1] == "" {
		return ArtifactCoords{}, InvalidCoordinatesError{Value: str, Format: artifactFormat}
	}

	coords := ArtifactCoords{GroupID: parts[0], ArtifactID: parts[1], Extension: DefaultExtension}

	if len(parts) > 2 {
		coords.Version = parts[2]
	}

	if len(parts) > 3 {
		coords.Classifier = parts[3]
	}

	return coords, nil
}

// Gav drops the classifier and extension.
func (coords ArtifactCoords) Gav() Gav {
	return Gav{GroupID: coords.GroupID, ArtifactID: coords.ArtifactID, Version: coords.Version}
}

// FileName returns `artifactId-version[-classifier].extension`.
func (coords ArtifactCoords) FileName() string {
	name := coords.ArtifactID + "-" + coords.Version
	if coords.Classifier != "" {
		name += "-" + coords.Classifier
	}

	if ext := coords.extension(); ext != "" {
		name += "." + ext
	}

	return name
}

// RepositoryPath returns the slash separated path of the artifact in a maven style repository.
func (coords ArtifactCoords) RepositoryPath() string {
	return path.Join(strings.ReplaceAll(coords.GroupID, ".", "/"), coords.ArtifactID, coords.Version, coords.FileName())
}

func (coords ArtifactCoords) String() string {
	parts := []string{coords.GroupID, coords.ArtifactID, coords.Version}
	if coords.Classifier != "" {
		parts = append(parts, coords.Classifier)
	}

	return strings.Join(parts, ":") + "@" + coords.extension()
}

func (coords ArtifactCoords) extension() string {
	if coords.Extension == "" {
		return DefaultExtension
	}

	return coords.Extension
}
