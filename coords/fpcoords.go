package coords

import "strings"

const fpCoordsFormat = "universe:family:branch[:classifier]:build"

// FeaturePackCoords is the universe based identity of a feature-pack.
type FeaturePackCoords struct {
	Universe   string
	Family     string
	Branch     string
	Classifier string
	Build      string
}

// ParseFeaturePackCoords parses `universe:family:branch[:classifier]:build`.
func ParseFeaturePackCoords(str string) (FeaturePackCoords, error) {
	parts := strings.Split(str, ":")

	var fpc FeaturePackCoords

	switch len(parts) {
	case 4:
		fpc = FeaturePackCoords{Universe: parts[0], Family: parts[1], Branch: parts[2], Build: parts[3]}
	case 5:
		fpc = FeaturePackCoords{Universe: parts[0], Family: parts[1], Branch: parts[2], Classifier: parts[3], Build: parts[4]}
	default:
		return FeaturePackCoords{}, InvalidCoordinatesError{Value: str, Format: fpCoordsFormat}
	}

	if fpc.Universe == "" || fpc.Family == "" || fpc.Branch == "" || fpc.Build == "" {
		return FeaturePackCoords{}, InvalidCoordinatesError{Value: str, Format: fpCoordsFormat}
	}

	return fpc, nil
}

func (fpc FeaturePackCoords) String() string {
	parts := []string{fpc.Universe, fpc.Family, fpc.Branch}
	if fpc.Classifier != "" {
		parts = append(parts, fpc.Classifier)
	}

	return strings.Join(append(parts, fpc.Build), ":")
}

// Gav maps the universe coordinates onto the legacy form: the universe becomes the group,
// family and classifier the artifact, branch and build the version.
func (fpc FeaturePackCoords) Gav() Gav {
	artifact := fpc.Family
	if fpc.Classifier != "" {
		artifact += "-" + fpc.Classifier
	}

	return Gav{GroupID: fpc.Universe, ArtifactID: artifact, Version: fpc.Branch + "." + fpc.Build}
}
