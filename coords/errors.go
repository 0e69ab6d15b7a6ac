package coords

import "fmt"

// InvalidCoordinatesError is returned for malformed coordinate strings.
type InvalidCoordinatesError struct {
	Value  string
	Format string
}

func (err InvalidCoordinatesError) Error() string {
	return fmt.Sprintf("%s does not follow format %s", err.Value, err.Format)
}

// FeaturePackVersionConflictError is returned when the same group:artifact is requested with two versions.
type FeaturePackVersionConflictError struct {
	Existing  Gav
	Requested Gav
}

func (err FeaturePackVersionConflictError) Error() string {
	return fmt.Sprintf("Feature-pack version conflict: %s is already resolved while %s was requested", err.Existing, err.Requested)
}
