package artifact

import (
	"fmt"

	"github.com/gruntwork-io/fpack/coords"
)

// ResolutionError is returned when an artifact cannot be found or downloaded.
type ResolutionError struct {
	Artifact coords.ArtifactCoords
	Reason   string
	Err      error
}

func (err ResolutionError) Error() string {
	msg := fmt.Sprintf("Failed to resolve artifact %s: %s", err.Artifact, err.Reason)
	if err.Err != nil {
		msg += ": " + err.Err.Error()
	}

	return msg
}

func (err ResolutionError) Unwrap() error {
	return err.Err
}
