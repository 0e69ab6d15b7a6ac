package spec

import "fmt"

// InvalidIDError is returned for malformed spec and feature id strings.
type InvalidIDError struct {
	Value  string
	Format string
}

func (err InvalidIDError) Error() string {
	return fmt.Sprintf("%s does not follow format %s", err.Value, err.Format)
}

// InvalidCapabilityError is returned for malformed capability names.
type InvalidCapabilityError struct {
	Value  string
	Reason string
}

func (err InvalidCapabilityError) Error() string {
	return fmt.Sprintf("Invalid capability %q: %s", err.Value, err.Reason)
}
