package commands

import "fmt"

// MissingArgumentError is returned when a command lacks a required argument or flag.
type MissingArgumentError struct {
	Name string
}

func (err MissingArgumentError) Error() string {
	return fmt.Sprintf("missing %s", err.Name)
}
