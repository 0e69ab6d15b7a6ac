package config

import "fmt"

// InvalidSpecFileError is returned when a file parses as HCL but holds an invalid value.
type InvalidSpecFileError struct {
	Path string
	Err  error
}

func (err InvalidSpecFileError) Error() string {
	return fmt.Sprintf("Invalid spec in %s: %v", err.Path, err.Err)
}

func (err InvalidSpecFileError) Unwrap() error {
	return err.Err
}

// FileWriteError is returned when a spec or state file cannot be written.
type FileWriteError struct {
	Path string
	Err  error
}

func (err FileWriteError) Error() string {
	return fmt.Sprintf("Failed to write %s: %v", err.Path, err.Err)
}

func (err FileWriteError) Unwrap() error {
	return err.Err
}
