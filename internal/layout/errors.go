package layout

import (
	"fmt"

	"github.com/gruntwork-io/fpack/coords"
)

// PathDoesNotExistError is returned when a laid out feature-pack lacks a required file.
type PathDoesNotExistError struct {
	Path string
}

func (err PathDoesNotExistError) Error() string {
	return fmt.Sprintf("Failed to locate %s", err.Path)
}

// PackageNotFoundError is returned for a package a feature-pack does not contain.
type PackageNotFoundError struct {
	Gav     coords.Gav
	Package string
}

func (err PackageNotFoundError) Error() string {
	return fmt.Sprintf("Failed to resolve package %s in %s", err.Package, err.Gav)
}

// FeatureSpecNotFoundError is returned for a feature spec a feature-pack does not contain.
type FeatureSpecNotFoundError struct {
	Gav  coords.Gav
	Spec string
}

func (err FeatureSpecNotFoundError) Error() string {
	return fmt.Sprintf("Failed to locate feature spec %s in %s", err.Spec, err.Gav)
}

// FeatureGroupNotFoundError is returned for a feature group a feature-pack does not contain.
type FeatureGroupNotFoundError struct {
	Gav   coords.Gav
	Group string
}

func (err FeatureGroupNotFoundError) Error() string {
	return fmt.Sprintf("Failed to locate feature group %s in %s", err.Group, err.Gav)
}

// UnpackError is returned when an artifact cannot be laid out.
type UnpackError struct {
	Source string
	Dir    string
	Err    error
}

func (err UnpackError) Error() string {
	return fmt.Sprintf("Failed to unpack %s to %s: %v", err.Source, err.Dir, err.Err)
}

func (err UnpackError) Unwrap() error {
	return err.Err
}

// ValidationError reports one inconsistency of a feature-pack layout.
type ValidationError struct {
	Gav     coords.Gav
	Problem string
}

func (err ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Gav, err.Problem)
}
