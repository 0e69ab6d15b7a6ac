package runtime

import (
	"fmt"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/spec"
)

// UnsatisfiedPackageDependencyError is returned when a required package is excluded. Package is empty
// when the package is requested by a feature-pack config, feature group or config rather than by
// another package.
type UnsatisfiedPackageDependencyError struct {
	Gav        coords.Gav
	Package    string
	Dependency string
}

func (err UnsatisfiedPackageDependencyError) Error() string {
	if err.Package == "" {
		return fmt.Sprintf("Unsatisfied dependency on package %s of %s", err.Dependency, err.Gav)
	}

	return fmt.Sprintf("Package %s of %s has unsatisfied dependency on package %s", err.Package, err.Gav, err.Dependency)
}

// UnsatisfiedExternalPackageDependencyError is returned when a package requires an excluded package of
// another feature-pack.
type UnsatisfiedExternalPackageDependencyError struct {
	Gav        coords.Gav
	Package    string
	Target     coords.Gav
	Dependency string
}

func (err UnsatisfiedExternalPackageDependencyError) Error() string {
	return fmt.Sprintf("Package %s of %s has unsatisfied dependency on package %s of %s", err.Package, err.Gav, err.Dependency, err.Target)
}

// UnknownFeaturePackDependencyError is returned for an origin that names no dependency of the feature-pack.
type UnknownFeaturePackDependencyError struct {
	Gav    coords.Gav
	Origin string
}

func (err UnknownFeaturePackDependencyError) Error() string {
	if err.Gav.IsZero() {
		return fmt.Sprintf("No requested feature-pack matches origin %s", err.Origin)
	}

	return fmt.Sprintf("%s has no feature-pack dependency named %s", err.Gav, err.Origin)
}

// UnknownFeatureSpecError is returned when no feature-pack in scope declares a spec.
type UnknownFeatureSpecError struct {
	Gav  coords.Gav
	Spec spec.SpecID
}

func (err UnknownFeatureSpecError) Error() string {
	if err.Gav.IsZero() {
		return fmt.Sprintf("Failed to locate feature spec %s", err.Spec)
	}

	return fmt.Sprintf("Failed to locate feature spec %s in %s or its dependencies", err.Spec, err.Gav)
}

// UnknownFeatureGroupError is returned when no feature-pack in scope declares a feature group.
type UnknownFeatureGroupError struct {
	Gav   coords.Gav
	Group string
}

func (err UnknownFeatureGroupError) Error() string {
	if err.Gav.IsZero() {
		return fmt.Sprintf("Failed to locate feature group %s", err.Group)
	}

	return fmt.Sprintf("Failed to locate feature group %s in %s or its dependencies", err.Group, err.Gav)
}

// UnknownParameterError is returned when a feature sets a param its spec does not declare.
type UnknownParameterError struct {
	Spec  spec.ResolvedSpecID
	Param string
}

func (err UnknownParameterError) Error() string {
	return fmt.Sprintf("Feature spec %s does not define parameter %s", err.Spec, err.Param)
}

// MissingIDParameterError is returned when a feature leaves an id param without value or default.
type MissingIDParameterError struct {
	Spec  spec.ResolvedSpecID
	Param string
}

func (err MissingIDParameterError) Error() string {
	return fmt.Sprintf("Feature of %s is missing value for id parameter %s", err.Spec, err.Param)
}

// FeatureGroupConfigError wraps the failure to resolve a feature group reference.
type FeatureGroupConfigError struct {
	Gav   coords.Gav
	Group string
	Err   error
}

func (err FeatureGroupConfigError) Error() string {
	return fmt.Sprintf("Failed to resolve feature group %s of %s: %v", err.Group, err.Gav, err.Err)
}

func (err FeatureGroupConfigError) Unwrap() error {
	return err.Err
}

// ConfigSpecError wraps the failure to resolve a config model.
type ConfigSpecError struct {
	Config spec.ConfigID
	Err    error
}

func (err ConfigSpecError) Error() string {
	msg := "Failed to resolve config"

	if err.Config.Model != "" {
		msg += " model " + err.Config.Model
	}

	if err.Config.Name != "" {
		msg += " named " + err.Config.Name
	}

	return fmt.Sprintf("%s: %v", msg, err.Err)
}

func (err ConfigSpecError) Unwrap() error {
	return err.Err
}

// InstallError wraps a failure while moving the staged installation into place.
type InstallError struct {
	Dir string
	Err error
}

func (err InstallError) Error() string {
	return fmt.Sprintf("Failed to install into %s: %v", err.Dir, err.Err)
}

func (err InstallError) Unwrap() error {
	return err.Err
}
