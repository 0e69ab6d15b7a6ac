package configstack

import (
	"fmt"

	"github.com/gruntwork-io/fpack/spec"
)

// Custom error types

// UnresolvedFeatureDependencyError is returned when a dependency or reference of a feature points at a
// feature the config does not contain.
type UnresolvedFeatureDependencyError struct {
	Feature    string
	Dependency spec.ResolvedFeatureID
}

func (err UnresolvedFeatureDependencyError) Error() string {
	return fmt.Sprintf("%s has unresolved dependency on %s", err.Feature, err.Dependency)
}

// NoCapabilityProviderError is returned when no feature of the config provides a required capability.
type NoCapabilityProviderError struct {
	Feature    string
	Capability string
	// Resolved is the capability name after param substitution.
	Resolved string
}

func (err NoCapabilityProviderError) Error() string {
	if err.Resolved == err.Capability {
		return fmt.Sprintf("No provider found for capability %s required by %s", err.Capability, err.Feature)
	}

	return fmt.Sprintf("No provider found for capability %s required by %s as %s", err.Capability, err.Feature, err.Resolved)
}

// ConfigBuildError wraps the failure to order the features of a config.
type ConfigBuildError struct {
	Config spec.ConfigID
	Err    error
}

func (err ConfigBuildError) Error() string {
	msg := "Failed to build config"

	if err.Config.Model != "" {
		msg += " model " + err.Config.Model
	}

	if err.Config.Name != "" {
		msg += " named " + err.Config.Name
	}

	return msg + ": " + err.Err.Error()
}

func (err ConfigBuildError) Unwrap() error {
	return err.Err
}
