package feature

import "fmt"

// ParamNotSetError is returned for a feature missing a value of a param that is not nillable.
type ParamNotSetError struct {
	Feature string
	Param   string
}

func (err ParamNotSetError) Error() string {
	return fmt.Sprintf("Non-nillable parameter %s of %s has not been initialized", err.Param, err.Feature)
}

// RefParamNotSetError is returned when a param a reference maps onto the target id is not set.
type RefParamNotSetError struct {
	Feature string
	Ref     string
	Param   string
}

func (err RefParamNotSetError) Error() string {
	return fmt.Sprintf("Reference %s of %s cannot be resolved: parameter %s is not set", err.Ref, err.Feature, err.Param)
}

// UnresolvedRefTargetError is returned for a reference whose target spec was never bound.
type UnresolvedRefTargetError struct {
	Feature string
	Ref     string
}

func (err UnresolvedRefTargetError) Error() string {
	return fmt.Sprintf("Target spec of reference %s of %s has not been resolved", err.Ref, err.Feature)
}

// CapabilityResolutionError is returned when a capability references a param the feature does not set.
type CapabilityResolutionError struct {
	Capability string
	Feature    string
	Param      string
}

func (err CapabilityResolutionError) Error() string {
	return fmt.Sprintf("Failed to resolve capability %s for %s: parameter %s is not set", err.Capability, err.Feature, err.Param)
}
