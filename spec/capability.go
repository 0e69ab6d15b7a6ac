package spec

import "strings"

const (
	capabilitySeparator = "."
	capabilityParamMark = "$"
)

// CapabilityElement is one dot separated part of a capability name, either literal or
// the name of a feature param whose value is substituted.
type CapabilityElement struct {
	Value string
	Param bool
}

// CapabilitySpec is a capability name that may reference feature params, e.g. `org.wildfly.$profile.$name`.
type CapabilitySpec struct {
	Elements []CapabilityElement
	Optional bool

	raw string
}

// ParseCapabilitySpec parses a dot separated capability name.
func ParseCapabilitySpec(str string, optional bool) (*CapabilitySpec, error) {
	if str == "" {
		return nil, InvalidCapabilityError{Value: str, Reason: "capability name is empty"}
	}

	parts := strings.Split(str, capabilitySeparator)
	elems := make([]CapabilityElement, len(parts))

	for i, part := range parts {
		if part == "" {
			return nil, InvalidCapabilityError{Value: str, Reason: "empty element"}
		}

		if name, ok := strings.CutPrefix(part, capabilityParamMark); ok {
			if name == "" {
				return nil, InvalidCapabilityError{Value: str, Reason: "param reference without a name"}
			}

			elems[i] = CapabilityElement{Value: name, Param: true}

			continue
		}

		elems[i] = CapabilityElement{Value: part}
	}

	return &CapabilitySpec{Elements: elems, Optional: optional, raw: str}, nil
}

// MustParseCapabilitySpec is like ParseCapabilitySpec but panics on malformed input.
func MustParseCapabilitySpec(str string, optional bool) *CapabilitySpec {
	capSpec, err := ParseCapabilitySpec(str, optional)
	if err != nil {
		panic(err)
	}

	return capSpec
}

// IsStatic reports whether the name resolves identically for every feature of the spec.
func (capSpec *CapabilitySpec) IsStatic() bool {
	for _, elem := range capSpec.Elements {
		if elem.Param {
			return false
		}
	}

	return true
}

func (capSpec *CapabilitySpec) String() string {
	return capSpec.raw
}
