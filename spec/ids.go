// Package spec holds the declarative model of feature-packs: feature-pack, package and feature specs,
// feature groups, config models, provisioning requests and provisioned state, plus the identities
// used to address them.
package spec

import (
	"sort"
	"strings"

	"github.com/gruntwork-io/fpack/coords"
	"github.com/gruntwork-io/fpack/internal/errors"
)

const (
	originSeparator = "#"
	specSeparator   = ":"
	paramSeparator  = ","
	valueSeparator  = "="

	// encoding of IdParams, chosen so it never clashes with printable param values
	encPairSeparator  = "\x1e"
	encValueSeparator = "\x1f"
)

// SpecID references a feature spec, optionally in a feature-pack dependency named by Origin.
type SpecID struct {
	Origin string
	Name   string
}

// ParseSpecID parses `[origin#]name`.
func ParseSpecID(str string) (SpecID, error) {
	origin, name, found := strings.Cut(str, originSeparator)
	if !found {
		origin, name = "", str
	}

	if name == "" || (found && origin == "") {
		return SpecID{}, errors.New(InvalidIDError{Value: str, Format: "[origin#]spec"})
	}

	return SpecID{Origin: origin, Name: name}, nil
}

func (id SpecID) String() string {
	if id.Origin == "" {
		return id.Name
	}

	return id.Origin + originSeparator + id.Name
}

// IDParams is the canonical, comparable form of a set of identity parameters, ordered by name.
type IDParams string

// NewIDParams builds IDParams from a map.
func NewIDParams(params map[string]string) IDParams {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + encValueSeparator + params[name]
	}

	return IDParams(strings.Join(pairs, encPairSeparator))
}

// Param is a single name/value pair.
type Param struct {
	Name  string
	Value string
}

// Params returns the pairs ordered by name.
func (params IDParams) Params() []Param {
	if params == "" {
		return nil
	}

	pairs := strings.Split(string(params), encPairSeparator)
	result := make([]Param, len(pairs))

	for i, pair := range pairs {
		name, value, _ := strings.Cut(pair, encValueSeparator)
		result[i] = Param{Name: name, Value: value}
	}

	return result
}

// Map returns the params as a new map.
func (params IDParams) Map() map[string]string {
	result := make(map[string]string)
	for _, param := range params.Params() {
		result[param.Name] = param.Value
	}

	return result
}

// Get returns the value of the named param.
func (params IDParams) Get(name string) (string, bool) {
	for _, param := range params.Params() {
		if param.Name == name {
			return param.Value, true
		}
	}

	return "", false
}

// Len returns the number of params.
func (params IDParams) Len() int {
	if params == "" {
		return 0
	}

	return strings.Count(string(params), encPairSeparator) + 1
}

func (params IDParams) String() string {
	pairs := params.Params()
	strs := make([]string, len(pairs))

	for i, pair := range pairs {
		strs[i] = pair.Name + valueSeparator + pair.Value
	}

	return strings.Join(strs, paramSeparator)
}

// FeatureID identifies a feature by its spec and identity params, as written in a config.
type FeatureID struct {
	Spec   SpecID
	Params IDParams
}

// NewFeatureID returns a FeatureID for the given spec and id params.
func NewFeatureID(spec SpecID, params map[string]string) FeatureID {
	return FeatureID{Spec: spec, Params: NewIDParams(params)}
}

// ParseFeatureID parses `[origin#]spec:p1=v1[,p2=v2]`.
func ParseFeatureID(str string) (FeatureID, error) {
	specStr, paramsStr, found := strings.Cut(str, specSeparator)
	if !found || paramsStr == "" {
		return FeatureID{}, errors.New(InvalidIDError{Value: str, Format: "[origin#]spec:param=value[,param=value]"})
	}

	specID, err := ParseSpecID(specStr)
	if err != nil {
		return FeatureID{}, err
	}

	params := make(map[string]string)

	for _, pair := range strings.Split(paramsStr, paramSeparator) {
		name, value, ok := strings.Cut(pair, valueSeparator)
		if !ok || name == "" {
			return FeatureID{}, errors.New(InvalidIDError{Value: str, Format: "[origin#]spec:param=value[,param=value]"})
		}

		params[name] = value
	}

	return NewFeatureID(specID, params), nil
}

// MustParseFeatureID is like ParseFeatureID but panics on malformed input.
func MustParseFeatureID(str string) FeatureID {
	id, err := ParseFeatureID(str)
	if err != nil {
		panic(err)
	}

	return id
}

func (id FeatureID) String() string {
	return id.Spec.String() + specSeparator + id.Params.String()
}

// ResolvedSpecID is a feature spec name bound to the feature-pack that declares it.
type ResolvedSpecID struct {
	Gav  coords.Gav
	Name string
}

func (id ResolvedSpecID) String() string {
	return id.Gav.String() + originSeparator + id.Name
}

// ResolvedFeatureID is a feature identity bound to the feature-pack of its spec. It is comparable and
// used as the key of resolved features.
type ResolvedFeatureID struct {
	Spec   ResolvedSpecID
	Params IDParams
}

// NewResolvedFeatureID returns the id of a feature of the given spec.
func NewResolvedFeatureID(spec ResolvedSpecID, params map[string]string) ResolvedFeatureID {
	return ResolvedFeatureID{Spec: spec, Params: NewIDParams(params)}
}

// IsZero reports whether the id is unset, which is the case for features whose spec declares no id params.
func (id ResolvedFeatureID) IsZero() bool {
	return id == ResolvedFeatureID{}
}

func (id ResolvedFeatureID) String() string {
	return id.Spec.String() + specSeparator + id.Params.String()
}

// ConfigID identifies a config model. A config with a model and no name is model-only and is
// merged into the named configs of its model.
type ConfigID struct {
	Model string
	Name  string
}

// IsModelOnly reports whether the config carries only a model.
func (id ConfigID) IsModelOnly() bool {
	return id.Name == "" && id.Model != ""
}

func (id ConfigID) String() string {
	switch {
	case id.Model == "":
		return id.Name
	case id.Name == "":
		return id.Model
	}

	return id.Model + "/" + id.Name
}
