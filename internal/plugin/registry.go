package plugin

import (
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/gruntwork-io/fpack/internal/errors"
)

// OptionTag is the struct tag DecodeOptions matches option names against.
const OptionTag = "option"

// Factory creates a plugin from its options.
type Factory func(options map[string]string) (Plugin, error)

// Registry maps plugin names to factories. It is safe for concurrent use.
type Registry struct {
	factories *xsync.MapOf[string, Factory]
}

func NewRegistry() *Registry {
	return &Registry{factories: xsync.NewMapOf[string, Factory]()}
}

// Register adds a factory under the given name.
func (reg *Registry) Register(name string, factory Factory) error {
	if _, loaded := reg.factories.LoadOrStore(name, factory); loaded {
		return errors.New(DuplicatePluginError{Name: name})
	}

	return nil
}

// Lookup returns the factory registered under the name.
func (reg *Registry) Lookup(name string) (Factory, bool) {
	return reg.factories.Load(name)
}

// Names returns the registered plugin names, sorted.
func (reg *Registry) Names() []string {
	var names []string

	reg.factories.Range(func(name string, _ Factory) bool {
		names = append(names, name)
		return true
	})

	sort.Strings(names)

	return names
}

// New creates the named plugin.
func (reg *Registry) New(name string, options map[string]string) (Plugin, error) {
	factory, ok := reg.Lookup(name)
	if !ok {
		return nil, errors.New(UnknownPluginError{Name: name})
	}

	plugin, err := factory(options)
	if err != nil {
		return nil, errors.New(PluginOptionsError{Name: name, Err: err})
	}

	return plugin, nil
}

// DecodeOptions decodes string options into the struct pointed to by out, matching the `option` tags.
// Values are converted to the field types; unknown options are an error.
func DecodeOptions(options map[string]string, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          OptionTag,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return errors.New(err)
	}

	if err := decoder.Decode(options); err != nil {
		return errors.New(err)
	}

	return nil
}
