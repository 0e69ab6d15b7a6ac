package plugin

import "fmt"

// UnknownPluginError is returned for a plugin name no factory is registered under.
type UnknownPluginError struct {
	Name string
}

func (err UnknownPluginError) Error() string {
	return fmt.Sprintf("Unknown plugin %s", err.Name)
}

// DuplicatePluginError is returned when a plugin name is registered twice.
type DuplicatePluginError struct {
	Name string
}

func (err DuplicatePluginError) Error() string {
	return fmt.Sprintf("Plugin %s is already registered", err.Name)
}

// PluginOptionsError is returned when a plugin rejects its options.
type PluginOptionsError struct {
	Name string
	Err  error
}

func (err PluginOptionsError) Error() string {
	return fmt.Sprintf("Invalid options of plugin %s: %v", err.Name, err.Err)
}

func (err PluginOptionsError) Unwrap() error {
	return err.Err
}

// PluginFailedError wraps the failure of a plugin.
type PluginFailedError struct {
	Name string
	Err  error
}

func (err PluginFailedError) Error() string {
	return fmt.Sprintf("Plugin %s failed: %v", err.Name, err.Err)
}

func (err PluginFailedError) Unwrap() error {
	return err.Err
}
