package provision

import "fmt"

type InvalidPluginOptionError struct {
	Value string
}

func (err InvalidPluginOptionError) Error() string {
	return fmt.Sprintf("invalid plugin option %q, expected <plugin>.<option>=<value>", err.Value)
}
