package configstack

import (
	"github.com/gruntwork-io/fpack/pkg/log"
)

// Option is type for passing options to the Stack.
type Option func(*Stack)

// WithLogger sets the logger the stack reports ordering progress to.
func WithLogger(logger log.Logger) Option {
	return func(stack *Stack) {
		stack.logger = logger
	}
}
