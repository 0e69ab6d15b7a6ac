package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Option configures a logger instance.
type Option func(logger *logger)

// WithLevel sets the logging level.
func WithLevel(level Level) Option {
	return func(logger *logger) {
		logger.Logger.SetLevel(level.ToLogrusLevel())
	}
}

// WithOutput sets the writer the entries are written to.
func WithOutput(output io.Writer) Option {
	return func(logger *logger) {
		logger.Logger.SetOutput(output)
	}
}

// WithFormatter sets the logrus formatter.
func WithFormatter(formatter logrus.Formatter) Option {
	return func(logger *logger) {
		logger.Logger.SetFormatter(formatter)
	}
}

// WithHooks adds logrus hooks.
func WithHooks(hooks ...logrus.Hook) Option {
	return func(logger *logger) {
		for _, hook := range hooks {
			logger.Logger.AddHook(hook)
		}
	}
}

// WithFormat selects one of the built-in formats by name.
func WithFormat(name string) Option {
	return WithFormatter(NewFormatter(name))
}
