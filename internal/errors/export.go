package errors

import "errors"

// Standard library helpers, re-exported so that callers import one errors package.
var (
	As     = errors.As
	Is     = errors.Is
	Join   = errors.Join
	Unwrap = errors.Unwrap
)
