package log

const (
	FieldKeyPrefix  = "prefix"
	FieldKeyMsg     = "msg"
	FieldKeyLevel   = "level"
	FieldKeyTime    = "time"
	FieldKeyFP      = "fp"
	FieldKeyConfig  = "config"
	FieldKeyPackage = "package"
)

// Fields type, used to pass to `WithFields`.
type Fields map[string]any
