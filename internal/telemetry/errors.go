package telemetry

import "fmt"

// UnknownTraceExporterError is returned for an exporter name that is not supported.
type UnknownTraceExporterError struct {
	Name string
}

func (err UnknownTraceExporterError) Error() string {
	return fmt.Sprintf("unknown trace exporter %q, supported exporters: %s, %s", err.Name, noneTraceExporterType, consoleTraceExporterType)
}
