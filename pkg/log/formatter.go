package log

import (
	"github.com/sirupsen/logrus"
)

const (
	PrettyFormatName   = "pretty"
	KeyValueFormatName = "key-value"
	JSONFormatName     = "json"
)

// NewFormatter returns a logrus formatter for the given format name, falling back to the pretty one.
func NewFormatter(name string) logrus.Formatter {
	switch name {
	case JSONFormatName:
		return &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyMsg:   FieldKeyMsg,
				logrus.FieldKeyLevel: FieldKeyLevel,
				logrus.FieldKeyTime:  FieldKeyTime,
			},
		}
	case KeyValueFormatName:
		return &logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		}
	default:
		return &logrus.TextFormatter{
			ForceColors:      false,
			DisableTimestamp: true,
			PadLevelText:     true,
		}
	}
}
