package log_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/gruntwork-io/fpack/pkg/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		str      string
		expected log.Level
		wantErr  bool
	}{
		{"trace", log.TraceLevel, false},
		{"DEBUG", log.DebugLevel, false},
		{"info", log.InfoLevel, false},
		{"error", log.ErrorLevel, false},
		{"fatal", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.str, func(t *testing.T) {
			t.Parallel()

			level, err := log.ParseLevel(tc.str)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
			assert.Equal(t, tc.expected, log.FromLogrusLevel(level.ToLogrusLevel()))
		})
	}
}

func TestLoggerLevelsAndFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.New(log.WithOutput(&buf), log.WithLevel(log.DebugLevel), log.WithFormat(log.KeyValueFormatName))
	logger.WithField(log.FieldKeyFP, "org.test:fp1:1.0").Debugf("laid out %d packages", 3)
	logger.Tracef("hidden")

	assert.Contains(t, buf.String(), "laid out 3 packages")
	assert.Contains(t, buf.String(), "org.test:fp1:1.0")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Equal(t, log.DebugLevel, logger.Level())

	clone := logger.WithOptions(log.WithLevel(log.TraceLevel))
	assert.Equal(t, log.TraceLevel, clone.Level())
	assert.Equal(t, log.DebugLevel, logger.Level())
}

func TestLoggerFromContext(t *testing.T) {
	t.Parallel()

	logger := log.New()
	ctx := log.ContextWithLogger(context.Background(), logger)

	assert.Same(t, logger, log.LoggerFromContext(ctx))
	assert.Same(t, log.Default(), log.LoggerFromContext(context.Background()))
}
