package logging_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/saadjs/nutrilog/internal/logging"
)

func TestNewLoggerLevels(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"WARN":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"loud":  zapcore.InfoLevel,
	}
	for level, want := range cases {
		for _, format := range []string{"json", "console"} {
			logger, err := logging.NewLogger(level, format, "nutrilog")
			if err != nil {
				t.Fatalf("new logger %q/%s: %v", level, format, err)
			}
			if !logger.Core().Enabled(want) {
				t.Fatalf("level %q: expected %s enabled", level, want)
			}
			if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
				t.Fatalf("level %q: expected %s disabled", level, want-1)
			}
		}
	}
}
