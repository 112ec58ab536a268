package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. Timestamps look like "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// stage times one step of a command. The start is logged at debug level
// and the end at info level with an "elapsed" field.
type stage struct {
	logger *log.Logger
	name   string
	start  time.Time
}

func startStage(l *log.Logger, name string, keyvals ...any) *stage {
	l.Debug(name+" started", keyvals...)
	return &stage{logger: l, name: name, start: time.Now()}
}

// end logs the stage with keyvals appended after the elapsed time.
func (s *stage) end(keyvals ...any) {
	kv := append([]any{"elapsed", time.Since(s.start).Round(time.Millisecond)}, keyvals...)
	s.logger.Info(s.name, kv...)
}
