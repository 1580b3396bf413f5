package logging

import "log/slog"

// DispatcherLogger satisfies dispatcher.Logger on top of slog. Every record
// carries component=dispatcher so command traces can be filtered out of the
// session log.
type DispatcherLogger struct {
	*slog.Logger
}

func NewDispatcherLogger(logger *slog.Logger) *DispatcherLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &DispatcherLogger{Logger: logger.With("component", "dispatcher")}
}
