package navigation

import "log/slog"

var logger = slog.New(slog.DiscardHandler)

// SetLogger routes navigation diagnostics to l. A nil logger silences them.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	logger = l.With("component", "navigation")
}
