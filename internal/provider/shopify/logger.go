package shopify

import (
	"context"
	"fmt"
	"log/slog"
)

// leveledLogger routes go-shopify's printf-style logging into slog.
type leveledLogger struct {
	logger *slog.Logger
}

func (l *leveledLogger) Debugf(format string, v ...any) { l.log(slog.LevelDebug, format, v) }
func (l *leveledLogger) Infof(format string, v ...any) { l.log(slog.LevelInfo, format, v) }
func (l *leveledLogger) Warnf(format string, v ...any) { l.log(slog.LevelWarn, format, v) }
func (l *leveledLogger) Errorf(format string, v ...any) { l.log(slog.LevelError, format, v) }

func (l *leveledLogger) log(level slog.Level, format string, v []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}
	l.logger.Log(ctx, level, fmt.Sprintf(format, v...))
}
