package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to the structured log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification at a level matching its type
func (l *LogNotifier) Send(_ context.Context, n Notification) error {
	fields := []zap.Field{
		zap.String("title", n.Title),
		zap.String("type", n.Type.String()),
	}
	if n.Kind != "" {
		fields = append(fields, zap.String("kind", n.Kind))
	}
	if n.UserID != "" {
		fields = append(fields, zap.String("user", n.UserID))
	}

	switch n.Type {
	case NotifyError:
		l.logger.Error(n.Message, fields...)
	case NotifyWarning:
		l.logger.Warn(n.Message, fields...)
	default:
		l.logger.Info(n.Message, fields...)
	}
	return nil
}
