package notify

import (
	"go.uber.org/zap"

	"storefront-core/internal/util"
)

// Kind classifies a user-facing notification.
type Kind string

// Notification kinds.
const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindError   Kind = "error"
)

// Sink receives user-facing notifications emitted by the services. The UI
// layer supplies a toast implementation; the engine never renders anything
// itself.
type Sink interface {
	Notify(kind Kind, title, detail string)
}

// LogSink writes notifications to the logger. Default sink for headless
// runs and the demo binary.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink over the global logger.
func NewLogSink() *LogSink {
	return &LogSink{logger: util.GetLogger()}
}

func (s *LogSink) Notify(kind Kind, title, detail string) {
	s.logger.Info("Notification",
		zap.String("kind", string(kind)),
		zap.String("title", title),
		zap.String("detail", detail))
}

// NopSink drops all notifications.
type NopSink struct{}

func (NopSink) Notify(Kind, string, string) {}
