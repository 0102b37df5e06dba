package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/authkit-labs/auth-portal/internal/events"
	"github.com/authkit-labs/auth-portal/internal/observability"
)

var auditedEvents = []events.EventType{
	events.EventSessionStarted,
	events.EventSessionEnded,
	events.EventLoginFailed,
	events.EventResetCompleted,
}

// StartAuditWorker registers handlers that log and count auth lifecycle events.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range auditedEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, ev events.Event) error {
			metrics.RecordAuthEvent(string(ev.Type))
			logger.Info("auth event",
				zap.String("event_id", ev.ID),
				zap.String("type", string(ev.Type)),
				zap.String("subject", ev.Subject),
				zap.String("role", string(ev.Role)),
				zap.String("provider", string(ev.Provider)),
				zap.String("reason", ev.Reason),
			)
			return nil
		})
	}
}
