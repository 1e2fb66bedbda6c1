package logging

import (
	"context"

	"github.com/sirupsen/logrus"
	ordercore "github.com/terraskye/ordercore"
)

// WithEventLogging wraps an EventHandler so each dispatched event is logged
// at debug level with the correlation/causation IDs carried on the context
// by the envelope, and at error level when the handler fails (other than a
// deliberate ErrSkippedEvent).
func WithEventLogging(logger *logrus.Entry, next ordercore.EventHandler) ordercore.EventHandler {
	return ordercore.NewEventHandlerFunc(func(ctx context.Context, event ordercore.Event) error {
		fields := logrus.Fields{
			"event_type":     event.EventType(),
			"correlation_id": ordercore.CorrelationIDFromContext(ctx),
		}
		if causationID, ok := ordercore.CausationIDFromContext(ctx); ok {
			fields["causation_id"] = causationID.String()
		}
		if env, ok := ordercore.EnvelopeFromContext(ctx); ok {
			fields["aggregate_id"] = env.AggregateID.String()
			fields["version"] = env.Version
		}
		l := logger.WithFields(fields)

		l.Debug("event processing started")

		err := next.Handle(ctx, event)
		if err != nil {
			if _, skipped := err.(ordercore.ErrSkippedEvent); skipped {
				l.Debug("event skipped")
				return err
			}
			l.WithError(err).Error("event processing failed")
			return err
		}

		l.Debug("event processed successfully")
		return nil
	})
}
