// Package events dispatches user lifecycle messages drained from the
// user_events_queue. Handling is log-only for now; downstream side effects
// (mail, cache invalidation, cleanup) hang off the switch below.
package events

import (
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/davydenkov/user-manage/pkg/models"
)

// Handler decodes an event envelope and branches on its type. A decode
// failure returns an error so the delivery is nacked and requeued; an
// unknown event type is logged and acked, since redelivery cannot fix it.
func Handler(delivery amqp.Delivery) error {
	var envelope models.EventEnvelope
	if err := json.Unmarshal(delivery.Body, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	// Correlate with the originating request; fall back to the broker's own
	// message ID when the envelope carries no trace.
	traceID := envelope.TraceID
	if traceID == "" {
		traceID = delivery.MessageId
	}
	if traceID == "" {
		traceID = "unknown"
	}
	logger := log.With().Str("trace_id", traceID).Logger()

	switch envelope.EventType {
	case models.EventUserCreated:
		logger.Info().Int64("user_id", envelope.Data.UserID).Msg("received event user.created")
	case models.EventUserUpdated:
		logger.Info().Int64("user_id", envelope.Data.UserID).Msg("received event user.updated")
	case models.EventUserDeleted:
		logger.Info().Int64("user_id", envelope.Data.UserID).Msg("received event user.deleted")
	default:
		logger.Warn().
			Str("event_type", string(envelope.EventType)).
			Int64("user_id", envelope.Data.UserID).
			Msg("received unknown event type")
	}

	return nil
}
