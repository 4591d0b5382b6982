package events

import (
	"context"

	"airseat/pkg/kafka"
	"airseat/pkg/logger"
)

// NewAuditHandler writes one structured log record per booking event.
func NewAuditHandler(log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		event, err := Decode(msg)
		if err != nil {
			return err
		}

		log.Info("Booking event",
			"event_type", msg.GetEventType(),
			"event_id", msg.GetEventID(),
			"correlation_id", msg.GetCorrelationID(),
			"booking_id", event.BookingID,
			"user_id", event.UserID,
			"plane_id", event.PlaneID,
			"seat_ids", event.SeatIDs,
			"total_price", event.TotalPrice,
			"travel_date", event.TravelDate,
			"travel_time", event.TravelTime,
			"occurred_at", event.OccurredAt,
			"partition", msg.Partition,
			"offset", msg.Offset,
		)
		return nil
	}
}
