// Package events publishes booking lifecycle events and decodes them on the
// consuming side.
package events

import (
	"context"
	"time"

	"airseat/pkg/kafka"
	"airseat/pkg/model"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingPaid      = "booking.paid"
	TypeBookingCancelled = "booking.cancelled"

	Source        = "airseat"
	SchemaVersion = "1"
)

// BookingEvent is the JSON payload of every booking event.
type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	UserID     string    `json:"user_id"`
	PlaneID    string    `json:"plane_id"`
	SeatIDs    []string  `json:"seat_ids"`
	TotalPrice float64   `json:"total_price"`
	TravelDate string    `json:"travel_date"`
	TravelTime string    `json:"travel_time"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingEvent(booking *model.Booking, occurredAt time.Time) BookingEvent {
	return BookingEvent{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		PlaneID:    booking.PlaneID,
		SeatIDs:    booking.SeatIDs(),
		TotalPrice: booking.TotalPrice,
		TravelDate: booking.TravelDate.Format(model.TravelDateLayout),
		TravelTime: booking.TravelTime,
		OccurredAt: occurredAt.UTC(),
	}
}

// Publisher emits booking events. Callers log failures and carry on.
type Publisher interface {
	Publish(ctx context.Context, eventType string, booking *model.Booking) error
	Close() error
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}

// Decode reads a booking event from msg. Malformed messages are permanent
// failures so the consumer dead-letters them instead of retrying.
func Decode(msg kafka.Message) (*BookingEvent, error) {
	var event BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return nil, kafka.NewPermanentError("failed to decode booking event", err)
	}
	if event.BookingID == "" {
		return nil, kafka.NewPermanentError("booking event without booking_id", nil)
	}
	switch msg.GetEventType() {
	case TypeBookingCreated, TypeBookingPaid, TypeBookingCancelled:
	default:
		return nil, kafka.NewPermanentError("unknown booking event type "+msg.GetEventType(), nil)
	}
	return &event, nil
}
