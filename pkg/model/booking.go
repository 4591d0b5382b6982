package model

import (
	"time"
)

type Passenger struct {
	Name           string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	PassportNumber string `json:"passportNumber" bson:"passport_number" validate:"required,alphanum,min=5,max=20"`
	Age            int    `json:"age" bson:"age" validate:"gte=0,lte=130"`
}

// Booking records a reservation of one or more seats on a flight instance.
// Seats holds a copy of the seat records taken at reservation time.
type Booking struct {
	ID          string      `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      string      `json:"userId" bson:"user_id" validate:"required"`
	PlaneID     string      `json:"planeId" bson:"plane_id" validate:"required"`
	Seats       []Seat      `json:"seats" bson:"seats" validate:"required,min=1"`
	Passengers  []Passenger `json:"passengers" bson:"passengers" validate:"omitempty,dive"`
	TotalPrice  float64     `json:"totalPrice" bson:"total_price" validate:"gte=0"`
	BookingDate time.Time   `json:"bookingDate" bson:"booking_date"`
	TravelDate  time.Time   `json:"travelDate" bson:"travel_date" validate:"required"`
	TravelTime  string      `json:"travelTime" bson:"travel_time" validate:"required"`
	IsPaid      bool        `json:"isPaid" bson:"is_paid"`

	// ReservationID matches the ledger entries this booking holds.
	ReservationID string `json:"reservationId,omitempty" bson:"reservation_id,omitempty"`
}

// SeatIDs lists the booked seat ids in booking order.
func (b *Booking) SeatIDs() []string {
	ids := make([]string, 0, len(b.Seats))
	for _, seat := range b.Seats {
		ids = append(ids, seat.ID)
	}
	return ids
}

func (b *Booking) FlightInstance() FlightInstance {
	return NewFlightInstance(b.PlaneID, b.TravelDate, b.TravelTime)
}

type PaymentRequest struct {
	BookingID  string      `json:"bookingId" validate:"required"`
	PlaneID    string      `json:"planeId" validate:"required"`
	SeatIDs    []string    `json:"seatIds" validate:"omitempty,dive,required"`
	UserID     string      `json:"userId" validate:"required"`
	TotalPrice float64     `json:"totalPrice" validate:"gte=0"`
	TravelDate string      `json:"travelDate" validate:"omitempty,travel_date"`
	TravelTime string      `json:"travelTime" validate:"omitempty,travel_time"`
	Passengers []Passenger `json:"passengers" validate:"omitempty,dive"`
}

type ConfirmPaymentRequest struct {
	BookingID  string      `json:"bookingId" validate:"required"`
	Passengers []Passenger `json:"passengers" validate:"omitempty,dive"`

	// UserID is set from the caller's token. Empty skips the ownership check.
	UserID string `json:"-"`
}

type CancelBookingRequest struct {
	BookingID string `json:"bookingId" validate:"required"`
	UserID    string `json:"userId" validate:"required"`
}
