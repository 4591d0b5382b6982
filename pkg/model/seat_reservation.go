package model

import (
	"fmt"
	"strings"
	"time"
)

// TravelDateLayout is the wire format of travel dates.
const TravelDateLayout = "2006-01-02"

// FlightInstance is a plane flying on a given date at a given time. Seat
// availability is tracked independently per flight instance.
type FlightInstance struct {
	PlaneID    string
	TravelDate time.Time
	TravelTime string
}

// NewFlightInstance normalizes the date and trims the time.
func NewFlightInstance(planeID string, travelDate time.Time, travelTime string) FlightInstance {
	return FlightInstance{
		PlaneID:    planeID,
		TravelDate: NormalizeTravelDate(travelDate),
		TravelTime: strings.TrimSpace(travelTime),
	}
}

// SeatKey is the ledger document id for seatID on this flight instance. At
// most one ledger entry can exist per key.
func (f FlightInstance) SeatKey(seatID string) string {
	return fmt.Sprintf("%s|%s|%s|%s", f.PlaneID, f.TravelDate.Format(TravelDateLayout), f.TravelTime, seatID)
}

func (f FlightInstance) String() string {
	return fmt.Sprintf("%s@%s %s", f.PlaneID, f.TravelDate.Format(TravelDateLayout), f.TravelTime)
}

// NormalizeTravelDate drops the clock part so the same calendar day always
// maps to the same flight instance.
func NormalizeTravelDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseTravelDate accepts a plain calendar date or an RFC 3339 timestamp.
func ParseTravelDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(TravelDateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("travel date %q must be YYYY-MM-DD or RFC 3339", s)
	}
	return NormalizeTravelDate(t), nil
}

// SeatReservation is the availability ledger entry of one seat on one flight
// instance. A missing entry means the seat is free.
type SeatReservation struct {
	ID         string    `json:"id" bson:"_id"`
	PlaneID    string    `json:"planeId" bson:"plane_id"`
	SeatID     string    `json:"seatId" bson:"seat_id"`
	TravelDate time.Time `json:"travelDate" bson:"travel_date"`
	TravelTime string    `json:"travelTime" bson:"travel_time"`
	UserID     string    `json:"userId,omitempty" bson:"user_id"`
	IsReserved bool      `json:"isReserved" bson:"is_reserved"`
	IsLocked   bool      `json:"isLocked" bson:"is_locked"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`

	// ReservationID ties a reserved entry to the booking created with it.
	ReservationID string `json:"reservationId,omitempty" bson:"reservation_id,omitempty"`
}

// Held reports whether the entry blocks other users from taking the seat.
func (r *SeatReservation) Held() bool {
	return r.IsReserved || r.IsLocked
}
