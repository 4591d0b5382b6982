package model

import "strconv"

// Seat is a physical seat of a plane. The availability flags are never
// stored on the seat document; they are filled per flight instance from the
// seat reservation ledger when seats are served to clients.
type Seat struct {
	ID      string `json:"id,omitempty" bson:"_id,omitempty"`
	PlaneID string `json:"planeId" bson:"plane_id" validate:"required"`
	Row     string `json:"row" bson:"row" validate:"required,numeric"`
	Column  string `json:"column" bson:"column" validate:"required,seat_column"`

	IsReserved bool   `json:"isReserved" bson:"-"`
	IsLocked   bool   `json:"isLocked" bson:"-"`
	UserID     string `json:"userId,omitempty" bson:"-"`
}

// Label renders the seat as printed on a boarding pass, e.g. "4B".
func (s Seat) Label() string {
	return s.Row + s.Column
}

// RowNumber parses Row. ok is false when the row is not an integer.
func (s Seat) RowNumber() (int, bool) {
	n, err := strconv.Atoi(s.Row)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SeatColumns is the column order of the cabin layout.
var SeatColumns = []string{"A", "B", "C", "D", "E", "F"}

// ColumnIndex returns the position of column in SeatColumns or -1.
func ColumnIndex(column string) int {
	for i, c := range SeatColumns {
		if c == column {
			return i
		}
	}
	return -1
}
