package validator

import (
	"fmt"
	"sort"

	apperrors "airseat/pkg/errors"
	"airseat/pkg/model"
)

type Kind string

const (
	KindTooManySeats     Kind = "TOO_MANY_SEATS"
	KindUnknownSeat      Kind = "UNKNOWN_SEAT"
	KindInvalidSeat      Kind = "INVALID_SEAT"
	KindLoneAisleSeat    Kind = "LONE_AISLE_SEAT"
	KindNonAdjacentSeats Kind = "NON_ADJACENT_SEATS"
	KindNonAdjacentRows  Kind = "NON_ADJACENT_ROWS"
)

const (
	// MaxSeats is the most seats one reservation may take, for every role.
	MaxSeats = 6

	// Rows from aisleRuleFromRow on have aisle-breaking B and E seats.
	aisleRuleFromRow = 4
)

// RuleViolation is a rejected seat selection.
type RuleViolation struct {
	Kind    Kind
	Message string
}

func (v *RuleViolation) Error() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Message)
}

func (v *RuleViolation) AppError() *apperrors.AppError {
	return apperrors.RuleViolation(string(v.Kind), v.Message)
}

// Policy is the seat selection policy applied before any seat is reserved.
type Policy struct {
	MaxSeats int
}

func NewPolicy() Policy {
	return Policy{MaxSeats: MaxSeats}
}

// Evaluate checks a selection. requested are the ids sent by the client and
// seats the records found for them on the plane. A nil result accepts the
// selection as a whole.
func (p Policy) Evaluate(requested []string, seats []model.Seat, role string) *RuleViolation {
	if violation := p.CheckSelection(requested, seats); violation != nil {
		return violation
	}

	if model.IsPrivilegedRole(role) {
		return nil
	}

	rows := make(map[int][]string)
	aisleSeats := 0
	for _, seat := range seats {
		row, ok := seat.RowNumber()
		if !ok {
			return &RuleViolation{
				Kind:    KindInvalidSeat,
				Message: fmt.Sprintf("Seat %s has an invalid row.", seat.Label()),
			}
		}
		if row >= aisleRuleFromRow && (seat.Column == "B" || seat.Column == "E") {
			aisleSeats++
		}
		rows[row] = append(rows[row], seat.Column)
	}

	if aisleSeats == 1 && len(seats) < 2 {
		return &RuleViolation{
			Kind:    KindLoneAisleSeat,
			Message: "These seats cannot be booked. Please try selecting multiple seats together.",
		}
	}

	rowNumbers := make([]int, 0, len(rows))
	for row, columns := range rows {
		sort.Strings(columns)
		for i := 0; i < len(columns)-1; i++ {
			if model.ColumnIndex(columns[i+1])-model.ColumnIndex(columns[i]) != 1 {
				return &RuleViolation{
					Kind:    KindNonAdjacentSeats,
					Message: "You can only book adjacent seats.",
				}
			}
		}
		rowNumbers = append(rowNumbers, row)
	}

	sort.Ints(rowNumbers)
	for i := 0; i < len(rowNumbers)-1; i++ {
		if rowNumbers[i+1]-rowNumbers[i] > 1 {
			return &RuleViolation{
				Kind:    KindNonAdjacentRows,
				Message: "You can only book seats in the same row or adjacent rows.",
			}
		}
	}

	return nil
}

// CheckSelection applies the checks every role is subject to: the seat count
// limit and that every requested id is a seat of the plane.
func (p Policy) CheckSelection(requested []string, seats []model.Seat) *RuleViolation {
	if len(requested) > p.MaxSeats {
		return &RuleViolation{
			Kind:    KindTooManySeats,
			Message: fmt.Sprintf("You cannot book more than %s seats at once.", spell(p.MaxSeats)),
		}
	}
	return CheckKnownSeats(requested, seats)
}

// CheckKnownSeats rejects ids that are not seats of the plane. seats are the
// records found for requested.
func CheckKnownSeats(requested []string, seats []model.Seat) *RuleViolation {
	if missing := unknownSeats(requested, seats); len(missing) > 0 {
		return &RuleViolation{
			Kind:    KindUnknownSeat,
			Message: fmt.Sprintf("Seats not found on this plane: %v", missing),
		}
	}
	return nil
}

func unknownSeats(requested []string, seats []model.Seat) []string {
	found := make(map[string]struct{}, len(seats))
	for _, seat := range seats {
		found[seat.ID] = struct{}{}
	}

	var missing []string
	for _, id := range requested {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

var numberWords = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten"}

func spell(n int) string {
	if n >= 0 && n < len(numberWords) {
		return numberWords[n]
	}
	return fmt.Sprint(n)
}
