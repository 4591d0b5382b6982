package validator

import (
	"fmt"
	"testing"

	"airseat/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seatsFor builds seat records whose ids are their labels, e.g. "4B".
func seatsFor(labels ...string) ([]string, []model.Seat) {
	seats := make([]model.Seat, 0, len(labels))
	for _, label := range labels {
		seats = append(seats, model.Seat{
			ID:      label,
			PlaneID: "plane-1",
			Row:     label[:len(label)-1],
			Column:  label[len(label)-1:],
		})
	}
	return labels, seats
}

func TestPolicy_Evaluate(t *testing.T) {
	policy := NewPolicy()

	tests := []struct {
		name     string
		labels   []string
		role     string
		wantKind Kind
	}{
		{name: "single front seat", labels: []string{"1A"}, role: model.RoleUser},
		{name: "adjacent pair", labels: []string{"1A", "1B"}, role: model.RoleUser},
		{name: "gap in row", labels: []string{"1A", "1C"}, role: model.RoleUser, wantKind: KindNonAdjacentSeats},
		{name: "adjacent rows", labels: []string{"1A", "2A"}, role: model.RoleUser},
		{name: "row gap", labels: []string{"1A", "3A"}, role: model.RoleUser, wantKind: KindNonAdjacentRows},
		{name: "lone aisle seat", labels: []string{"4B"}, role: model.RoleUser, wantKind: KindLoneAisleSeat},
		{name: "lone E seat", labels: []string{"7E"}, role: model.RoleUser, wantKind: KindLoneAisleSeat},
		{name: "aisle seat with neighbour", labels: []string{"4B", "4C"}, role: model.RoleUser},
		{name: "B seat before row four", labels: []string{"3B"}, role: model.RoleUser},
		{name: "unordered input", labels: []string{"2C", "2A", "2B"}, role: model.RoleUser},
		{name: "full row", labels: []string{"5A", "5B", "5C", "5D", "5E", "5F"}, role: model.RoleUser},
		{name: "seven seats for user", labels: []string{"1A", "1B", "1C", "1D", "1E", "1F", "2A"}, role: model.RoleUser, wantKind: KindTooManySeats},
		{name: "seven seats for staff", labels: []string{"1A", "1B", "1C", "1D", "1E", "1F", "2A"}, role: model.RoleStaff, wantKind: KindTooManySeats},
		{name: "seven seats for management", labels: []string{"1A", "1B", "1C", "1D", "1E", "1F", "2A"}, role: model.RoleManagement, wantKind: KindTooManySeats},
		{name: "staff scattered seats", labels: []string{"1A", "9F", "4B"}, role: model.RoleStaff},
		{name: "management lone aisle seat", labels: []string{"4B"}, role: model.RoleManagement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requested, seats := seatsFor(tt.labels...)
			violation := policy.Evaluate(requested, seats, tt.role)

			if tt.wantKind == "" {
				assert.Nil(t, violation)
				return
			}
			require.NotNil(t, violation)
			assert.Equal(t, tt.wantKind, violation.Kind)
		})
	}
}

func TestPolicy_Evaluate_UnknownSeat(t *testing.T) {
	_, seats := seatsFor("1A")
	violation := NewPolicy().Evaluate([]string{"1A", "missing"}, seats, model.RoleStaff)

	require.NotNil(t, violation)
	assert.Equal(t, KindUnknownSeat, violation.Kind)
	assert.Contains(t, violation.Message, "missing")
}

func TestPolicy_Evaluate_InvalidRow(t *testing.T) {
	seats := []model.Seat{{ID: "x", PlaneID: "plane-1", Row: "first", Column: "A"}}
	violation := NewPolicy().Evaluate([]string{"x"}, seats, model.RoleUser)

	require.NotNil(t, violation)
	assert.Equal(t, KindInvalidSeat, violation.Kind)
}

func TestPolicy_Messages(t *testing.T) {
	policy := NewPolicy()
	assert.Equal(t, 6, policy.MaxSeats)

	labels := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		labels = append(labels, fmt.Sprintf("%dA", i))
	}
	requested, seats := seatsFor(labels...)
	violation := policy.Evaluate(requested, seats, model.RoleUser)
	require.NotNil(t, violation)
	assert.Equal(t, "You cannot book more than six seats at once.", violation.Message)

	appErr := violation.AppError()
	assert.Equal(t, 400, appErr.StatusCode())
	assert.Equal(t, string(KindTooManySeats), appErr.Details["kind"])
}

func TestCheckKnownSeats(t *testing.T) {
	labels := []string{"1A", "1B", "1C", "1D", "1E", "1F", "2A"}
	requested, seats := seatsFor(labels...)
	assert.Nil(t, CheckKnownSeats(requested, seats), "no seat count limit")

	violation := CheckKnownSeats(append(requested, "99Z"), seats)
	require.NotNil(t, violation)
	assert.Equal(t, KindUnknownSeat, violation.Kind)
}
