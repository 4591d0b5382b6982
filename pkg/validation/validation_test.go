package validation

import (
	"errors"
	"strings"
	"testing"

	"airseat/pkg/logger"
	"airseat/pkg/model"
)

func newTestValidator() *Validator {
	return New(logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	}))
}

func validSeatRequest() model.SeatRequest {
	return model.SeatRequest{
		PlaneID:    "plane1",
		SeatIDs:    []string{"s1", "s2"},
		UserID:     "user-1",
		UserRole:   model.RoleUser,
		TravelDate: "2025-06-01",
		TravelTime: "10:30",
	}
}

func TestStruct_SeatRequest(t *testing.T) {
	v := newTestValidator()

	tests := []struct {
		name      string
		mutate    func(r *model.SeatRequest)
		wantField string
	}{
		{"valid", func(r *model.SeatRequest) {}, ""},
		{"role may be omitted", func(r *model.SeatRequest) { r.UserRole = "" }, ""},
		{"missing plane", func(r *model.SeatRequest) { r.PlaneID = "" }, "PlaneID"},
		{"no seats", func(r *model.SeatRequest) { r.SeatIDs = nil }, "SeatIDs"},
		{"duplicate seats", func(r *model.SeatRequest) { r.SeatIDs = []string{"s1", "s1"} }, "SeatIDs"},
		{"empty seat id", func(r *model.SeatRequest) { r.SeatIDs = []string{"s1", ""} }, "SeatIDs[1]"},
		{"unknown role", func(r *model.SeatRequest) { r.UserRole = "pilot" }, "UserRole"},
		{"bad date", func(r *model.SeatRequest) { r.TravelDate = "01/06/2025" }, "TravelDate"},
		{"bad time", func(r *model.SeatRequest) { r.TravelTime = "25:00" }, "TravelTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSeatRequest()
			tt.mutate(&req)

			err := v.Struct(req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T (%v)", err, err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("field = %s, want %s", verrs[0].Field, tt.wantField)
			}
		})
	}
}

func TestStruct_SeatColumn(t *testing.T) {
	v := newTestValidator()

	if err := v.Struct(model.Seat{PlaneID: "p", Row: "3", Column: "C"}); err != nil {
		t.Errorf("valid seat rejected: %v", err)
	}

	err := v.Struct(model.Seat{PlaneID: "p", Row: "3", Column: "H"})
	if err == nil || !strings.Contains(err.Error(), "A B C D E F") {
		t.Errorf("expected seat column message, got %v", err)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "PlaneID", Message: "PlaneID is required"},
		{Field: "UserID", Message: "UserID is required"},
	}
	got := errs.Error()
	if !strings.HasPrefix(got, "validation failed: 2 error(s)") {
		t.Errorf("unexpected message %q", got)
	}
	if ValidationErrors(nil).Error() != "" {
		t.Errorf("empty errors should render empty")
	}
}
