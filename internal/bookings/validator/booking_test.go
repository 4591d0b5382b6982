package validator

import (
	"testing"

	apperrors "airseat/pkg/errors"
	"airseat/pkg/logger"
	"airseat/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePayment(t *testing.T) {
	v := NewBookingValidator(logger.Discard())

	tests := []struct {
		name    string
		req     model.PaymentRequest
		wantErr bool
	}{
		{
			name: "valid",
			req: model.PaymentRequest{
				BookingID: "b1", PlaneID: "p1", UserID: "alice", TotalPrice: 200,
				TravelDate: "2025-06-01", TravelTime: "10:30",
				Passengers: []model.Passenger{{Name: " Ada ", PassportNumber: "ab12345", Age: 36}},
			},
		},
		{
			name:    "missing booking id",
			req:     model.PaymentRequest{PlaneID: "p1", UserID: "alice"},
			wantErr: true,
		},
		{
			name:    "negative price",
			req:     model.PaymentRequest{BookingID: "b1", PlaneID: "p1", UserID: "alice", TotalPrice: -1},
			wantErr: true,
		},
		{
			name:    "bad travel time",
			req:     model.PaymentRequest{BookingID: "b1", PlaneID: "p1", UserID: "alice", TravelTime: "25:00"},
			wantErr: true,
		},
		{
			name: "bad passport",
			req: model.PaymentRequest{
				BookingID: "b1", PlaneID: "p1", UserID: "alice",
				Passengers: []model.Passenger{{Name: "Ada", PassportNumber: "12-34"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidatePayment(&tt.req)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
		})
	}
}

func TestValidatePayment_NormalizesPassengers(t *testing.T) {
	v := NewBookingValidator(logger.Discard())
	req := model.PaymentRequest{
		BookingID: "b1", PlaneID: "p1", UserID: "alice",
		Passengers: []model.Passenger{{Name: " Ada ", PassportNumber: " ab12345 "}},
	}

	require.NoError(t, v.ValidatePayment(&req))
	assert.Equal(t, "Ada", req.Passengers[0].Name)
	assert.Equal(t, "AB12345", req.Passengers[0].PassportNumber)
}

func TestValidateCancel(t *testing.T) {
	v := NewBookingValidator(logger.Discard())

	require.NoError(t, v.ValidateCancel(&model.CancelBookingRequest{BookingID: "b1", UserID: "alice"}))
	assert.Error(t, v.ValidateCancel(&model.CancelBookingRequest{BookingID: " ", UserID: "alice"}))
	assert.Error(t, v.ValidateConfirmPayment(&model.ConfirmPaymentRequest{}))
}
