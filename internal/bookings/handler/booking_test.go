package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "airseat/pkg/errors"
	"airseat/pkg/logger"
	"airseat/pkg/middleware"
	"airseat/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	payFunc        func(ctx context.Context, req *model.PaymentRequest) (bool, error)
	confirmFunc    func(ctx context.Context, req *model.ConfirmPaymentRequest) (bool, error)
	cancelFunc     func(ctx context.Context, req *model.CancelBookingRequest) (bool, error)
	listByUserFunc func(ctx context.Context, userID string) ([]*model.Booking, error)
	getByIDFunc    func(ctx context.Context, id string) (*model.Booking, error)
}

func (m *mockBookingService) CreateForReservation(ctx context.Context, reservationID, userID string, flight model.FlightInstance, seats []model.Seat) (*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingService) Pay(ctx context.Context, req *model.PaymentRequest) (bool, error) {
	if m.payFunc != nil {
		return m.payFunc(ctx, req)
	}
	return true, nil
}

func (m *mockBookingService) ConfirmPayment(ctx context.Context, req *model.ConfirmPaymentRequest) (bool, error) {
	if m.confirmFunc != nil {
		return m.confirmFunc(ctx, req)
	}
	return true, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, req *model.CancelBookingRequest) (bool, error) {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, req)
	}
	return true, nil
}

func (m *mockBookingService) ListByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Booking{ID: id}, nil
}

func setupTestHandler(mock *mockBookingService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	router := httprouter.New()
	NewBookingHandler(mock, log).RegisterRoutes(router)
	return router
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPay_Success(t *testing.T) {
	mock := &mockBookingService{
		payFunc: func(ctx context.Context, req *model.PaymentRequest) (bool, error) {
			if req.BookingID != "b1" || req.TotalPrice != 200 || len(req.Passengers) != 1 {
				t.Errorf("unexpected request: %+v", req)
			}
			return true, nil
		},
	}
	body := []byte(`{"bookingId":"b1","planeId":"p1","userId":"alice","totalPrice":200,"seatIds":["s1","s2"],
		"passengers":[{"name":"Ada","passportNumber":"AB12345","age":36}]}`)

	rec := serve(setupTestHandler(mock), httptest.NewRequest(http.MethodPost, "/api/v1/bookings/pay", bytes.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestPay_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", apperrors.NotFoundWithID("Booking", "b1"), http.StatusNotFound},
		{"other user", apperrors.Forbidden("Booking belongs to another user"), http.StatusForbidden},
		{"interrupted", apperrors.Timeout("Payment processing was interrupted"), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockBookingService{
				payFunc: func(ctx context.Context, req *model.PaymentRequest) (bool, error) {
					return false, tt.err
				},
			}
			body := []byte(`{"bookingId":"b1","planeId":"p1","userId":"alice"}`)
			rec := serve(setupTestHandler(mock), httptest.NewRequest(http.MethodPost, "/api/v1/bookings/pay", bytes.NewReader(body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestConfirmPayment_BothRoutes(t *testing.T) {
	calls := 0
	mock := &mockBookingService{
		confirmFunc: func(ctx context.Context, req *model.ConfirmPaymentRequest) (bool, error) {
			calls++
			return req.BookingID == "b1", nil
		},
	}
	router := setupTestHandler(mock)

	for _, path := range []string{"/api/v1/bookings/confirm-payment", "/api/v1/bookings/confirmPayment"} {
		rec := serve(router, httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(`{"bookingId":"b1"}`))))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}

	rec := serve(router, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/confirm-payment", bytes.NewReader([]byte(`{"bookingId":"b2"}`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unmodified confirmation: status = %d", rec.Code)
	}
	if calls != 3 {
		t.Errorf("calls = %d", calls)
	}
}

func TestConfirmPayment_PrincipalScopesOwnership(t *testing.T) {
	var got []string
	mock := &mockBookingService{
		confirmFunc: func(ctx context.Context, req *model.ConfirmPaymentRequest) (bool, error) {
			got = append(got, req.UserID)
			return true, nil
		},
	}
	router := setupTestHandler(mock)

	principals := []*middleware.Principal{
		nil,
		{UserID: "bob", Role: model.RoleUser},
		{UserID: "staff-1", Role: model.RoleStaff},
	}
	for _, p := range principals {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/confirm-payment", bytes.NewReader([]byte(`{"bookingId":"b1"}`)))
		if p != nil {
			req = req.WithContext(middleware.WithPrincipal(req.Context(), p))
		}
		if rec := serve(router, req); rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	}

	want := []string{"", "bob", ""}
	if len(got) != len(want) {
		t.Fatalf("calls = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d user = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCancel_FalseIsBadRequest(t *testing.T) {
	mock := &mockBookingService{
		cancelFunc: func(ctx context.Context, req *model.CancelBookingRequest) (bool, error) {
			return false, nil
		},
	}

	rec := serve(setupTestHandler(mock), httptest.NewRequest(http.MethodPost, "/api/v1/bookings/cancelBooking",
		bytes.NewReader([]byte(`{"bookingId":"b1","userId":"alice"}`))))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "{\"data\":false}\n" {
		t.Errorf("body = %q", got)
	}
}

func TestCancel_PrincipalOverridesBody(t *testing.T) {
	var got string
	mock := &mockBookingService{
		cancelFunc: func(ctx context.Context, req *model.CancelBookingRequest) (bool, error) {
			got = req.UserID
			return true, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/cancel", bytes.NewReader([]byte(`{"bookingId":"b1","userId":"alice"}`)))
	req = req.WithContext(middleware.WithPrincipal(req.Context(), &middleware.Principal{UserID: "bob", Role: model.RoleUser}))
	rec := serve(setupTestHandler(mock), req)

	if rec.Code != http.StatusOK || got != "bob" {
		t.Errorf("status = %d, user = %s", rec.Code, got)
	}
}

func TestListByUser(t *testing.T) {
	mock := &mockBookingService{
		listByUserFunc: func(ctx context.Context, userID string) ([]*model.Booking, error) {
			if userID == "" {
				return nil, apperrors.InvalidInput("userId is required")
			}
			return []*model.Booking{{ID: "b1", UserID: userID, IsPaid: true}}, nil
		},
	}
	router := setupTestHandler(mock)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/bookings?userId=alice", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Data []model.Booking `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data) != 1 || !resp.Data[0].IsPaid || resp.Data[0].UserID != "alice" {
		t.Errorf("unexpected bookings: %+v", resp.Data)
	}

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing userId: status = %d", rec.Code)
	}
}

func TestGetByID_ForeignBookingForbidden(t *testing.T) {
	mock := &mockBookingService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: id, UserID: "alice"}, nil
		},
	}
	router := setupTestHandler(mock)

	for role, want := range map[string]int{model.RoleUser: http.StatusForbidden, model.RoleStaff: http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/b1", nil)
		req = req.WithContext(middleware.WithPrincipal(req.Context(), &middleware.Principal{UserID: "bob", Role: role}))
		if rec := serve(router, req); rec.Code != want {
			t.Errorf("role %s: status = %d, want %d", role, rec.Code, want)
		}
	}
}
