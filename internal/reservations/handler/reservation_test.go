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

type mockReservationService struct {
	reserveFunc    func(ctx context.Context, req *model.SeatRequest) (*model.Booking, error)
	lockFunc       func(ctx context.Context, req *model.SeatRequest) (bool, error)
	unlockAllFunc  func(ctx context.Context, req *model.UnlockAllRequest) (int64, error)
	unreserveFunc  func(ctx context.Context, req *model.SeatRequest) (bool, error)
	cancelSeatFunc func(ctx context.Context, req *model.CancelSeatRequest) (bool, error)
}

func (m *mockReservationService) Reserve(ctx context.Context, req *model.SeatRequest) (*model.Booking, error) {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, req)
	}
	return &model.Booking{}, nil
}

func (m *mockReservationService) Lock(ctx context.Context, req *model.SeatRequest) (bool, error) {
	if m.lockFunc != nil {
		return m.lockFunc(ctx, req)
	}
	return true, nil
}

func (m *mockReservationService) Unlock(ctx context.Context, req *model.SeatRequest) (bool, error) {
	return true, nil
}

func (m *mockReservationService) UnlockAll(ctx context.Context, req *model.UnlockAllRequest) (int64, error) {
	if m.unlockAllFunc != nil {
		return m.unlockAllFunc(ctx, req)
	}
	return 0, nil
}

func (m *mockReservationService) Unreserve(ctx context.Context, req *model.SeatRequest) (bool, error) {
	if m.unreserveFunc != nil {
		return m.unreserveFunc(ctx, req)
	}
	return true, nil
}

func (m *mockReservationService) CancelSeat(ctx context.Context, req *model.CancelSeatRequest) (bool, error) {
	if m.cancelSeatFunc != nil {
		return m.cancelSeatFunc(ctx, req)
	}
	return true, nil
}

func setupTestHandler(mock *mockReservationService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	router := httprouter.New()
	NewReservationHandler(mock, log).RegisterRoutes(router)
	return router
}

func seatBody() []byte {
	body, _ := json.Marshal(map[string]any{
		"planeId":    "plane-1",
		"seatIds":    []string{"1A", "1B"},
		"userId":     "alice",
		"userRole":   "user",
		"travelDate": "2025-06-01",
		"travelTime": "10:30",
	})
	return body
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) any {
	t.Helper()
	var resp struct {
		Data any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.Data
}

func TestReserve_Success(t *testing.T) {
	mock := &mockReservationService{
		reserveFunc: func(ctx context.Context, req *model.SeatRequest) (*model.Booking, error) {
			if req.PlaneID != "plane-1" || len(req.SeatIDs) != 2 {
				t.Errorf("unexpected request: %+v", req)
			}
			return &model.Booking{ID: "b1", UserID: req.UserID, TotalPrice: 200}, nil
		},
	}
	router := setupTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/reserve", bytes.NewReader(seatBody()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	data, ok := decodeData(t, rec).(map[string]any)
	if !ok || data["id"] != "b1" || data["totalPrice"] != float64(200) {
		t.Errorf("unexpected booking: %v", data)
	}
}

func TestReserve_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       []byte
		wantStatus int
		wantKind   string
	}{
		{
			name:       "rule violation",
			err:        apperrors.RuleViolation("NON_ADJACENT_SEATS", "You can only book adjacent seats."),
			body:       seatBody(),
			wantStatus: http.StatusBadRequest,
			wantKind:   "NON_ADJACENT_SEATS",
		},
		{
			name:       "conflict",
			err:        apperrors.Conflict("Seat 1A is no longer available"),
			body:       seatBody(),
			wantStatus: http.StatusConflict,
		},
		{
			name:       "malformed body",
			body:       []byte(`{"planeId":`),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown field",
			body:       []byte(`{"planeId":"p","seats":[]}`),
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockReservationService{
				reserveFunc: func(ctx context.Context, req *model.SeatRequest) (*model.Booking, error) {
					return nil, tt.err
				},
			}
			router := setupTestHandler(mock)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/reserve", bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantKind != "" {
				var resp struct {
					Error   string         `json:"error"`
					Details map[string]any `json:"details"`
				}
				_ = json.Unmarshal(rec.Body.Bytes(), &resp)
				if resp.Details["kind"] != tt.wantKind {
					t.Errorf("kind = %v, want %s", resp.Details["kind"], tt.wantKind)
				}
				if resp.Error == "" {
					t.Error("expected error message")
				}
			}
		})
	}
}

func TestLock_PrincipalOverridesBody(t *testing.T) {
	var got *model.SeatRequest
	mock := &mockReservationService{
		lockFunc: func(ctx context.Context, req *model.SeatRequest) (bool, error) {
			got = req
			return true, nil
		},
	}
	router := setupTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/lock", bytes.NewReader(seatBody()))
	req = req.WithContext(middleware.WithPrincipal(req.Context(), &middleware.Principal{UserID: "staff-9", Role: model.RoleStaff}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.UserID != "staff-9" || got.UserRole != model.RoleStaff {
		t.Errorf("principal not applied: %+v", got)
	}
	if decodeData(t, rec) != true {
		t.Errorf("expected data true, got %s", rec.Body.String())
	}
}

func TestUnlockAll_BothRoutes(t *testing.T) {
	calls := 0
	mock := &mockReservationService{
		unlockAllFunc: func(ctx context.Context, req *model.UnlockAllRequest) (int64, error) {
			calls++
			if req.UserID != "alice" {
				t.Errorf("user = %s", req.UserID)
			}
			return 3, nil
		},
	}
	router := setupTestHandler(mock)

	for _, path := range []string{"/api/v1/reservations/unlock-all", "/api/v1/reservations/unlockAll"} {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(`{"userId":"alice"}`)))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d", calls)
	}
}

func TestUnreserve_Forbidden(t *testing.T) {
	mock := &mockReservationService{
		unreserveFunc: func(ctx context.Context, req *model.SeatRequest) (bool, error) {
			return false, apperrors.Forbidden("Only staff or management can unreserve seats")
		},
	}
	router := setupTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/unreserve", bytes.NewReader(seatBody()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCancelSeat_QueryParameters(t *testing.T) {
	tests := []struct {
		name       string
		result     bool
		wantStatus int
		wantData   bool
	}{
		{name: "cancelled", result: true, wantStatus: http.StatusOK, wantData: true},
		{name: "nothing to cancel", result: false, wantStatus: http.StatusBadRequest, wantData: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockReservationService{
				cancelSeatFunc: func(ctx context.Context, req *model.CancelSeatRequest) (bool, error) {
					if req.PlaneID != "plane-1" || req.SeatID != "1A" || req.UserID != "alice" {
						t.Errorf("unexpected request: %+v", req)
					}
					return tt.result, nil
				},
			}
			router := setupTestHandler(mock)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/cancel?planeId=plane-1&seatId=1A&userId=alice", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if decodeData(t, rec) != tt.wantData {
				t.Errorf("data = %v, want %v", decodeData(t, rec), tt.wantData)
			}
		})
	}
}
