package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	bookingserrors "airseat/internal/bookings/errors"
	"airseat/internal/bookings/events"
	"airseat/internal/bookings/validator"
	"airseat/pkg/config"
	mongotx "airseat/pkg/db/mongo"
	apperrors "airseat/pkg/errors"
	"airseat/pkg/logger"
	"airseat/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memoryBookings struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	txCalls  int
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{bookings: make(map[string]*model.Booking)}
}

func (m *memoryBookings) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking.ID = primitive.NewObjectID().Hex()
	stored := *booking
	m.bookings[booking.ID] = &stored
	return nil
}

func (m *memoryBookings) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *memoryBookings) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			c := *b
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingDate.After(out[j].BookingDate) })
	return out, nil
}

func (m *memoryBookings) MarkPaid(ctx context.Context, id string, passengers []model.Passenger) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return false, nil
	}
	modified := !b.IsPaid || len(passengers) > 0
	b.IsPaid = true
	if len(passengers) > 0 {
		b.Passengers = passengers
	}
	return modified, nil
}

func (m *memoryBookings) Delete(ctx context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.UserID != userID {
		return false, nil
	}
	delete(m.bookings, id)
	return true, nil
}

func (m *memoryBookings) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.txCalls++
	return fn(mongo.NewSessionContext(ctx, nil))
}

type releaseCall struct {
	flight        model.FlightInstance
	seatIDs       []string
	reservationID string
}

type fakeReleaser struct {
	calls []releaseCall
	err   error
}

func (f *fakeReleaser) ReleaseReservation(ctx context.Context, flight model.FlightInstance, seatIDs []string, reservationID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.calls = append(f.calls, releaseCall{flight: flight, seatIDs: seatIDs, reservationID: reservationID})
	return int64(len(seatIDs)), nil
}

type recordingPublisher struct {
	types []string
	err   error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) error {
	p.types = append(p.types, eventType)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	svc       BookingService
	repo      *memoryBookings
	releaser  *fakeReleaser
	publisher *recordingPublisher
	cfg       *config.Config
}

func newFixture() *fixture {
	log := logger.New(logger.Config{
		Level:     "info",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	cfg := &config.Config{
		SeatUnitPrice: 100,
		PaymentDelay:  0,
		Log:           log,
	}
	f := &fixture{
		repo:      newMemoryBookings(),
		releaser:  &fakeReleaser{},
		publisher: &recordingPublisher{},
		cfg:       cfg,
	}
	f.svc = NewBookingService(f.repo, f.releaser, validator.NewBookingValidator(log), f.publisher, cfg)
	return f
}

var testFlight = model.NewFlightInstance("plane-1", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "10:30")

func (f *fixture) book(t *testing.T, userID string, seatIDs ...string) *model.Booking {
	t.Helper()
	seats := make([]model.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		seats = append(seats, model.Seat{ID: id, PlaneID: "plane-1", Row: "1", Column: "A", IsReserved: true, UserID: userID})
	}
	booking, err := f.svc.CreateForReservation(context.Background(), "res-"+userID+"-"+seatIDs[0], userID, testFlight, seats)
	require.NoError(t, err)
	return booking
}

func TestCreateForReservation(t *testing.T) {
	f := newFixture()

	booking := f.book(t, "alice", "s1", "s2")

	assert.NotEmpty(t, booking.ID)
	assert.Equal(t, 200.0, booking.TotalPrice)
	assert.False(t, booking.IsPaid)
	assert.Equal(t, "plane-1", booking.PlaneID)
	assert.Equal(t, "10:30", booking.TravelTime)
	assert.Equal(t, "res-alice-s1", booking.ReservationID)
	assert.False(t, booking.Seats[0].IsReserved, "availability flags are not part of the snapshot")
	assert.Equal(t, []string{events.TypeBookingCreated}, f.publisher.types)
}

func TestCreateForReservation_NoSeats(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateForReservation(context.Background(), "res-1", "alice", testFlight, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}

func TestPay_Success(t *testing.T) {
	f := newFixture()
	booking := f.book(t, "alice", "s1", "s2")

	ok, err := f.svc.Pay(context.Background(), &model.PaymentRequest{
		BookingID:  booking.ID,
		PlaneID:    "plane-1",
		UserID:     "alice",
		TotalPrice: 200,
		Passengers: []model.Passenger{{Name: "Ada", PassportNumber: "AB12345", Age: 36}},
	})
	require.NoError(t, err)
	assert.True(t, ok)

	stored, _ := f.repo.FindByID(context.Background(), booking.ID)
	assert.True(t, stored.IsPaid)
	require.Len(t, stored.Passengers, 1)
	assert.Equal(t, []string{events.TypeBookingCreated, events.TypeBookingPaid}, f.publisher.types)
}

func TestPay_Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(req *model.PaymentRequest)
		prePaid  bool
		wantCode string
	}{
		{
			name:     "unknown booking",
			mutate:   func(req *model.PaymentRequest) { req.BookingID = primitive.NewObjectID().Hex() },
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "another user's booking",
			mutate:   func(req *model.PaymentRequest) { req.UserID = "mallory" },
			wantCode: apperrors.CodeForbidden,
		},
		{
			name:     "price mismatch",
			mutate:   func(req *model.PaymentRequest) { req.TotalPrice = 150 },
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "plane mismatch",
			mutate:   func(req *model.PaymentRequest) { req.PlaneID = "plane-2" },
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name:     "already paid",
			prePaid:  true,
			wantCode: apperrors.CodeConflict,
		},
		{
			name:     "invalid payload",
			mutate:   func(req *model.PaymentRequest) { req.UserID = "" },
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			booking := f.book(t, "alice", "s1")
			if tt.prePaid {
				_, err := f.repo.MarkPaid(context.Background(), booking.ID, nil)
				require.NoError(t, err)
			}

			req := &model.PaymentRequest{BookingID: booking.ID, PlaneID: "plane-1", UserID: "alice", TotalPrice: 100}
			if tt.mutate != nil {
				tt.mutate(req)
			}

			ok, err := f.svc.Pay(context.Background(), req)
			assert.False(t, ok)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestPay_ZeroPriceSkipsAmountCheck(t *testing.T) {
	f := newFixture()
	booking := f.book(t, "alice", "s1")

	ok, err := f.svc.Pay(context.Background(), &model.PaymentRequest{BookingID: booking.ID, PlaneID: "plane-1", UserID: "alice"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPay_InterruptedWhileProcessing(t *testing.T) {
	f := newFixture()
	f.cfg.PaymentDelay = time.Minute
	booking := f.book(t, "alice", "s1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	ok, err := f.svc.Pay(ctx, &model.PaymentRequest{BookingID: booking.ID, PlaneID: "plane-1", UserID: "alice"})
	assert.False(t, ok)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTimeout))
	assert.Less(t, time.Since(start), 5*time.Second)

	stored, _ := f.repo.FindByID(context.Background(), booking.ID)
	assert.False(t, stored.IsPaid)
}

func TestConfirmPayment_ThenListShowsPaid(t *testing.T) {
	f := newFixture()
	booking := f.book(t, "alice", "s1", "s2")
	f.book(t, "bob", "s3")

	ok, err := f.svc.ConfirmPayment(context.Background(), &model.ConfirmPaymentRequest{BookingID: booking.ID})
	require.NoError(t, err)
	assert.True(t, ok)

	list, err := f.svc.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, booking.ID, list[0].ID)
	assert.True(t, list[0].IsPaid)
}

func TestConfirmPayment_OwnershipWhenCallerKnown(t *testing.T) {
	f := newFixture()
	booking := f.book(t, "alice", "s1")

	ok, err := f.svc.ConfirmPayment(context.Background(), &model.ConfirmPaymentRequest{BookingID: booking.ID, UserID: "mallory"})
	assert.False(t, ok)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	stored, err := f.repo.FindByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsPaid)

	ok, err = f.svc.ConfirmPayment(context.Background(), &model.ConfirmPaymentRequest{BookingID: booking.ID, UserID: "alice"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.ConfirmPayment(context.Background(), &model.ConfirmPaymentRequest{BookingID: primitive.NewObjectID().Hex(), UserID: "alice"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestConfirmPayment_NothingModified(t *testing.T) {
	f := newFixture()

	ok, err := f.svc.ConfirmPayment(context.Background(), &model.ConfirmPaymentRequest{BookingID: primitive.NewObjectID().Hex()})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCancel_TwiceReturnsFalseTheSecondTime(t *testing.T) {
	f := newFixture()
	booking := f.book(t, "alice", "s1", "s2")
	req := func() *model.CancelBookingRequest {
		return &model.CancelBookingRequest{BookingID: booking.ID, UserID: "alice"}
	}

	ok, err := f.svc.Cancel(context.Background(), req())
	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, f.releaser.calls, 1)
	call := f.releaser.calls[0]
	assert.Equal(t, testFlight, call.flight)
	assert.Equal(t, []string{"s1", "s2"}, call.seatIDs)
	assert.Equal(t, booking.ReservationID, call.reservationID)
	assert.Equal(t, 1, f.repo.txCalls)

	ok, err = f.svc.Cancel(context.Background(), req())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.releaser.calls, 1)
	assert.Equal(t, []string{events.TypeBookingCreated, events.TypeBookingCancelled}, f.publisher.types)
}

func TestCancel_PaidBookingIsCancellable(t *testing.T) {
	f := newFixture()
	booking := f.book(t, "alice", "s1")
	_, err := f.repo.MarkPaid(context.Background(), booking.ID, nil)
	require.NoError(t, err)

	ok, err := f.svc.Cancel(context.Background(), &model.CancelBookingRequest{BookingID: booking.ID, UserID: "alice"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCancel_OtherUsersBookingIsUntouched(t *testing.T) {
	f := newFixture()
	booking := f.book(t, "alice", "s1")

	ok, err := f.svc.Cancel(context.Background(), &model.CancelBookingRequest{BookingID: booking.ID, UserID: "mallory"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, f.releaser.calls)

	_, err = f.repo.FindByID(context.Background(), booking.ID)
	assert.NoError(t, err)
}

func TestCancel_ReleaseFailureKeepsBooking(t *testing.T) {
	f := newFixture()
	booking := f.book(t, "alice", "s1")
	f.releaser.err = errors.New("write conflict")

	ok, err := f.svc.Cancel(context.Background(), &model.CancelBookingRequest{BookingID: booking.ID, UserID: "alice"})
	assert.False(t, ok)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))

	_, err = f.repo.FindByID(context.Background(), booking.ID)
	assert.NoError(t, err)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("broker down")

	booking := f.book(t, "alice", "s1")
	assert.NotEmpty(t, booking.ID)
}

func TestListByUser_NewestFirst(t *testing.T) {
	f := newFixture()
	first := f.book(t, "alice", "s1")
	time.Sleep(2 * time.Millisecond)
	second := f.book(t, "alice", "s2")

	list, err := f.svc.ListByUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	_, err = f.svc.ListByUser(context.Background(), "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
}
