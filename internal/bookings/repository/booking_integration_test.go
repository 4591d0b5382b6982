//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingserrors "airseat/internal/bookings/errors"
	"airseat/internal/testutil"
	"airseat/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func newBooking(userID string, bookedAt time.Time) *model.Booking {
	return &model.Booking{
		UserID:      userID,
		PlaneID:     "plane-1",
		Seats:       []model.Seat{{ID: "s1", PlaneID: "plane-1", Row: "4", Column: "B"}},
		Passengers:  []model.Passenger{},
		TotalPrice:  100,
		BookingDate: bookedAt.UTC().Truncate(time.Millisecond),
		TravelDate:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		TravelTime:  "08:00",
	}
}

func TestBookingRepository_Lifecycle(t *testing.T) {
	repo := NewMongoBookingRepository(testutil.MongoConfig(t))
	ctx := context.Background()

	booking := newBooking("alice", time.Now())
	require.NoError(t, repo.Create(ctx, booking))
	require.Len(t, booking.ID, 24)

	found, err := repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.UserID)
	assert.False(t, found.IsPaid)
	assert.Equal(t, "4B", found.Seats[0].Label())

	passengers := []model.Passenger{{Name: "Ada", PassportNumber: "AB12345", Age: 36}}
	ok, err := repo.MarkPaid(ctx, booking.ID, passengers)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.MarkPaid(ctx, booking.ID, nil)
	require.NoError(t, err)
	assert.False(t, ok, "already paid")

	found, err = repo.FindByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, found.IsPaid)
	assert.Equal(t, passengers, found.Passengers)

	ok, err = repo.Delete(ctx, booking.ID, "bob")
	require.NoError(t, err)
	assert.False(t, ok, "only the owner deletes")

	ok, err = repo.Delete(ctx, booking.ID, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.FindByID(ctx, booking.ID)
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)
}

func TestBookingRepository_InvalidID(t *testing.T) {
	repo := NewMongoBookingRepository(testutil.MongoConfig(t))

	_, err := repo.FindByID(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, bookingserrors.ErrInvalidID)
}

func TestBookingRepository_FindByUserNewestFirst(t *testing.T) {
	repo := NewMongoBookingRepository(testutil.MongoConfig(t))
	ctx := context.Background()
	base := time.Now()

	for _, offset := range []time.Duration{0, 2 * time.Hour, time.Hour} {
		require.NoError(t, repo.Create(ctx, newBooking("alice", base.Add(offset))))
	}
	require.NoError(t, repo.Create(ctx, newBooking("bob", base)))

	bookings, err := repo.FindByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, bookings, 3)
	assert.True(t, bookings[0].BookingDate.After(bookings[1].BookingDate))
	assert.True(t, bookings[1].BookingDate.After(bookings[2].BookingDate))

	none, err := repo.FindByUser(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestBookingRepository_TransactionRollsBack(t *testing.T) {
	repo := NewMongoBookingRepository(testutil.MongoConfig(t))
	ctx := context.Background()

	booking := newBooking("alice", time.Now())
	require.NoError(t, repo.Create(ctx, booking))

	boom := errors.New("seat release failed")
	err := repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		deleted, err := repo.Delete(sessCtx, booking.ID, "alice")
		require.NoError(t, err)
		require.True(t, deleted)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.FindByID(ctx, booking.ID)
	assert.NoError(t, err, "delete inside the aborted transaction is undone")
}
