package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"airseat/pkg/logger"
	"airseat/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	planes   []*model.Plane
	seats    []model.Seat
	countErr error
}

func (f *fakeDirectory) CountPlanes(ctx context.Context) (int64, error) {
	return int64(len(f.planes)), f.countErr
}

func (f *fakeDirectory) CreatePlane(ctx context.Context, plane *model.Plane) error {
	plane.ID = fmt.Sprintf("plane-%d", len(f.planes)+1)
	f.planes = append(f.planes, plane)
	return nil
}

func (f *fakeDirectory) CreateSeats(ctx context.Context, seats []model.Seat) error {
	f.seats = append(f.seats, seats...)
	return nil
}

func TestCabinLayout(t *testing.T) {
	seats := CabinLayout("p1", 2)

	require.Len(t, seats, 12)
	assert.Equal(t, "1A", seats[0].Label())
	assert.Equal(t, "1F", seats[5].Label())
	assert.Equal(t, "2A", seats[6].Label())
	for _, s := range seats {
		assert.Equal(t, "p1", s.PlaneID)
		assert.Empty(t, s.ID)
	}
}

func TestSeedDemoData(t *testing.T) {
	dir := &fakeDirectory{}
	fleet := []DemoPlane{{Name: "Small", Rows: 2}, {Name: "Tiny", Rows: 1}}

	n, err := SeedDemoData(context.Background(), dir, fleet, logger.Discard())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	require.Len(t, dir.planes, 2)
	assert.Len(t, dir.seats, 18)
	assert.Equal(t, "plane-2", dir.seats[17].PlaneID)
}

func TestSeedDemoData_SkipsPopulatedDirectory(t *testing.T) {
	dir := &fakeDirectory{planes: []*model.Plane{{ID: "existing", Name: "Existing"}}}

	n, err := SeedDemoData(context.Background(), dir, DemoFleet, logger.Discard())
	require.NoError(t, err)

	assert.Zero(t, n)
	assert.Empty(t, dir.seats)
}

func TestSeedDemoData_CountFailure(t *testing.T) {
	dir := &fakeDirectory{countErr: errors.New("no primary")}

	_, err := SeedDemoData(context.Background(), dir, DemoFleet, logger.Discard())
	assert.Error(t, err)
}
