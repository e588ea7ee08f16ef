package ownership

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	store := NewStore(db)
	require.NoError(t, store.AutoMigrate())
	return store
}

func TestStore_AppendAndCurrent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CurrentByVehicle("vehicle-1")
	require.Error(t, err)
	assert.True(t, registryerrors.IsValidation(err))

	r := &Record{
		VehicleID:      "vehicle-1",
		OwnerID:        "owner-a",
		StartDate:      time.Now().UTC(),
		TransferAmount: 5000000,
	}
	require.NoError(t, store.Append(r))
	assert.NotEmpty(t, r.ID)

	current, err := store.CurrentByVehicle("vehicle-1")
	require.NoError(t, err)
	assert.Equal(t, r.ID, current.ID)
	assert.Equal(t, "owner-a", current.OwnerID)
	assert.True(t, current.Active())
}

func TestStore_CloseAndOpen(t *testing.T) {
	store := newTestStore(t)

	start := time.Now().UTC().Add(-time.Hour)
	first := &Record{
		VehicleID:      "vehicle-1",
		OwnerID:        "owner-a",
		StartDate:      start,
		TransferAmount: 5000000,
	}
	require.NoError(t, store.Append(first))

	now := time.Now().UTC()
	next, err := store.CloseAndOpen(first, "owner-b", 4500000, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "owner-b", next.OwnerID)
	assert.Equal(t, int64(4500000), next.TransferAmount)
	assert.Nil(t, next.EndDate)
	require.NotNil(t, first.EndDate)

	current, err := store.CurrentByVehicle("vehicle-1")
	require.NoError(t, err)
	assert.Equal(t, next.ID, current.ID)

	history, err := store.HistoryByVehicle("vehicle-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Most recent first.
	assert.Equal(t, next.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
	assert.NotNil(t, history[1].EndDate)

	count, err := store.CountByVehicle("vehicle-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

// A record already closed by a concurrent transfer cannot be closed again.
// The guarded update affects zero rows and the caller gets a conflict.
func TestStore_CloseAndOpen_ConflictOnStaleRecord(t *testing.T) {
	store := newTestStore(t)

	first := &Record{
		VehicleID:      "vehicle-1",
		OwnerID:        "owner-a",
		StartDate:      time.Now().UTC().Add(-time.Hour),
		TransferAmount: 5000000,
	}
	require.NoError(t, store.Append(first))

	// Two transfers read the same current record.
	stale := *first

	_, err := store.CloseAndOpen(first, "owner-b", 4500000, time.Now().UTC())
	require.NoError(t, err)

	_, err = store.CloseAndOpen(&stale, "owner-c", 4000000, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, registryerrors.IsConflict(err))

	// The losing transfer left no record behind.
	count, err := store.CountByVehicle("vehicle-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	current, err := store.CurrentByVehicle("vehicle-1")
	require.NoError(t, err)
	assert.Equal(t, "owner-b", current.OwnerID)
}

func TestStore_HistoryIsPerVehicle(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Append(&Record{
		VehicleID: "vehicle-1", OwnerID: "owner-a", StartDate: time.Now().UTC(),
	}))
	require.NoError(t, store.Append(&Record{
		VehicleID: "vehicle-2", OwnerID: "owner-b", StartDate: time.Now().UTC(),
	}))

	history, err := store.HistoryByVehicle("vehicle-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "owner-a", history[0].OwnerID)
}
