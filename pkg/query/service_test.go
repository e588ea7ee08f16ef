package query

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/ownership"
	"github.com/transport-authority/vehicle-registry/pkg/plate"
	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

type fixture struct {
	db       *gorm.DB
	service  *Service
	owners   *owner.Store
	vehicles *vehicle.Store
	plates   *plate.Store
	ledger   *ownership.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&owner.Owner{}, &vehicle.Vehicle{}, &plate.Plate{}, &ownership.Record{},
	))

	f := &fixture{
		db:       db,
		owners:   owner.NewStore(db),
		vehicles: vehicle.NewStore(db),
		plates:   plate.NewStore(db),
		ledger:   ownership.NewStore(db),
	}
	f.service = NewService(db, f.vehicles, f.owners, f.plates, f.ledger)
	return f
}

// seed builds one vehicle that went through a registration and one transfer:
// owner A held it first, owner B holds it now.
func (f *fixture) seed(t *testing.T) (v *vehicle.Vehicle, a, b *owner.Owner) {
	t.Helper()
	a = &owner.Owner{Identity: owner.Identity{
		FirstName: "Alice", LastName: "Uwase",
		Email: "alice@example.com", PhoneNumber: "0788000001", NationalID: "1199080000000001",
	}}
	b = &owner.Owner{Identity: owner.Identity{
		FirstName: "Bob", LastName: "Mugisha",
		Email: "bob@example.com", PhoneNumber: "0788000002", NationalID: "1199080000000002",
	}}
	require.NoError(t, f.owners.Create(a))
	require.NoError(t, f.owners.Create(b))

	v = &vehicle.Vehicle{ChassisNumber: "CH-001", ModelName: "Corolla", ManufacturedYear: 2020, Price: 5000000}
	require.NoError(t, f.vehicles.Create(v))

	first := &ownership.Record{
		VehicleID: v.ID, OwnerID: a.ID,
		StartDate: time.Now().UTC().Add(-48 * time.Hour), TransferAmount: 5000000,
	}
	require.NoError(t, f.ledger.Append(first))

	p, err := f.plates.Issue("RAA 001 A", a.ID, v.ID)
	require.NoError(t, err)
	_, err = f.plates.SetStatus(p.ID, plate.StatusTransferredOut)
	require.NoError(t, err)
	_, err = f.plates.Issue("RAB 002 B", b.ID, v.ID)
	require.NoError(t, err)

	_, err = f.ledger.CloseAndOpen(first, b.ID, 4500000, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	return v, a, b
}

func TestVehicleState(t *testing.T) {
	f := newFixture(t)
	v, _, b := f.seed(t)

	state, err := f.service.VehicleState(v.ID)
	require.NoError(t, err)
	require.NotNil(t, state.Vehicle)
	assert.Equal(t, "CH-001", state.Vehicle.ChassisNumber)
	require.NotNil(t, state.CurrentPlate)
	assert.Equal(t, "RAB 002 B", state.CurrentPlate.Value)
	require.NotNil(t, state.CurrentOwner)
	assert.Equal(t, b.ID, state.CurrentOwner.ID)
	assert.Equal(t, "Bob", state.CurrentOwner.FirstName)
	require.NotNil(t, state.CurrentRecord)
	assert.Nil(t, state.CurrentRecord.EndDate)
}

func TestVehicleState_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.VehicleState("missing")
	require.Error(t, err)
	assert.True(t, registryerrors.IsNotFound(err))
}

func TestVehicleState_NoOpenRecord(t *testing.T) {
	f := newFixture(t)
	v := &vehicle.Vehicle{ChassisNumber: "CH-002", ModelName: "Civic", ManufacturedYear: 2021, Price: 1}
	require.NoError(t, f.vehicles.Create(v))

	state, err := f.service.VehicleState(v.ID)
	require.NoError(t, err)
	assert.Nil(t, state.CurrentRecord)
	assert.Nil(t, state.CurrentOwner)
}

// A vehicle carrying two IN_USE plates is a broken invariant; the state view
// must report it rather than silently drop the plate.
func TestVehicleState_MultipleActivePlates(t *testing.T) {
	f := newFixture(t)
	v, _, b := f.seed(t)

	require.NoError(t, f.db.Create(&plate.Plate{
		ID:        uuid.New().String(),
		Value:     "RAC 003 C",
		OwnerID:   b.ID,
		VehicleID: v.ID,
		Status:    plate.StatusInUse,
	}).Error)

	_, err := f.service.VehicleState(v.ID)
	require.Error(t, err)
	assert.True(t, registryerrors.IsValidation(err))
}

func TestHistoryByVehicle(t *testing.T) {
	f := newFixture(t)
	v, a, b := f.seed(t)

	views, err := f.service.HistoryByVehicle(v.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)

	// Most recent first: the open record for B, then the closed one for A.
	assert.Equal(t, b.ID, views[0].Owner.ID)
	assert.Nil(t, views[0].EndDate)
	assert.Equal(t, int64(4500000), views[0].TransferAmount)

	assert.Equal(t, a.ID, views[1].Owner.ID)
	require.NotNil(t, views[1].EndDate)
	assert.Equal(t, "Alice", views[1].Owner.FirstName)
	assert.Equal(t, "CH-001", views[1].Vehicle.ChassisNumber)
}

func TestHistoryByChassis(t *testing.T) {
	f := newFixture(t)
	_, _, b := f.seed(t)

	views, err := f.service.HistoryByChassis("CH-001")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, b.ID, views[0].Owner.ID)

	_, err = f.service.HistoryByChassis("CH-404")
	require.Error(t, err)
	assert.True(t, registryerrors.IsNotFound(err))
}

func TestHistoryByPlate(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	// Both the active and the released plate resolve to the same vehicle.
	for _, value := range []string{"RAB 002 B", "RAA 001 A"} {
		views, err := f.service.HistoryByPlate(value)
		require.NoError(t, err)
		assert.Len(t, views, 2)
	}

	_, err := f.service.HistoryByPlate("RAZ 999 Z")
	require.Error(t, err)
	assert.True(t, registryerrors.IsNotFound(err))
}

// A soft-deleted previous owner still shows up in the history views.
func TestHistory_IncludesDeletedOwners(t *testing.T) {
	f := newFixture(t)
	v, a, _ := f.seed(t)

	require.NoError(t, f.owners.SoftDelete(a.ID))

	views, err := f.service.HistoryByVehicle(v.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, a.ID, views[1].Owner.ID)
	assert.Equal(t, "Alice", views[1].Owner.FirstName)
}
