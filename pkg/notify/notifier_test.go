package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

func TestNotifier_OwnershipTransferred(t *testing.T) {
	store := newTestStore(t)
	notifier := NewNotifier(store, nil)

	from := &owner.Owner{ID: "a", Identity: owner.Identity{
		FirstName: "Alice", LastName: "Uwase", Email: "alice@example.com",
	}}
	to := &owner.Owner{ID: "b", Identity: owner.Identity{
		FirstName: "Bob", LastName: "Mugisha", Email: "bob@example.com",
	}}
	v := &vehicle.Vehicle{ID: "v1", ChassisNumber: "CH-001", ModelName: "Corolla"}

	err := notifier.OwnershipTransferred(context.Background(), from, to, v, "RAA 001 A", "RAB 002 B", 4500000)
	require.NoError(t, err)

	sellerMsgs, err := store.ListByRecipient("alice@example.com")
	require.NoError(t, err)
	require.Len(t, sellerMsgs, 1)
	assert.Contains(t, sellerMsgs[0].Subject, "CH-001")
	assert.Contains(t, sellerMsgs[0].Body, "Bob Mugisha")
	assert.Contains(t, sellerMsgs[0].Body, "RAA 001 A")
	assert.Equal(t, StateQueued, sellerMsgs[0].State)

	buyerMsgs, err := store.ListByRecipient("bob@example.com")
	require.NoError(t, err)
	require.Len(t, buyerMsgs, 1)
	assert.Contains(t, buyerMsgs[0].Body, "Alice Uwase")
	assert.Contains(t, buyerMsgs[0].Body, "RAB 002 B")
}
