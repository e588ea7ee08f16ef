package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

// Notifier enqueues owner-facing registry notifications. It satisfies the
// transfer coordinator's Notifier contract.
type Notifier struct {
	store  *Store
	logger *slog.Logger
}

// NewNotifier creates a Notifier over the outbox store.
func NewNotifier(store *Store, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{store: store, logger: logger}
}

// OwnershipTransferred queues the "vehicle transferred" message for the old
// owner and the "ownership received" message for the new owner. An enqueue
// failure is reported to the caller, who logs and swallows it; a partial
// enqueue still delivers what was queued.
func (n *Notifier) OwnershipTransferred(_ context.Context, from, to *owner.Owner, v *vehicle.Vehicle, oldPlate, newPlate string, amount int64) error {
	toSeller := &Notification{
		Recipient: from.Email,
		Subject:   fmt.Sprintf("Vehicle %s transferred", v.ChassisNumber),
		Body: fmt.Sprintf(
			"Dear %s,\n\n"+
				"Your vehicle with chassis number %s (plate %s) has been transferred to %s "+
				"for an amount of %d.\n\n"+
				"The plate %s has been released from the vehicle and remains registered to you.\n\n"+
				"Transport Authority Vehicle Registry",
			from.FullName(), v.ChassisNumber, oldPlate, to.FullName(), amount, oldPlate),
	}
	toBuyer := &Notification{
		Recipient: to.Email,
		Subject:   fmt.Sprintf("Ownership of vehicle %s received", v.ChassisNumber),
		Body: fmt.Sprintf(
			"Dear %s,\n\n"+
				"You are now the registered owner of the vehicle with chassis number %s, "+
				"transferred from %s for an amount of %d.\n\n"+
				"The vehicle now carries plate %s.\n\n"+
				"Transport Authority Vehicle Registry",
			to.FullName(), v.ChassisNumber, from.FullName(), amount, newPlate),
	}

	if err := n.store.Enqueue(toSeller); err != nil {
		return fmt.Errorf("queue seller notification: %w", err)
	}
	if err := n.store.Enqueue(toBuyer); err != nil {
		return fmt.Errorf("queue buyer notification: %w", err)
	}

	n.logger.Info("transfer notifications queued",
		"chassis", v.ChassisNumber,
		"seller", from.Email,
		"buyer", to.Email)
	return nil
}
