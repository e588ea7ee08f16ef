package plate

import "fmt"

// transitions defines the allowed status transitions. RETIRED is terminal:
// it appears only as a target. A same-state transition is a no-op and is
// always allowed.
var transitions = map[Status][]Status{
	StatusAvailable:      {StatusInUse, StatusDamaged, StatusRetired},
	StatusInUse:          {StatusTransferredOut, StatusDamaged, StatusRetired},
	StatusTransferredOut: {StatusAvailable, StatusInUse, StatusDamaged, StatusRetired},
	StatusDamaged:        {StatusAvailable, StatusRetired},
	StatusRetired:        {},
}

// TransitionError is a structured error for a rejected status change.
type TransitionError struct {
	From    Status `json:"from"`
	To      Status `json:"to"`
	Message string `json:"message"`
}

func (e *TransitionError) Error() string { return e.Message }

// ValidateTransition checks whether from -> to is an allowed status change.
// Returns nil if allowed.
func ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if from == StatusRetired {
		return &TransitionError{
			From:    from,
			To:      to,
			Message: "cannot change the status of a RETIRED plate",
		}
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{
		From:    from,
		To:      to,
		Message: fmt.Sprintf("no transition defined from %s to %s", from, to),
	}
}

// AllowedTransitions returns all valid target statuses from the given status.
func AllowedTransitions(from Status) []Status {
	return transitions[from]
}
