package order

import "fmt"

// Status is the order lifecycle state. Orders only move forward:
//
//	pending ──> done ──> completed
type Status string

const (
	StatusPending   Status = "pending"
	StatusDone      Status = "done"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusDone, StatusCompleted:
		return true
	}
	return false
}

// Next returns the single state reachable from s. Completed is terminal.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusDone, true
	case StatusDone:
		return StatusCompleted, true
	}
	return "", false
}

// Previous returns the state an order must be in to move to s.
func (s Status) Previous() (Status, bool) {
	switch s {
	case StatusDone:
		return StatusPending, true
	case StatusCompleted:
		return StatusDone, true
	}
	return "", false
}

// CanTransitionTo reports an InvalidState error unless to directly follows s.
func (s Status) CanTransitionTo(to Status) error {
	if next, ok := s.Next(); ok && next == to {
		return nil
	}
	required, ok := to.Previous()
	if !ok {
		return newError(CodeInvalidState, fmt.Sprintf("Cannot move order to %s", to), nil)
	}
	return newError(CodeInvalidState,
		fmt.Sprintf("Order is not in a %s state, current state: %s", required, s), nil)
}
