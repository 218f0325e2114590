package loan

// Action is a lifecycle operation attempted against a loan. The
// remote contract enforces the same transition table; validating here
// first saves the user a failing paid transaction.
type Action string

const (
	// ActionActivate is the contract accepting a created loan and
	// opening it for funding.
	ActionActivate Action = "activate"
	ActionFund     Action = "fund"
	ActionRepay    Action = "repay"
	ActionDefault  Action = "default"
)

// Next returns the status that follows applying the action, or
// ErrInvalidTransition when the action is not legal from the current
// status. Both Pending and Active count as open for funding; the
// contract conflates the two on creation.
func (s Status) Next(a Action) (Status, error) {
	switch a {
	case ActionActivate:
		if s == StatusPending {
			return StatusActive, nil
		}
	case ActionFund:
		if s == StatusPending || s == StatusActive {
			return StatusFunded, nil
		}
	case ActionRepay:
		if s == StatusFunded {
			return StatusRepaid, nil
		}
	case ActionDefault:
		if s == StatusFunded {
			return StatusDefaulted, nil
		}
	}
	return s, ErrInvalidTransition
}

// CanFund reports whether a lender may fund a loan in this status.
func (s Status) CanFund() bool {
	_, err := s.Next(ActionFund)
	return err == nil
}
