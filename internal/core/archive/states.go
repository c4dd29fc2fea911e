// Package archive contains the pure business logic for channel archival:
// state definitions, registration/execution guards, batch arithmetic, and
// the failure taxonomy. Nothing in this package touches persistence.
package archive

// Archive states.
const (
	StatePending   = "pending"
	StateArchiving = "archiving"
	StateComplete  = "complete"
	StateFailed    = "failed"
)

// Channel statuses.
const (
	ChannelOpen     = "open"
	ChannelReadOnly = "read_only"
	ChannelArchived = "archived"
	ChannelClosed   = "closed"
)

// Topic statuses.
const (
	TopicOpen     = "open"
	TopicClosed   = "closed"
	TopicArchived = "archived"
)

// Topic status policies applied to pipeline-created topics at finalization.
const (
	PolicyLeaveOpen = "leave-open"
	PolicyClose     = "close"
	PolicyArchive   = "archive"
)

// ActiveStates are the states that block a new registration for the same
// channel. A complete archive also blocks re-registration, but is not
// "active" from the scheduler's point of view.
var ActiveStates = []string{StatePending, StateArchiving, StateFailed}

// IsActiveState reports whether the state is non-terminal.
func IsActiveState(state string) bool {
	for _, s := range ActiveStates {
		if s == state {
			return true
		}
	}
	return false
}

// ValidState reports whether the state is one of the four archive states.
func ValidState(state string) bool {
	switch state {
	case StatePending, StateArchiving, StateComplete, StateFailed:
		return true
	}
	return false
}

// ValidPolicy reports whether the topic status policy is recognized.
func ValidPolicy(policy string) bool {
	switch policy {
	case PolicyLeaveOpen, PolicyClose, PolicyArchive:
		return true
	}
	return false
}
