package enums

import "fmt"

// MatchStatus is the lifecycle state of a sender/traveler pairing.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusAccepted  MatchStatus = "accepted"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

var validMatchStatuses = []MatchStatus{
	MatchStatusPending,
	MatchStatusAccepted,
	MatchStatusCompleted,
	MatchStatusCancelled,
}

// IsValid reports whether the value matches the canonical match status enum.
func (m MatchStatus) IsValid() bool {
	for _, candidate := range validMatchStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMatchStatus converts the raw string to MatchStatus.
func ParseMatchStatus(value string) (MatchStatus, error) {
	for _, candidate := range validMatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid match status %q", value)
}

// CanTransitionTo reports whether the status may move to next. Statuses only
// advance forward; cancellation is terminal from any non-completed state.
func (m MatchStatus) CanTransitionTo(next MatchStatus) bool {
	if m == next {
		return false
	}
	switch next {
	case MatchStatusAccepted:
		return m == MatchStatusPending
	case MatchStatusCompleted:
		return m == MatchStatusAccepted
	case MatchStatusCancelled:
		return m == MatchStatusPending || m == MatchStatusAccepted
	default:
		return false
	}
}
