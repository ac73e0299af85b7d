package enums

import "fmt"

// Urgency is the delivery urgency requested for a price estimate.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

var validUrgencies = []Urgency{
	UrgencyLow,
	UrgencyNormal,
	UrgencyHigh,
}

// IsValid reports whether the value matches the canonical urgency enum.
func (u Urgency) IsValid() bool {
	for _, candidate := range validUrgencies {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUrgency converts the raw string to Urgency.
func ParseUrgency(value string) (Urgency, error) {
	for _, candidate := range validUrgencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid urgency %q", value)
}
