package enums

import "fmt"

// PartyRole identifies which side of a match a user acts as.
type PartyRole string

const (
	PartyRoleSender   PartyRole = "sender"
	PartyRoleTraveler PartyRole = "traveler"
)

var validPartyRoles = []PartyRole{
	PartyRoleSender,
	PartyRoleTraveler,
}

// IsValid reports whether the value matches the canonical party role enum.
func (p PartyRole) IsValid() bool {
	for _, candidate := range validPartyRoles {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePartyRole converts the raw string to PartyRole.
func ParsePartyRole(value string) (PartyRole, error) {
	for _, candidate := range validPartyRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party role %q", value)
}
