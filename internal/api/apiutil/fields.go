package apiutil

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"github.com/samaggi-games/tournament-admin/internal/roster"
)

const defaultPhoneRegion = "GB"

// RequireFields checks the named fields in order and returns a
// ValidationError listing every blank one, so the caller learns the full set
// in one round trip.
func RequireFields(fields map[string]string, order ...string) error {
	var missing []string
	for _, name := range order {
		if strings.TrimSpace(fields[name]) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return roster.NewValidationError(missing...)
	}
	return nil
}

// ValidateContact checks a captain's phone number. Numbers without a country
// code are interpreted as UK numbers, matching where the tournament runs.
func ValidateContact(raw string) error {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), defaultPhoneRegion)
	if err != nil {
		return FieldError{Field: "captain_contact", Reason: fmt.Sprintf("is not a phone number: %v", err)}
	}
	if !phonenumbers.IsValidNumber(num) {
		return FieldError{Field: "captain_contact", Reason: "is not a valid phone number"}
	}
	return nil
}
