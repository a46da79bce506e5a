package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samaggi-games/tournament-admin/internal/store"
)

// The core never lets an unexpected failure masquerade as an expected
// outcome. Lookups report absence with a found flag, business-rule refusals
// travel as values (Decision, Result), and only infrastructure and
// integrity failures are errors.

// ValidationError reports missing or malformed input caught at the
// boundary. It maps to a 4xx response.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// NewValidationError builds a ValidationError for the named fields.
func NewValidationError(fields ...string) *ValidationError {
	return &ValidationError{Missing: fields}
}

// IntegrityError reports a broken uniqueness invariant in stored data, such
// as two Team rows for one (sport, team_university, university) triple. It
// is fatal and requires operator intervention; the core never repairs it.
type IntegrityError struct {
	Table  string
	Detail string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity violation in %s: %s", e.Table, e.Detail)
}

// IsStoreUnavailable reports whether err originated from the backing store
// being unreachable.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, store.ErrUnavailable)
}

// IsIntegrity reports whether err is a data integrity violation.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// IsValidation reports whether err is a boundary validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
