package engine

import (
	"errors"
	"fmt"

	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
)

// Validation errors surfaced to the user before any network call.
var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrActivityFull     = errors.New("activity is full")
	ErrNoAllocation     = errors.New("service has no reserved spots for this activity")
	ErrAllocationFull   = errors.New("no spots left for this service")
	ErrMissingField     = errors.New("missing required field")
	ErrDuplicateService = errors.New("service already exists")
)

// ValidateRegistration checks seat capacity against a local snapshot. Only the
// client calls this: the server appends past capacity if asked to, so the check
// is advisory and two clients racing on the same stale snapshot can overbook.
func ValidateRegistration(doc *models.AppData, activityID int64, department string) error {
	act := findActivity(doc, activityID)
	if act == nil {
		return ErrActivityNotFound
	}
	if act.IsPublic() {
		if len(act.Registrations) >= act.Spots {
			return ErrActivityFull
		}
		return nil
	}
	for _, alloc := range act.Allocations {
		if alloc.ServiceName == department {
			if act.RegisteredFor(department) >= alloc.Spots {
				return fmt.Errorf("%w: %s", ErrAllocationFull, department)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNoAllocation, department)
}

// ValidateRegistrationForm checks required fields.
func ValidateRegistrationForm(form models.RegistrationForm) error {
	if form.FirstName == "" {
		return fmt.Errorf("%w: firstName", ErrMissingField)
	}
	if form.Department == "" {
		return fmt.Errorf("%w: department", ErrMissingField)
	}
	return nil
}
