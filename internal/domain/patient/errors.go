package patient

import (
	"fmt"
	"strings"
)

// Domain error taxonomy shared by the patient and billing packages. Handlers
// map these onto HTTP status codes; repositories translate driver failures
// into them so services never see raw pgx errors.

// ValidationError reports malformed or missing input. All issues found in one
// operation are aggregated into a single error and no mutation occurs.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Issues, "; ")
}

// NotFoundError is returned when no record exists for the given identifier.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InvalidStateError is returned when a state transition's preconditions are
// violated, e.g. discharging a patient who is not Active.
type InvalidStateError struct {
	PatientID string
	Status    Status
	Op        string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s patient %s: status is %s", e.Op, e.PatientID, e.Status)
}

// DuplicateIDError is returned when an insert collides with an existing
// patient_id. Callers may retry with a newly generated identifier.
type DuplicateIDError struct {
	PatientID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("patient id %s already exists", e.PatientID)
}

// StoreError wraps an underlying persistence failure. It is surfaced as-is
// and never retried by the domain layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
