package patient

import (
	"context"
	"time"
)

type Repository interface {
	// Insert stores a new record. A patient_id collision yields
	// DuplicateIDError.
	Insert(ctx context.Context, p *Patient) error
	GetByPatientID(ctx context.Context, patientID string) (*Patient, error)
	// GetForUpdate locks the record for the duration of the surrounding
	// transaction so read-modify-write sequences on one patient do not
	// interleave.
	GetForUpdate(ctx context.Context, patientID string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	// Search matches term case-insensitively as a substring of patient_id or
	// name, in store-native order.
	Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error)
	// UpdateFields applies only the non-nil fields and returns the number of
	// records modified.
	UpdateFields(ctx context.Context, patientID string, f FieldUpdates, at time.Time) (int64, error)
	SetDischarged(ctx context.Context, patientID, notes string, at time.Time) error
	UpdateBilling(ctx context.Context, patientID string, b BillingInfo, at time.Time) error
}

// TxRunner executes a function within a single store transaction. The
// transaction is made visible to repositories through the context.
type TxRunner interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}
