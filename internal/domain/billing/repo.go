package billing

import "context"

// Repository persists bills. One bill per patient; Upsert replaces any
// existing bill for the same patient_id.
type Repository interface {
	Upsert(ctx context.Context, b *Bill) error
	GetByPatientID(ctx context.Context, patientID string) (*Bill, error)
}
