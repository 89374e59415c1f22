package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const billCols = `id, patient_id, patient_name, admission_date, admission_type, days_admitted,
	room_charges, doctor_charges, medicine_charges, lab_charges, procedure_charges, pharmacy_charges,
	total_amount, generated_date, status, created_at, updated_at`

func (r *repoPG) Upsert(ctx context.Context, b *Bill) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	// The unique index on patient_id makes regeneration replace the
	// existing bill instead of accumulating history.
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bills (
			id, patient_id, patient_name, admission_date, admission_type, days_admitted,
			room_charges, doctor_charges, medicine_charges,
			lab_charges, procedure_charges, pharmacy_charges,
			total_amount, generated_date, status, created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17
		)
		ON CONFLICT (patient_id) DO UPDATE SET
			patient_name = EXCLUDED.patient_name,
			admission_date = EXCLUDED.admission_date,
			admission_type = EXCLUDED.admission_type,
			days_admitted = EXCLUDED.days_admitted,
			room_charges = EXCLUDED.room_charges,
			doctor_charges = EXCLUDED.doctor_charges,
			medicine_charges = EXCLUDED.medicine_charges,
			lab_charges = EXCLUDED.lab_charges,
			procedure_charges = EXCLUDED.procedure_charges,
			pharmacy_charges = EXCLUDED.pharmacy_charges,
			total_amount = EXCLUDED.total_amount,
			generated_date = EXCLUDED.generated_date,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`,
		b.ID, b.PatientID, b.PatientName, b.AdmissionDate, b.AdmissionType, b.DaysAdmitted,
		b.Charges.Room, b.Charges.Doctor, b.Charges.Medicine,
		b.Charges.Lab, b.Charges.Procedure, b.Charges.Pharmacy,
		b.TotalAmount, b.GeneratedDate, b.Status, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return &patient.StoreError{Op: "upsert bill", Err: err}
	}
	return nil
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID string) (*Bill, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+billCols+` FROM bills WHERE patient_id = $1`, patientID)
	var b Bill
	err := row.Scan(
		&b.ID, &b.PatientID, &b.PatientName, &b.AdmissionDate, &b.AdmissionType, &b.DaysAdmitted,
		&b.Charges.Room, &b.Charges.Doctor, &b.Charges.Medicine,
		&b.Charges.Lab, &b.Charges.Procedure, &b.Charges.Pharmacy,
		&b.TotalAmount, &b.GeneratedDate, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &patient.NotFoundError{Entity: "bill", ID: patientID}
		}
		return nil, &patient.StoreError{Op: "get bill", Err: err}
	}
	return &b, nil
}
