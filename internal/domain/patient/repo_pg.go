package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

const patientCols = `id, patient_id,
	name, age, gender, phone, address, emergency_contact,
	disease, symptoms, allergies, medical_history,
	admission_date, admission_type, assigned_doctor, room_number, status,
	discharge_date, discharge_notes,
	total_amount, paid_amount, outstanding_amount,
	created_at, updated_at`

const uniqueViolation = "23505"

func (r *repoPG) Insert(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (
			id, patient_id,
			name, age, gender, phone, address, emergency_contact,
			disease, symptoms, allergies, medical_history,
			admission_date, admission_type, assigned_doctor, room_number, status,
			total_amount, paid_amount, outstanding_amount,
			created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22
		)`,
		p.ID, p.PatientID,
		p.Personal.Name, p.Personal.Age, p.Personal.Gender, p.Personal.Phone,
		p.Personal.Address, p.Personal.EmergencyContact,
		p.Medical.Disease, p.Medical.Symptoms, p.Medical.Allergies, p.Medical.MedicalHistory,
		p.Admission.AdmissionDate, p.Admission.AdmissionType, p.Admission.AssignedDoctor,
		p.Admission.RoomNumber, p.Admission.Status,
		p.Billing.TotalAmount, p.Billing.PaidAmount, p.Billing.OutstandingAmount,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return &DuplicateIDError{PatientID: p.PatientID}
		}
		return &StoreError{Op: "insert patient", Err: err}
	}
	return nil
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	return r.get(ctx, patientID, "")
}

func (r *repoPG) GetForUpdate(ctx context.Context, patientID string) (*Patient, error) {
	return r.get(ctx, patientID, " FOR UPDATE")
}

func (r *repoPG) get(ctx context.Context, patientID, suffix string) (*Patient, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE patient_id = $1`+suffix, patientID)
	p, err := scanPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Entity: "patient", ID: patientID}
		}
		return nil, &StoreError{Op: "get patient", Err: err}
	}
	return p, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&total); err != nil {
		return nil, 0, &StoreError{Op: "count patients", Err: err}
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, &StoreError{Op: "list patients", Err: err}
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	pattern := "%" + term + "%"
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE patient_id ILIKE $1 OR name ILIKE $1`,
		pattern).Scan(&total); err != nil {
		return nil, 0, &StoreError{Op: "count search", Err: err}
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients
		WHERE patient_id ILIKE $1 OR name ILIKE $1
		ORDER BY created_at LIMIT $2 OFFSET $3`,
		pattern, limit, offset)
	if err != nil {
		return nil, 0, &StoreError{Op: "search patients", Err: err}
	}
	defer rows.Close()
	return collectPatients(rows, total)
}

func (r *repoPG) UpdateFields(ctx context.Context, patientID string, f FieldUpdates, at time.Time) (int64, error) {
	set := []string{"updated_at = $2"}
	args := []interface{}{patientID, at}

	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("phone", f.Phone)
	add("address", f.Address)
	add("symptoms", f.Symptoms)
	add("room_number", f.RoomNumber)
	add("assigned_doctor", f.AssignedDoctor)

	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET `+strings.Join(set, ", ")+` WHERE patient_id = $1`, args...)
	if err != nil {
		return 0, &StoreError{Op: "update patient fields", Err: err}
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) SetDischarged(ctx context.Context, patientID, notes string, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			status = $2, discharge_date = $3, discharge_notes = $4, updated_at = $3
		WHERE patient_id = $1`,
		patientID, StatusDischarged, at, notes)
	if err != nil {
		return &StoreError{Op: "discharge patient", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "patient", ID: patientID}
	}
	return nil
}

func (r *repoPG) UpdateBilling(ctx context.Context, patientID string, b BillingInfo, at time.Time) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			total_amount = $2, paid_amount = $3, outstanding_amount = $4, updated_at = $5
		WHERE patient_id = $1`,
		patientID, b.TotalAmount, b.PaidAmount, b.OutstandingAmount, at)
	if err != nil {
		return &StoreError{Op: "update patient billing", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "patient", ID: patientID}
	}
	return nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.PatientID,
		&p.Personal.Name, &p.Personal.Age, &p.Personal.Gender, &p.Personal.Phone,
		&p.Personal.Address, &p.Personal.EmergencyContact,
		&p.Medical.Disease, &p.Medical.Symptoms, &p.Medical.Allergies, &p.Medical.MedicalHistory,
		&p.Admission.AdmissionDate, &p.Admission.AdmissionType, &p.Admission.AssignedDoctor,
		&p.Admission.RoomNumber, &p.Admission.Status,
		&p.Admission.DischargeDate, &p.Admission.DischargeNotes,
		&p.Billing.TotalAmount, &p.Billing.PaidAmount, &p.Billing.OutstandingAmount,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows, total int) ([]*Patient, int, error) {
	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, &StoreError{Op: "scan patient", Err: err}
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &StoreError{Op: "iterate patients", Err: err}
	}
	return patients, total, nil
}
