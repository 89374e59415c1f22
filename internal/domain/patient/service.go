package patient

import (
	"context"
	"errors"
	"strings"
	"time"
)

// maxIDAttempts bounds retries when a generated patient id collides with an
// existing record.
const maxIDAttempts = 3

// Service owns the patient lifecycle: admission, field updates, discharge,
// lookup and search. Every state transition validates its preconditions and
// leaves the record untouched on failure.
type Service struct {
	repo   Repository
	runner TxRunner
	now    func() time.Time
	genID  func() string
}

func NewService(repo Repository, runner TxRunner) *Service {
	return &Service{
		repo:   repo,
		runner: runner,
		now:    time.Now,
		genID:  NewPatientID,
	}
}

// Admit onboards a new patient as Active with zeroed billing. The generated
// identifier is inserted under the store's uniqueness constraint; on a
// collision a fresh id is generated and the insert retried.
func (s *Service) Admit(ctx context.Context, in AdmitInput) (*Patient, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &Patient{
		Personal: PersonalInfo{
			Name:             strings.TrimSpace(in.Name),
			Age:              in.Age,
			Gender:           in.Gender,
			Phone:            in.Phone,
			Address:          in.Address,
			EmergencyContact: in.EmergencyContact,
		},
		Medical: MedicalInfo{
			Disease:        in.Disease,
			Symptoms:       in.Symptoms,
			Allergies:      in.Allergies,
			MedicalHistory: in.MedicalHistory,
		},
		Admission: AdmissionInfo{
			AdmissionDate:  now,
			AdmissionType:  in.AdmissionType,
			AssignedDoctor: strings.TrimSpace(in.AssignedDoctor),
			RoomNumber:     strings.TrimSpace(in.RoomNumber),
			Status:         StatusActive,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		p.PatientID = s.genID()
		err := s.repo.Insert(ctx, p)
		if err == nil {
			return p, nil
		}
		var dup *DuplicateIDError
		if !errors.As(err, &dup) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// Discharge moves an Active patient to Discharged. The transition is one-way;
// discharging a patient in any other state fails with InvalidStateError.
func (s *Service) Discharge(ctx context.Context, patientID, notes string) (*Patient, error) {
	var out *Patient
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, patientID)
		if err != nil {
			return err
		}
		if p.Admission.Status != StatusActive {
			return &InvalidStateError{PatientID: patientID, Status: p.Admission.Status, Op: "discharge"}
		}

		now := s.now().UTC()
		if err := s.repo.SetDischarged(ctx, patientID, notes, now); err != nil {
			return err
		}

		p.Admission.Status = StatusDischarged
		p.Admission.DischargeDate = &now
		p.Admission.DischargeNotes = &notes
		p.UpdatedAt = now
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateResult reports what an UpdateFields call did.
type UpdateResult struct {
	Patient *Patient
	Changed bool
}

// UpdateFields applies the non-empty fields that differ from the record's
// current values. If nothing would change it reports Changed=false and leaves
// updated_at untouched; that is an informational no-op, not an error.
func (s *Service) UpdateFields(ctx context.Context, patientID string, f FieldUpdates) (*UpdateResult, error) {
	var res UpdateResult
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, patientID)
		if err != nil {
			return err
		}

		eff := f.diff(p)
		if eff.empty() {
			res = UpdateResult{Patient: p, Changed: false}
			return nil
		}

		now := s.now().UTC()
		if _, err := s.repo.UpdateFields(ctx, patientID, eff, now); err != nil {
			return err
		}

		apply := func(dst *string, v *string) {
			if v != nil {
				*dst = *v
			}
		}
		apply(&p.Personal.Phone, eff.Phone)
		apply(&p.Personal.Address, eff.Address)
		apply(&p.Medical.Symptoms, eff.Symptoms)
		apply(&p.Admission.RoomNumber, eff.RoomNumber)
		apply(&p.Admission.AssignedDoctor, eff.AssignedDoctor)
		p.UpdatedAt = now

		res = UpdateResult{Patient: p, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *Service) Get(ctx context.Context, patientID string) (*Patient, error) {
	return s.repo.GetByPatientID(ctx, patientID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// Search matches term case-insensitively against patient_id or name. An empty
// term is a validation error, not match-everything.
func (s *Service) Search(ctx context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, 0, &ValidationError{Issues: []string{"search term is required"}}
	}
	return s.repo.Search(ctx, term, limit, offset)
}

// RecordPayment adds amount to the patient's paid total and re-derives the
// outstanding balance. The billed total is never touched here.
func (s *Service) RecordPayment(ctx context.Context, patientID string, amount float64) (*Patient, error) {
	if amount <= 0 {
		return nil, &ValidationError{Issues: []string{"payment amount must be positive"}}
	}

	var out *Patient
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetForUpdate(ctx, patientID)
		if err != nil {
			return err
		}

		paid := p.Billing.PaidAmount + amount
		if paid > p.Billing.TotalAmount {
			return &ValidationError{Issues: []string{"payment exceeds outstanding balance"}}
		}

		now := s.now().UTC()
		b := BillingInfo{
			TotalAmount:       p.Billing.TotalAmount,
			PaidAmount:        paid,
			OutstandingAmount: p.Billing.TotalAmount - paid,
		}
		if err := s.repo.UpdateBilling(ctx, patientID, b, now); err != nil {
			return err
		}

		p.Billing = b
		p.UpdatedAt = now
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
