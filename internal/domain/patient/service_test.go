package patient

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func asErr(err error, target interface{}) bool {
	return errors.As(err, target)
}

// -- Mock Repository --

type mockRepo struct {
	patients map[string]*Patient

	insertErrs []error
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[string]*Patient)}
}

func (m *mockRepo) Insert(_ context.Context, p *Patient) error {
	if len(m.insertErrs) > 0 {
		err := m.insertErrs[0]
		m.insertErrs = m.insertErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, ok := m.patients[p.PatientID]; ok {
		return &DuplicateIDError{PatientID: p.PatientID}
	}
	cp := *p
	m.patients[p.PatientID] = &cp
	return nil
}

func (m *mockRepo) GetByPatientID(_ context.Context, patientID string) (*Patient, error) {
	p, ok := m.patients[patientID]
	if !ok {
		return nil, &NotFoundError{Entity: "patient", ID: patientID}
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, patientID string) (*Patient, error) {
	return m.GetByPatientID(ctx, patientID)
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		cp := *p
		out = append(out, &cp)
	}
	return out, len(m.patients), nil
}

func (m *mockRepo) Search(_ context.Context, term string, limit, offset int) ([]*Patient, int, error) {
	term = strings.ToLower(term)
	var out []*Patient
	for _, p := range m.patients {
		if strings.Contains(strings.ToLower(p.PatientID), term) ||
			strings.Contains(strings.ToLower(p.Personal.Name), term) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) UpdateFields(_ context.Context, patientID string, f FieldUpdates, at time.Time) (int64, error) {
	p, ok := m.patients[patientID]
	if !ok {
		return 0, nil
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&p.Personal.Phone, f.Phone)
	apply(&p.Personal.Address, f.Address)
	apply(&p.Medical.Symptoms, f.Symptoms)
	apply(&p.Admission.RoomNumber, f.RoomNumber)
	apply(&p.Admission.AssignedDoctor, f.AssignedDoctor)
	p.UpdatedAt = at
	return 1, nil
}

func (m *mockRepo) SetDischarged(_ context.Context, patientID, notes string, at time.Time) error {
	p, ok := m.patients[patientID]
	if !ok {
		return &NotFoundError{Entity: "patient", ID: patientID}
	}
	p.Admission.Status = StatusDischarged
	p.Admission.DischargeDate = &at
	p.Admission.DischargeNotes = &notes
	p.UpdatedAt = at
	return nil
}

func (m *mockRepo) UpdateBilling(_ context.Context, patientID string, b BillingInfo, at time.Time) error {
	p, ok := m.patients[patientID]
	if !ok {
		return &NotFoundError{Entity: "patient", ID: patientID}
	}
	p.Billing = b
	p.UpdatedAt = at
	return nil
}

// passRunner runs the function directly; per-operation atomicity is the real
// store's concern.
type passRunner struct{}

func (passRunner) InTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// -- Tests --

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, passRunner{})
}

func validAdmit() AdmitInput {
	return AdmitInput{
		Name:           "John Doe",
		Age:            42,
		Gender:         "male",
		Disease:        "pneumonia",
		AdmissionType:  AdmissionRegular,
		AssignedDoctor: "Dr. Patel",
		RoomNumber:     "204",
	}
}

func TestAdmit(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	p, err := svc.Admit(context.Background(), validAdmit())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(p.PatientID, "PAT") || len(p.PatientID) != 11 {
		t.Errorf("unexpected patient id %q", p.PatientID)
	}
	if p.Admission.Status != StatusActive {
		t.Errorf("expected Active status, got %s", p.Admission.Status)
	}
	if p.Billing.TotalAmount != 0 || p.Billing.PaidAmount != 0 || p.Billing.OutstandingAmount != 0 {
		t.Errorf("expected zeroed billing, got %+v", p.Billing)
	}
	if p.Admission.AdmissionDate.IsZero() {
		t.Error("expected admission date to be set")
	}
	if _, ok := repo.patients[p.PatientID]; !ok {
		t.Error("patient not persisted")
	}
}

func TestAdmit_AggregatesValidationIssues(t *testing.T) {
	svc := newTestService(newMockRepo())

	_, err := svc.Admit(context.Background(), AdmitInput{Age: -1})
	var ve *ValidationError
	if !asErr(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Issues) != 5 {
		t.Errorf("expected 5 issues, got %d: %v", len(ve.Issues), ve.Issues)
	}
}

func TestAdmit_RetriesOnIDCollision(t *testing.T) {
	repo := newMockRepo()
	repo.insertErrs = []error{
		&DuplicateIDError{PatientID: "PATDEADBEEF"},
		&DuplicateIDError{PatientID: "PATDEADBEEF"},
		nil,
	}
	svc := newTestService(repo)

	p, err := svc.Admit(context.Background(), validAdmit())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if p.PatientID == "" {
		t.Error("expected a patient id after retries")
	}
}

func TestAdmit_GivesUpAfterRepeatedCollisions(t *testing.T) {
	repo := newMockRepo()
	repo.insertErrs = []error{
		&DuplicateIDError{PatientID: "a"},
		&DuplicateIDError{PatientID: "b"},
		&DuplicateIDError{PatientID: "c"},
	}
	svc := newTestService(repo)

	_, err := svc.Admit(context.Background(), validAdmit())
	var dup *DuplicateIDError
	if !asErr(err, &dup) {
		t.Fatalf("expected DuplicateIDError, got %v", err)
	}
}

func TestDischarge(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	p, _ := svc.Admit(context.Background(), validAdmit())

	out, err := svc.Discharge(context.Background(), p.PatientID, "recovered")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Admission.Status != StatusDischarged {
		t.Errorf("expected Discharged, got %s", out.Admission.Status)
	}
	if out.Admission.DischargeDate == nil {
		t.Error("expected discharge date")
	}
	if out.Admission.DischargeNotes == nil || *out.Admission.DischargeNotes != "recovered" {
		t.Error("expected discharge notes to be recorded")
	}
}

func TestDischarge_AlreadyDischarged(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	p, _ := svc.Admit(context.Background(), validAdmit())
	if _, err := svc.Discharge(context.Background(), p.PatientID, ""); err != nil {
		t.Fatalf("first discharge failed: %v", err)
	}

	_, err := svc.Discharge(context.Background(), p.PatientID, "")
	var is *InvalidStateError
	if !asErr(err, &is) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if is.Op != "discharge" || is.Status != StatusDischarged {
		t.Errorf("unexpected error detail: %+v", is)
	}
}

func TestDischarge_NotFound(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, err := svc.Discharge(context.Background(), "PATMISSING0", "")
	var nf *NotFoundError
	if !asErr(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateFields(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	p, _ := svc.Admit(context.Background(), validAdmit())

	phone := "555-0100"
	room := "310"
	res, err := svc.UpdateFields(context.Background(), p.PatientID, FieldUpdates{
		Phone:      &phone,
		RoomNumber: &room,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed {
		t.Error("expected Changed=true")
	}
	if res.Patient.Personal.Phone != phone || res.Patient.Admission.RoomNumber != room {
		t.Errorf("updates not applied: %+v", res.Patient)
	}
}

func TestUpdateFields_NoEffectiveChange(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	p, _ := svc.Admit(context.Background(), validAdmit())
	before := repo.patients[p.PatientID].UpdatedAt

	sameRoom := "204"
	empty := "   "
	res, err := svc.UpdateFields(context.Background(), p.PatientID, FieldUpdates{
		RoomNumber: &sameRoom,
		Phone:      &empty,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Changed {
		t.Error("expected Changed=false for a no-op update")
	}
	if !repo.patients[p.PatientID].UpdatedAt.Equal(before) {
		t.Error("no-op update must not bump updated_at")
	}
}

func TestSearch_EmptyTerm(t *testing.T) {
	svc := newTestService(newMockRepo())
	_, _, err := svc.Search(context.Background(), "   ", 20, 0)
	var ve *ValidationError
	if !asErr(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSearch_MatchesNameCaseInsensitive(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	if _, err := svc.Admit(context.Background(), validAdmit()); err != nil {
		t.Fatalf("admit failed: %v", err)
	}

	got, total, err := svc.Search(context.Background(), "john", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(got) != 1 {
		t.Fatalf("expected 1 match, got %d", total)
	}
}

func TestSearch_MatchesPatientIDSubstring(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ids := []string{"PAT1234ABCD", "PAT9999ABCD"}
	svc.genID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Admit(context.Background(), validAdmit()); err != nil {
			t.Fatalf("admit failed: %v", err)
		}
	}

	got, total, err := svc.Search(context.Background(), "pat123", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || got[0].PatientID != "PAT1234ABCD" {
		t.Fatalf("expected only PAT1234ABCD, got %d matches", total)
	}
}

func TestRecordPayment(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	p, _ := svc.Admit(context.Background(), validAdmit())
	repo.patients[p.PatientID].Billing = BillingInfo{TotalAmount: 5000, PaidAmount: 0, OutstandingAmount: 5000}

	out, err := svc.RecordPayment(context.Background(), p.PatientID, 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Billing.PaidAmount != 1500 || out.Billing.OutstandingAmount != 3500 {
		t.Errorf("unexpected billing after payment: %+v", out.Billing)
	}
	if out.Billing.TotalAmount != 5000 {
		t.Error("payment must not change the billed total")
	}
}

func TestRecordPayment_Overpay(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	p, _ := svc.Admit(context.Background(), validAdmit())
	repo.patients[p.PatientID].Billing = BillingInfo{TotalAmount: 1000, PaidAmount: 800, OutstandingAmount: 200}

	_, err := svc.RecordPayment(context.Background(), p.PatientID, 500)
	var ve *ValidationError
	if !asErr(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if repo.patients[p.PatientID].Billing.PaidAmount != 800 {
		t.Error("failed payment must not mutate the record")
	}
}

func TestRecordPayment_NonPositiveAmount(t *testing.T) {
	svc := newTestService(newMockRepo())
	for _, amount := range []float64{0, -10} {
		_, err := svc.RecordPayment(context.Background(), "PAT12345678", amount)
		var ve *ValidationError
		if !asErr(err, &ve) {
			t.Errorf("amount %v: expected ValidationError, got %v", amount, err)
		}
	}
}
