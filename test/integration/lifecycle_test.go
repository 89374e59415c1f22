package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/platform/db"
)

func newPatientService() *patient.Service {
	return patient.NewService(patient.NewRepo(testPool), db.NewRunner(testPool))
}

func admitInput(name string) patient.AdmitInput {
	return patient.AdmitInput{
		Name:           name,
		Age:            37,
		Gender:         "female",
		Disease:        "appendicitis",
		AdmissionType:  patient.AdmissionEmergency,
		AssignedDoctor: "Dr. Rao",
		RoomNumber:     "E12",
	}
}

func TestPatientLifecycle(t *testing.T) {
	ctx := context.Background()
	truncateTables(t, ctx)
	svc := newPatientService()

	p, err := svc.Admit(ctx, admitInput("Asha Verma"))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}

	t.Run("Lookup", func(t *testing.T) {
		got, err := svc.Get(ctx, p.PatientID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Personal.Name != "Asha Verma" || got.Admission.Status != patient.StatusActive {
			t.Errorf("unexpected record: %+v", got)
		}
	})

	t.Run("Search", func(t *testing.T) {
		got, total, err := svc.Search(ctx, "asha", 20, 0)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		if total != 1 || len(got) != 1 {
			t.Fatalf("expected 1 hit, got %d", total)
		}
		if got[0].PatientID != p.PatientID {
			t.Errorf("wrong hit: %s", got[0].PatientID)
		}
	})

	t.Run("UpdateFields", func(t *testing.T) {
		room := "E15"
		res, err := svc.UpdateFields(ctx, p.PatientID, patient.FieldUpdates{RoomNumber: &room})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if !res.Changed || res.Patient.Admission.RoomNumber != "E15" {
			t.Errorf("update not applied: %+v", res)
		}

		again, err := svc.UpdateFields(ctx, p.PatientID, patient.FieldUpdates{RoomNumber: &room})
		if err != nil {
			t.Fatalf("idempotent update: %v", err)
		}
		if again.Changed {
			t.Error("expected no-op on identical update")
		}
	})

	t.Run("Discharge", func(t *testing.T) {
		out, err := svc.Discharge(ctx, p.PatientID, "stable, follow up in a week")
		if err != nil {
			t.Fatalf("discharge: %v", err)
		}
		if out.Admission.Status != patient.StatusDischarged || out.Admission.DischargeDate == nil {
			t.Errorf("unexpected state after discharge: %+v", out.Admission)
		}

		_, err = svc.Discharge(ctx, p.PatientID, "again")
		var is *patient.InvalidStateError
		if !errors.As(err, &is) {
			t.Fatalf("expected InvalidStateError, got %v", err)
		}
	})
}

func TestLookupUnknownPatient(t *testing.T) {
	ctx := context.Background()
	truncateTables(t, ctx)
	svc := newPatientService()

	_, err := svc.Get(ctx, "PAT00000000")
	var nf *patient.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDuplicatePatientIDRejectedByStore(t *testing.T) {
	ctx := context.Background()
	truncateTables(t, ctx)
	repo := patient.NewRepo(testPool)
	svc := newPatientService()

	p, err := svc.Admit(ctx, admitInput("First Holder"))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}

	err = repo.Insert(ctx, &patient.Patient{
		PatientID: p.PatientID,
		Personal:  patient.PersonalInfo{Name: "Clone", Age: 1},
		Admission: patient.AdmissionInfo{
			AdmissionDate: p.Admission.AdmissionDate,
			AdmissionType: patient.AdmissionRegular,
			Status:        patient.StatusActive,
		},
	})
	var dup *patient.DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIDError, got %v", err)
	}
}
