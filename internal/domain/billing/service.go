package billing

import (
	"context"
	"time"

	"github.com/hms/hms/internal/domain/patient"
)

// Service computes and serves bills. Bill generation snapshots the patient
// record, derives charges from the fee schedule and writes the bill and the
// patient's billing summary in one transaction.
type Service struct {
	patients patient.Repository
	bills    Repository
	runner   patient.TxRunner
	now      func() time.Time
}

func NewService(patients patient.Repository, bills Repository, runner patient.TxRunner) *Service {
	return &Service{
		patients: patients,
		bills:    bills,
		runner:   runner,
		now:      time.Now,
	}
}

// ComputeBill generates (or regenerates) the bill for a patient. The stay is
// counted inclusively: admission day and reference day both bill, so a
// same-day stay is one day. Fee-scheduled charges scale room cost by the day
// count; doctor and medicine charges are flat per stay. The patient record's
// billing summary is rewritten with the new total while preserving payments
// already made.
func (s *Service) ComputeBill(ctx context.Context, patientID string, adhoc AdHocCharges) (*Bill, error) {
	adhoc = adhoc.sanitized()

	var out *Bill
	err := s.runner.InTx(ctx, func(ctx context.Context) error {
		p, err := s.patients.GetForUpdate(ctx, patientID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		days := p.DaysAdmitted(now)
		rate := RateFor(p.Admission.AdmissionType)

		charges := Charges{
			Room:      rate.RoomPerDay * float64(days),
			Doctor:    rate.DoctorFee,
			Medicine:  rate.MedicineBase,
			Lab:       adhoc.Lab,
			Procedure: adhoc.Procedure,
			Pharmacy:  adhoc.Pharmacy,
		}

		b := &Bill{
			PatientID:     p.PatientID,
			PatientName:   p.Personal.Name,
			AdmissionDate: p.Admission.AdmissionDate,
			AdmissionType: p.Admission.AdmissionType,
			DaysAdmitted:  days,
			Charges:       charges,
			TotalAmount:   charges.Total(),
			GeneratedDate: now,
			Status:        StatusGenerated,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.bills.Upsert(ctx, b); err != nil {
			return err
		}

		summary := patient.BillingInfo{
			TotalAmount:       b.TotalAmount,
			PaidAmount:        p.Billing.PaidAmount,
			OutstandingAmount: b.TotalAmount - p.Billing.PaidAmount,
		}
		if err := s.patients.UpdateBilling(ctx, patientID, summary, now); err != nil {
			return err
		}

		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetBill(ctx context.Context, patientID string) (*Bill, error) {
	return s.bills.GetByPatientID(ctx, patientID)
}
