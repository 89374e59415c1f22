package billing

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/patient"
)

// BillStatus of a generated bill. Generated is terminal.
type BillStatus string

const StatusGenerated BillStatus = "Generated"

// Charges itemizes a bill. The first three components are derived from the
// fee schedule; the last three are externally supplied ad-hoc charges.
type Charges struct {
	Room      float64 `json:"room_charges"`
	Doctor    float64 `json:"doctor_charges"`
	Medicine  float64 `json:"medicine_charges"`
	Lab       float64 `json:"lab_charges"`
	Procedure float64 `json:"procedure_charges"`
	Pharmacy  float64 `json:"pharmacy_charges"`
}

// Total sums all six charge components.
func (c Charges) Total() float64 {
	return c.Room + c.Doctor + c.Medicine + c.Lab + c.Procedure + c.Pharmacy
}

// Bill maps to the bills table. At most one bill exists per patient;
// regenerating replaces it in place.
type Bill struct {
	ID            uuid.UUID             `json:"id"`
	PatientID     string                `json:"patient_id"`
	PatientName   string                `json:"patient_name"`
	AdmissionDate time.Time             `json:"admission_date"`
	AdmissionType patient.AdmissionType `json:"admission_type"`
	DaysAdmitted  int                   `json:"days_admitted"`
	Charges       Charges               `json:"charges"`
	TotalAmount   float64               `json:"total_amount"`
	GeneratedDate time.Time             `json:"generated_date"`
	Status        BillStatus            `json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// AdHocCharges are the externally supplied per-bill charges not derivable
// from the fee schedule.
type AdHocCharges struct {
	Lab       float64 `json:"lab_charges"`
	Procedure float64 `json:"procedure_charges"`
	Pharmacy  float64 `json:"pharmacy_charges"`
}

// sanitized applies the external-input policy: a negative component is
// replaced with 0 rather than failing the whole computation.
func (a AdHocCharges) sanitized() AdHocCharges {
	clamp := func(v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}
	return AdHocCharges{
		Lab:       clamp(a.Lab),
		Procedure: clamp(a.Procedure),
		Pharmacy:  clamp(a.Pharmacy),
	}
}

// ParseCharge converts a raw charge string to a non-negative amount. Blank
// input, unparseable input, and negative values all become 0; a bad ad-hoc
// value never aborts bill computation.
func ParseCharge(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// ParseAdHocCharges builds AdHocCharges from raw strings, applying the
// substitute-zero policy per component.
func ParseAdHocCharges(lab, procedure, pharmacy string) AdHocCharges {
	return AdHocCharges{
		Lab:       ParseCharge(lab),
		Procedure: ParseCharge(procedure),
		Pharmacy:  ParseCharge(pharmacy),
	}
}
