package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status of an admission. The only transition is Active -> Discharged;
// re-admission requires a new patient record.
type Status string

const (
	StatusActive     Status = "Active"
	StatusDischarged Status = "Discharged"
)

// AdmissionType categorizes an admission and drives the fee schedule lookup.
type AdmissionType string

const (
	AdmissionEmergency AdmissionType = "Emergency"
	AdmissionRegular   AdmissionType = "Regular"
	AdmissionICU       AdmissionType = "ICU"
)

type PersonalInfo struct {
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
}

type MedicalInfo struct {
	Disease        string `json:"disease"`
	Symptoms       string `json:"symptoms"`
	Allergies      string `json:"allergies"`
	MedicalHistory string `json:"medical_history"`
}

type AdmissionInfo struct {
	AdmissionDate  time.Time     `json:"admission_date"`
	AdmissionType  AdmissionType `json:"admission_type"`
	AssignedDoctor string        `json:"assigned_doctor"`
	RoomNumber     string        `json:"room_number"`
	Status         Status        `json:"status"`
	DischargeDate  *time.Time    `json:"discharge_date,omitempty"`
	DischargeNotes *string       `json:"discharge_notes,omitempty"`
}

// BillingInfo is the authoritative running balance on the patient record.
// OutstandingAmount is always derived as TotalAmount - PaidAmount, never
// written independently.
type BillingInfo struct {
	TotalAmount       float64 `json:"total_amount"`
	PaidAmount        float64 `json:"paid_amount"`
	OutstandingAmount float64 `json:"outstanding_amount"`
}

// Patient maps to the patients table.
type Patient struct {
	ID        uuid.UUID     `json:"id"`
	PatientID string        `json:"patient_id"`
	Personal  PersonalInfo  `json:"personal_info"`
	Medical   MedicalInfo   `json:"medical_info"`
	Admission AdmissionInfo `json:"admission_info"`
	Billing   BillingInfo   `json:"billing_info"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// DaysAdmitted returns the inclusive stay duration in whole days. A same-day
// admission counts as one full day. For discharged patients the discharge
// date is the reference time; otherwise now is.
func (p *Patient) DaysAdmitted(now time.Time) int {
	ref := now
	if p.Admission.Status == StatusDischarged && p.Admission.DischargeDate != nil {
		ref = *p.Admission.DischargeDate
	}
	days := int(ref.Sub(p.Admission.AdmissionDate) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return days + 1
}

// AdmitInput is a fully formed onboarding request. It is validated atomically;
// all problems are reported in one ValidationError.
type AdmitInput struct {
	Name             string        `json:"name"`
	Age              int           `json:"age"`
	Gender           string        `json:"gender"`
	Phone            string        `json:"phone"`
	Address          string        `json:"address"`
	EmergencyContact string        `json:"emergency_contact"`
	Disease          string        `json:"disease"`
	Symptoms         string        `json:"symptoms"`
	Allergies        string        `json:"allergies"`
	MedicalHistory   string        `json:"medical_history"`
	AdmissionType    AdmissionType `json:"admission_type"`
	AssignedDoctor   string        `json:"assigned_doctor"`
	RoomNumber       string        `json:"room_number"`
}

func (in *AdmitInput) validate() error {
	var issues []string
	if strings.TrimSpace(in.Name) == "" {
		issues = append(issues, "name is required")
	}
	if in.Age <= 0 {
		issues = append(issues, "age must be a positive integer")
	}
	if strings.TrimSpace(string(in.AdmissionType)) == "" {
		issues = append(issues, "admission_type is required")
	}
	if strings.TrimSpace(in.RoomNumber) == "" {
		issues = append(issues, "room_number is required")
	}
	if strings.TrimSpace(in.AssignedDoctor) == "" {
		issues = append(issues, "assigned_doctor is required")
	}
	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

// FieldUpdates carries the independently optional fields of an update. A nil
// or empty field means "no change"; there is no way to clear a value, only to
// replace it with a new non-empty one.
type FieldUpdates struct {
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	Symptoms       *string `json:"symptoms,omitempty"`
	RoomNumber     *string `json:"room_number,omitempty"`
	AssignedDoctor *string `json:"assigned_doctor,omitempty"`
}

// diff returns the updates that would actually change p, dropping empty
// values and values equal to the current ones.
func (f FieldUpdates) diff(p *Patient) FieldUpdates {
	var out FieldUpdates
	out.Phone = changed(f.Phone, p.Personal.Phone)
	out.Address = changed(f.Address, p.Personal.Address)
	out.Symptoms = changed(f.Symptoms, p.Medical.Symptoms)
	out.RoomNumber = changed(f.RoomNumber, p.Admission.RoomNumber)
	out.AssignedDoctor = changed(f.AssignedDoctor, p.Admission.AssignedDoctor)
	return out
}

func (f FieldUpdates) empty() bool {
	return f.Phone == nil && f.Address == nil && f.Symptoms == nil &&
		f.RoomNumber == nil && f.AssignedDoctor == nil
}

func changed(v *string, current string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" || trimmed == current {
		return nil
	}
	return &trimmed
}

// NewPatientID generates a patient identifier of the form PAT followed by
// eight uppercase hex characters. Uniqueness is enforced by the store, not
// assumed from the generator.
func NewPatientID() string {
	return "PAT" + strings.ToUpper(uuid.NewString()[:8])
}
