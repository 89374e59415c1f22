package billing

import (
	"github.com/hms/hms/internal/domain/patient"
)

// FeeRate is the per-admission-type fee schedule entry. Room is charged per
// day; doctor and medicine fees are flat per bill.
type FeeRate struct {
	RoomPerDay   float64 `json:"room_per_day"`
	DoctorFee    float64 `json:"doctor_fee"`
	MedicineBase float64 `json:"medicine_base"`
}

// feeSchedule is fixed for the life of the process.
var feeSchedule = map[patient.AdmissionType]FeeRate{
	patient.AdmissionEmergency: {RoomPerDay: 5000, DoctorFee: 2000, MedicineBase: 1500},
	patient.AdmissionRegular:   {RoomPerDay: 3000, DoctorFee: 1500, MedicineBase: 1000},
	patient.AdmissionICU:       {RoomPerDay: 10000, DoctorFee: 3000, MedicineBase: 2500},
}

// RateFor resolves the fee schedule entry for an admission type. Unknown or
// blank types fall back to the Regular entry; that is deliberate, not an
// error.
func RateFor(t patient.AdmissionType) FeeRate {
	if rate, ok := feeSchedule[t]; ok {
		return rate
	}
	return feeSchedule[patient.AdmissionRegular]
}
