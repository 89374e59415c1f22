package billing

import (
	"testing"

	"github.com/hms/hms/internal/domain/patient"
)

func TestRateFor(t *testing.T) {
	cases := []struct {
		name string
		typ  patient.AdmissionType
		want FeeRate
	}{
		{"emergency", patient.AdmissionEmergency, FeeRate{RoomPerDay: 5000, DoctorFee: 2000, MedicineBase: 1500}},
		{"regular", patient.AdmissionRegular, FeeRate{RoomPerDay: 3000, DoctorFee: 1500, MedicineBase: 1000}},
		{"icu", patient.AdmissionICU, FeeRate{RoomPerDay: 10000, DoctorFee: 3000, MedicineBase: 2500}},
		{"unknown falls back to regular", "Daycare", FeeRate{RoomPerDay: 3000, DoctorFee: 1500, MedicineBase: 1000}},
		{"blank falls back to regular", "", FeeRate{RoomPerDay: 3000, DoctorFee: 1500, MedicineBase: 1000}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RateFor(tc.typ); got != tc.want {
				t.Errorf("RateFor(%q) = %+v, want %+v", tc.typ, got, tc.want)
			}
		})
	}
}
