package billing

import "testing"

func TestParseCharge(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{"", 0},
		{"abc", 0},
		{"-50", 0},
		{"0", 0},
		{"1250.75", 1250.75},
		{"300", 300},
	}
	for _, tc := range cases {
		if got := ParseCharge(tc.raw); got != tc.want {
			t.Errorf("ParseCharge(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestParseAdHocCharges(t *testing.T) {
	got := ParseAdHocCharges("100", "garbage", "")
	if got.Lab != 100 || got.Procedure != 0 || got.Pharmacy != 0 {
		t.Errorf("unexpected charges: %+v", got)
	}
}

func TestChargesTotal(t *testing.T) {
	c := Charges{Room: 6000, Doctor: 1500, Medicine: 1000, Lab: 500, Procedure: 800, Pharmacy: 200}
	if got := c.Total(); got != 10000 {
		t.Errorf("Total() = %v, want 10000", got)
	}
}
