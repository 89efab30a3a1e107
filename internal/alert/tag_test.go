package alert

import (
	"testing"

	"tradealerts/internal/models"
)

func TestDeriveTag(t *testing.T) {
	cases := []struct {
		direction, tf string
		want          string
	}{
		{models.StatusBullish, "1MIN", "C1"},
		{models.StatusBearish, "1MIN", "P1"},
		{models.StatusBullish, "5MIN", "C5"},
		{models.StatusBearish, "15MIN", "P15"},
		{models.StatusBullish, "30MIN", "C30"},
		{models.StatusBullish, "1HR", "CALL1H"},
		{models.StatusBearish, "2HR", "PUT2H"},
		{models.StatusBullish, "4HR", "CALL4H"},
		{models.StatusBearish, "1DAY", "PUT1D"},
	}
	for _, tc := range cases {
		got, ok := DeriveTag(tc.direction, tc.tf)
		if !ok {
			t.Fatalf("DeriveTag(%s, %s) not ok", tc.direction, tc.tf)
		}
		if got != tc.want {
			t.Fatalf("DeriveTag(%s, %s) = %q, want %q", tc.direction, tc.tf, got, tc.want)
		}
	}
}

func TestDeriveTagUnknownTimeframe(t *testing.T) {
	if tag, ok := DeriveTag(models.StatusBullish, "3MIN"); ok {
		t.Fatalf("unknown timeframe produced tag %q", tag)
	}
}
