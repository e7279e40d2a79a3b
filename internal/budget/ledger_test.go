package budget

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFloorZero(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"100.50", "100.50"},
		{"0", "0"},
		{"-0.01", "0"},
		{"-500", "0"},
	}
	for _, c := range cases {
		got := floorZero(mustDecimal(t, c.in))
		if !got.Equal(mustDecimal(t, c.want)) {
			t.Errorf("floorZero(%s): got %s, want %s", c.in, got, c.want)
		}
	}
}

func TestAvailabilityExposesRawAndFloored(t *testing.T) {
	// Overspent pool: raw stays negative for arithmetic, floored is for display.
	total := decimal.NewFromInt(100)
	approved := decimal.NewFromInt(130)
	raw := total.Sub(approved)

	a := Availability{
		Total:    total,
		Approved: approved,
		Raw:      raw,
		Floored:  floorZero(raw),
	}

	if !a.Raw.Equal(decimal.NewFromInt(-30)) {
		t.Errorf("raw availability should stay negative, got %s", a.Raw)
	}
	if !a.Floored.IsZero() {
		t.Errorf("floored availability should clamp to zero, got %s", a.Floored)
	}
}
