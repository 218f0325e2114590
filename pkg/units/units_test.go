package units

import (
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestToBaseUnits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1", "1000000000000000000"},
		{"0.1", "100000000000000000"},
		{"0.0001", "100000000000000"},
		{"0.0000000001", "100000000"}, // tiny amounts must not collapse to zero
		{"0.000000000000000001", "1"},
		{"1234.5678", "1234567800000000000000"},
	}
	for _, c := range cases {
		got, err := ToBaseUnits(c.in)
		if err != nil {
			t.Fatalf("ToBaseUnits(%q): %v", c.in, err)
		}
		if got.String() != c.want {
			t.Errorf("ToBaseUnits(%q) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestToBaseUnits_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "-1", "-0.5", "1.2.3", "0.0000000000000000001"} {
		if _, err := ToBaseUnits(in); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("ToBaseUnits(%q) err = %v, want ErrInvalidAmount", in, err)
		}
	}
}

func TestBaseUnitsRoundTrip(t *testing.T) {
	// Canonical decimal strings (no trailing zeros) must survive the
	// round trip exactly, including sub-0.0001 values.
	for _, in := range []string{"0", "1", "0.5", "0.0001", "0.00009999", "0.0000000001", "0.000000000000000001", "123456.789"} {
		base, err := ToBaseUnits(in)
		if err != nil {
			t.Fatalf("ToBaseUnits(%q): %v", in, err)
		}
		if out := FromBaseUnits(base); out != in {
			t.Errorf("round trip %q -> %s -> %q", in, base, out)
		}
	}
}

func TestFromBaseUnits(t *testing.T) {
	one := new(big.Int)
	one.SetString("1050000000000000000", 10)
	if got := FromBaseUnits(one); got != "1.05" {
		t.Errorf("FromBaseUnits = %q, want 1.05", got)
	}
	if got := FromBaseUnits(big.NewInt(0)); got != "0" {
		t.Errorf("FromBaseUnits(0) = %q", got)
	}
}

func TestPercentToBasisPoints(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{1, 100},
		{5, 500},
		{0.25, 25},
		{7.77, 777},
		{100, 10000},
	}
	for _, c := range cases {
		got, err := PercentToBasisPoints(c.in)
		if err != nil {
			t.Fatalf("PercentToBasisPoints(%v): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("PercentToBasisPoints(%v) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPercentToBasisPoints_Invalid(t *testing.T) {
	for _, in := range []float64{0, -1, -0.01, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := PercentToBasisPoints(in); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("PercentToBasisPoints(%v) err = %v, want ErrInvalidRate", in, err)
		}
	}
}

func TestBasisPointsRoundTrip(t *testing.T) {
	// One or two decimal digits of percentage survive the round trip.
	for _, p := range []float64{0.01, 0.1, 1, 2.5, 5, 7.77, 12.34, 99.99} {
		bp, err := PercentToBasisPoints(p)
		if err != nil {
			t.Fatalf("PercentToBasisPoints(%v): %v", p, err)
		}
		if got := BasisPointsToPercent(bp); got != p {
			t.Errorf("round trip %v -> %d -> %v", p, bp, got)
		}
	}
}

func TestDaysSeconds(t *testing.T) {
	if got := DaysToSeconds(30); got != 2592000 {
		t.Errorf("DaysToSeconds(30) = %d", got)
	}
	if got := SecondsToDays(2592000); got != 30 {
		t.Errorf("SecondsToDays = %d", got)
	}
	// floor division on partial days
	if got := SecondsToDays(2592000 + 86399); got != 30 {
		t.Errorf("SecondsToDays partial = %d, want 30", got)
	}
}
