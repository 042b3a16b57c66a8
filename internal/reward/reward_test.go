package reward

import (
	"math"
	"testing"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		distance float64
		want     Tier
	}{
		{-10, TierNone},
		{0, TierNone},
		{199.99, TierNone},
		{200, TierBronze},
		{499.99, TierBronze},
		{500, TierSilver},
		{999.99, TierSilver},
		{1000, TierGold},
		{1999.99, TierGold},
		{2000, TierDiamond},
		{50000, TierDiamond},
	}
	for _, tc := range cases {
		if got := TierFor(tc.distance); got != tc.want {
			t.Errorf("TierFor(%f) = %s, want %s", tc.distance, got, tc.want)
		}
	}
}

func TestRemainingToNext(t *testing.T) {
	rem, ok := RemainingToNext(0)
	if !ok || rem != 200 {
		t.Errorf("at 0 m expected 200 to bronze, got %f ok=%v", rem, ok)
	}

	rem, ok = RemainingToNext(350)
	if !ok || rem != 150 {
		t.Errorf("at 350 m expected 150 to silver, got %f ok=%v", rem, ok)
	}

	rem, ok = RemainingToNext(1999)
	if !ok || rem != 1 {
		t.Errorf("at 1999 m expected 1 to diamond, got %f ok=%v", rem, ok)
	}

	if _, ok = RemainingToNext(2000); ok {
		t.Error("no tier exists past diamond")
	}

	rem, ok = RemainingToNext(-5)
	if !ok || rem != 200 {
		t.Errorf("negative distance should clamp to 0, got %f ok=%v", rem, ok)
	}
}

func TestNextBreakpoint(t *testing.T) {
	if got := NextBreakpoint(TierNone); got != 200 {
		t.Errorf("after none: %f", got)
	}
	if got := NextBreakpoint(TierGold); got != 2000 {
		t.Errorf("after gold: %f", got)
	}
	if got := NextBreakpoint(TierDiamond); !math.IsInf(got, 1) {
		t.Errorf("after diamond expected +Inf, got %f", got)
	}
}

func TestTierProgressionIsMonotonic(t *testing.T) {
	prev := TierNone
	for d := 0.0; d <= 2500; d += 25 {
		cur := TierFor(d)
		if cur < prev {
			t.Fatalf("tier regressed at %f m: %s -> %s", d, prev, cur)
		}
		prev = cur
	}
}
