package track

import (
	"testing"
	"time"

	"github.com/stridelands/engine/pkg/core"
)

var guardBase = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func claimGuard() *Guard {
	return NewGuard(core.SessionClaim, GuardConfig{WarnKmh: 15, HardKmh: 30})
}

func exploreGuard() *Guard {
	return NewGuard(core.SessionExplore, GuardConfig{HardKmh: 30, GraceTimeout: 10 * time.Second})
}

func TestClaimGuard_UnderLimit(t *testing.T) {
	g := claimGuard()
	v := g.Evaluate(5, guardBase)
	if v.Decision != DecisionContinue || !v.AccrueDistance {
		t.Errorf("expected continue with accrual, got %+v", v)
	}
}

func TestClaimGuard_WarnBand(t *testing.T) {
	g := claimGuard()
	v := g.Evaluate(20, guardBase)
	if v.Decision != DecisionWarn {
		t.Errorf("expected warn between ceilings, got %+v", v)
	}
	if !v.AccrueDistance {
		t.Error("warn band must keep accruing distance")
	}
}

func TestClaimGuard_HardStopImmediate(t *testing.T) {
	g := claimGuard()
	v := g.Evaluate(31, guardBase)
	if v.Decision != DecisionTerminate {
		t.Fatalf("expected termination above hard ceiling, got %+v", v)
	}
	if v.Reason != core.StopOverspeedHard {
		t.Errorf("expected StopOverspeedHard, got %v", v.Reason)
	}
}

func TestExploreGuard_NineSecondsOverThenRecovers(t *testing.T) {
	g := exploreGuard()

	for _, offset := range []time.Duration{0, 3 * time.Second, 6 * time.Second, 9 * time.Second} {
		v := g.Evaluate(35, guardBase.Add(offset))
		if v.Decision == DecisionTerminate {
			t.Fatalf("terminated after %s, inside the grace period", offset)
		}
		if v.AccrueDistance {
			t.Errorf("distance must not accrue while over the limit (t=%s)", offset)
		}
	}

	v := g.Evaluate(10, guardBase.Add(9500*time.Millisecond))
	if v.Decision != DecisionContinue || !v.AccrueDistance {
		t.Fatalf("expected recovery to clear the countdown, got %+v", v)
	}
	if g.State().IsOverLimit {
		t.Error("over-limit flag must clear on recovery")
	}
	if !g.State().ViolationDeadline.IsZero() {
		t.Error("deadline must be cancelled on recovery")
	}
}

func TestExploreGuard_ElevenSecondsOverTerminates(t *testing.T) {
	g := exploreGuard()

	g.Evaluate(35, guardBase)
	v := g.Evaluate(35, guardBase.Add(11*time.Second))
	if v.Decision != DecisionTerminate {
		t.Fatalf("expected termination after 11 s over the limit, got %+v", v)
	}
	if v.Reason != core.StopOverspeedTimeout {
		t.Errorf("expected StopOverspeedTimeout, got %v", v.Reason)
	}
}

func TestExploreGuard_DeadlineBoundary(t *testing.T) {
	g := exploreGuard()

	g.Evaluate(40, guardBase)
	// Exactly at the deadline counts as expired.
	v := g.Evaluate(40, guardBase.Add(10*time.Second))
	if v.Decision != DecisionTerminate {
		t.Errorf("expected termination exactly at the deadline, got %+v", v)
	}
}

func TestExploreGuard_CountdownNotRestartedWhileOver(t *testing.T) {
	g := exploreGuard()

	g.Evaluate(35, guardBase)
	first := g.State().ViolationDeadline
	g.Evaluate(45, guardBase.Add(4*time.Second))
	if !g.State().ViolationDeadline.Equal(first) {
		t.Error("deadline must not move while continuously over the limit")
	}
}

func TestGuard_Reset(t *testing.T) {
	g := exploreGuard()
	g.Evaluate(35, guardBase)
	g.Reset()
	if g.State().IsOverLimit || !g.State().ViolationDeadline.IsZero() {
		t.Error("reset must clear all state")
	}
}
