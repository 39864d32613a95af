package assessment

import (
	"reflect"
	"testing"
)

func testOrthoInput() Input {
	return Input{
		ClinicName:          "Test Ortho",
		AvgCallsPerDay:      40,
		ReceptionConfig:     ReceptionMultitasking,
		LeadFollowUpTime:    FollowUpNextDay,
		RunsAds:             true,
		MissedCallsStrategy: StrategyNothing,
		AvgCaseValue:        4500,
	}
}

func TestNewSlider_StartsAtDerivedRateUnclamped(t *testing.T) {
	in := testOrthoInput()
	s := NewSlider(in, Score(in))
	if s.MissRate() != 60 {
		t.Fatalf("initial miss rate = %d, want 60", s.MissRate())
	}
	p := s.Projection()
	if p.MissedCalls != 528 || p.Revenue != 118800 {
		t.Fatalf("unexpected initial projection %+v", p)
	}
}

func TestNewSlider_ZeroCallsFallsBackToDefaultRate(t *testing.T) {
	in := DefaultInput()
	in.AvgCallsPerDay = 0
	s := NewSlider(in, Score(in))
	if s.MissRate() != DefaultDisplayMissRate {
		t.Fatalf("initial miss rate = %d, want %d", s.MissRate(), DefaultDisplayMissRate)
	}
	if p := s.Projection(); p.MissedCalls != 0 || p.Revenue != 0 {
		t.Fatalf("expected empty projection, got %+v", p)
	}
}

func TestSlider_SetNeverTouchesResult(t *testing.T) {
	in := testOrthoInput()
	res := Score(in)
	s := NewSlider(in, res)

	for rate := MinDisplayMissRate; rate <= MaxDisplayMissRate; rate++ {
		p := s.Set(rate)
		if p.MissRate != rate {
			t.Fatalf("projection rate = %d, want %d", p.MissRate, rate)
		}
		if !reflect.DeepEqual(s.Result(), res) {
			t.Fatalf("result changed at rate %d: %+v", rate, s.Result())
		}
	}

	if res.MissedCallsPerMonth != 528 || res.PotentialRevenueRecovered != 117000 {
		t.Fatalf("caller's result was modified: %+v", res)
	}
}

func TestSlider_SetClamps(t *testing.T) {
	in := testOrthoInput()
	s := NewSlider(in, Score(in))

	if p := s.Set(2); p.MissRate != MinDisplayMissRate {
		t.Fatalf("Set(2) rate = %d, want %d", p.MissRate, MinDisplayMissRate)
	}
	if p := s.Set(90); p.MissRate != MaxDisplayMissRate {
		t.Fatalf("Set(90) rate = %d, want %d", p.MissRate, MaxDisplayMissRate)
	}
	if s.MissRate() != MaxDisplayMissRate {
		t.Fatalf("slider position = %d, want %d", s.MissRate(), MaxDisplayMissRate)
	}
}

func TestProject(t *testing.T) {
	in := testOrthoInput()
	tests := []struct {
		rate        int
		missedCalls int
		revenue     float64
	}{
		{5, 44, 9900},
		{15, 132, 29700},
		{50, 440, 99000},
	}
	for _, tt := range tests {
		p := Project(in, tt.rate)
		if p.MissedCalls != tt.missedCalls || p.Revenue != tt.revenue {
			t.Errorf("Project(%d) = %+v, want %d calls and %v revenue", tt.rate, p, tt.missedCalls, tt.revenue)
		}
	}
}

func TestResultCloneDoesNotAlias(t *testing.T) {
	res := Score(testOrthoInput())
	clone := res.Clone()
	clone.Recommendations[0] = "changed"
	if res.Recommendations[0] == "changed" {
		t.Fatal("clone shares recommendations with the original")
	}
}
