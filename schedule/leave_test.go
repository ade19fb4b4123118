package schedule

import "testing"

func TestApplyLeave(t *testing.T) {
	cases := []struct {
		name          string
		planType      PlanType
		used, total   int
		wantStatus    LeaveStatus
		wantRemaining int
	}{
		{"normal plan", PlanNormal, 0, 0, LeaveAppliedNormal, 0},
		{"habit with budget", PlanHabit, 2, 3, LeaveAppliedHabit, 0},
		{"habit budget spent", PlanHabit, 3, 3, LeaveNoDaysLeft, 0},
		{"habit fresh", PlanHabit, 0, 5, LeaveAppliedHabit, 4},
		{"unknown plan type", PlanType(""), 0, 0, LeaveNoPlan, 0},
	}
	for _, c := range cases {
		got := ApplyLeave(c.planType, c.used, c.total)
		if got.Status != c.wantStatus {
			t.Fatalf("%v: want status %v, got %v", c.name, c.wantStatus, got.Status)
		}
		if got.RemainingDays != c.wantRemaining {
			t.Fatalf("%v: want %v remaining, got %v", c.name, c.wantRemaining, got.RemainingDays)
		}
	}
}
