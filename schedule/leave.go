package schedule

// LeaveStatus classifies the outcome of a leave-day request.
type LeaveStatus int

const (
	LeaveNoPlan LeaveStatus = iota
	LeaveAppliedNormal
	LeaveAppliedHabit
	LeaveNoDaysLeft
)

type LeaveResult struct {
	Status LeaveStatus
	// RemainingDays is the leave budget left after this grant; habit plans only.
	RemainingDays int
}

// ApplyLeave decides whether a one-day exemption can be taken. The caller
// persists the grant (and, for habit plans, the budget increment) only
// when the status reports success.
func ApplyLeave(planType PlanType, usedDays, totalDays int) LeaveResult {
	switch planType {
	case PlanNormal:
		return LeaveResult{Status: LeaveAppliedNormal}
	case PlanHabit:
		if usedDays >= totalDays {
			return LeaveResult{Status: LeaveNoDaysLeft}
		}
		return LeaveResult{Status: LeaveAppliedHabit, RemainingDays: totalDays - usedDays - 1}
	}
	return LeaveResult{Status: LeaveNoPlan}
}
