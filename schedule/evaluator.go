package schedule

import "time"

type PlanType string

const (
	PlanNormal PlanType = "normal"
	PlanHabit  PlanType = "habit"
)

// Plan is the evaluator's view of one stored schedule. All dates are
// calendar-date strings in the owning group's local zone.
type Plan struct {
	UserID           int64
	ChatID           int64
	DisplayName      string
	Sleep            Clock
	Wake             Clock
	Type             PlanType
	LeaveUntil       string
	TotalLeaveDays   int
	UsedLeaveDays    int
	ExemptWeekends   bool
	EndDate          string
	ReminderSentDate string
}

type ActionKind int

const (
	NoAction ActionKind = iota
	ConvertHabitToNormal
	SendReminder
	MuteUntilWake
	MuteTooShort
)

type Action struct {
	Kind ActionKind
	// Until is the wake deadline, set only for MuteUntilWake.
	Until time.Time
}

const (
	// Minutes before sleep time at which the pre-sleep reminder fires.
	ReminderLead = 15
	// Telegram treats restrictions shorter than ~30 seconds as permanent.
	MinRestriction = 30 * time.Second
	// Telegram treats restrictions longer than 366 days as permanent.
	MaxRestriction = 366 * 24 * time.Hour
	PollInterval   = time.Minute
)

// Evaluate decides the single action for one schedule at one tick.
// Conditions are checked in priority order; the first match wins.
func Evaluate(lt LocalTime, p Plan) Action {
	if p.LeaveUntil == lt.Date {
		return Action{}
	}
	if p.Type == PlanHabit && p.ExemptWeekends && lt.Weekend {
		return Action{}
	}
	if p.Type == PlanHabit && p.EndDate != "" && lt.Date > p.EndDate {
		// Mute and reminder checks resume next tick, on the normal plan.
		return Action{Kind: ConvertHabitToNormal}
	}
	if lt.Clock == p.Sleep.Back(ReminderLead) && p.ReminderSentDate != lt.Date {
		return Action{Kind: SendReminder}
	}
	if lt.Clock == p.Sleep {
		if p.Wake == p.Sleep {
			return Action{Kind: MuteTooShort}
		}
		until := wakeDeadline(lt.Now, p.Wake)
		if until.Sub(lt.Now) < MinRestriction {
			return Action{Kind: MuteTooShort}
		}
		return Action{Kind: MuteUntilWake, Until: until}
	}
	return Action{}
}

// wakeDeadline combines today's date with the wake clock, rolling to
// tomorrow when the wake time has already passed.
func wakeDeadline(now time.Time, wake Clock) time.Time {
	deadline := time.Date(
		now.Year(), now.Month(), now.Day(),
		int(wake)/60, int(wake)%60, 0, 0,
		now.Location(),
	)
	if !deadline.After(now) {
		deadline = deadline.Add(24 * time.Hour)
	}
	return deadline
}
