package schedule

import (
	"testing"
	"time"
)

// resolveAt builds the group-local view of a fixed moment.
func resolveAt(t *testing.T, zone string, y int, m time.Month, d, hh, mm int) LocalTime {
	t.Helper()
	location, err := time.LoadLocation(zone)
	if err != nil {
		t.Fatalf("load zone %v: %v", zone, err)
	}
	r := NewResolver()
	r.now = func() time.Time { return time.Date(y, m, d, hh, mm, 0, 0, location) }
	localTime, err := r.Resolve(zone)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return localTime
}

func mustClock(t *testing.T, s string) Clock {
	t.Helper()
	c, err := ParseClock(s)
	if err != nil {
		t.Fatalf("parse clock %v: %v", s, err)
	}
	return c
}

func normalPlan(t *testing.T, sleep, wake string) Plan {
	t.Helper()
	return Plan{
		UserID: 1,
		ChatID: -100,
		Sleep:  mustClock(t, sleep),
		Wake:   mustClock(t, wake),
		Type:   PlanNormal,
	}
}

func TestEvaluate_LeaveDaySkipsEverything(t *testing.T) {
	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 23, 0)
	p := normalPlan(t, "23:00", "07:00")
	p.LeaveUntil = lt.Date
	if got := Evaluate(lt, p); got.Kind != NoAction {
		t.Fatalf("want NoAction on a leave day, got %v", got.Kind)
	}
}

func TestEvaluate_WeekendExemption(t *testing.T) {
	// 2025-05-10 is a Saturday.
	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 10, 23, 0)
	if !lt.Weekend {
		t.Fatal("expected a weekend date")
	}
	p := normalPlan(t, "23:00", "07:00")
	p.Type = PlanHabit
	p.ExemptWeekends = true
	if got := Evaluate(lt, p); got.Kind != NoAction {
		t.Fatalf("want NoAction on an exempt weekend, got %v", got.Kind)
	}

	p.ExemptWeekends = false
	if got := Evaluate(lt, p); got.Kind != MuteUntilWake {
		t.Fatalf("want MuteUntilWake without exemption, got %v", got.Kind)
	}
}

func TestEvaluate_ExpiredHabitConvertsAndNothingElse(t *testing.T) {
	// Sleep minute matches too, but conversion must win the tick.
	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 23, 0)
	p := normalPlan(t, "23:00", "07:00")
	p.Type = PlanHabit
	p.EndDate = "2025-05-01"
	if got := Evaluate(lt, p); got.Kind != ConvertHabitToNormal {
		t.Fatalf("want ConvertHabitToNormal, got %v", got.Kind)
	}

	p.EndDate = lt.Date
	if got := Evaluate(lt, p); got.Kind != MuteUntilWake {
		t.Fatalf("end date is inclusive; want MuteUntilWake on the last day, got %v", got.Kind)
	}
}

func TestEvaluate_ReminderOncePerDay(t *testing.T) {
	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 22, 45)
	p := normalPlan(t, "23:00", "07:00")
	if got := Evaluate(lt, p); got.Kind != SendReminder {
		t.Fatalf("want SendReminder at sleep-15m, got %v", got.Kind)
	}

	p.ReminderSentDate = lt.Date
	if got := Evaluate(lt, p); got.Kind != NoAction {
		t.Fatalf("want NoAction for an already-sent reminder, got %v", got.Kind)
	}
}

func TestEvaluate_ReminderWrapsMidnight(t *testing.T) {
	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 23, 55)
	p := normalPlan(t, "00:10", "08:00")
	if got := Evaluate(lt, p); got.Kind != SendReminder {
		t.Fatalf("want SendReminder at 23:55 for a 00:10 sleep time, got %v", got.Kind)
	}
}

func TestEvaluate_MuteRollsWakeToNextDay(t *testing.T) {
	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 23, 0)
	p := normalPlan(t, "23:00", "07:00")
	got := Evaluate(lt, p)
	if got.Kind != MuteUntilWake {
		t.Fatalf("want MuteUntilWake, got %v", got.Kind)
	}
	want := time.Date(2025, time.May, 6, 7, 0, 0, 0, lt.Now.Location())
	if !got.Until.Equal(want) {
		t.Fatalf("want wake deadline %v, got %v", want, got.Until)
	}
}

func TestEvaluate_MuteSameDayWake(t *testing.T) {
	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 13, 0)
	p := normalPlan(t, "13:00", "15:30")
	got := Evaluate(lt, p)
	if got.Kind != MuteUntilWake {
		t.Fatalf("want MuteUntilWake, got %v", got.Kind)
	}
	want := time.Date(2025, time.May, 5, 15, 30, 0, 0, lt.Now.Location())
	if !got.Until.Equal(want) {
		t.Fatalf("want wake deadline %v, got %v", want, got.Until)
	}
}

func TestEvaluate_ZeroWindowDowngrades(t *testing.T) {
	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 23, 0)
	p := normalPlan(t, "23:00", "23:00")
	if got := Evaluate(lt, p); got.Kind != MuteTooShort {
		t.Fatalf("want MuteTooShort for a zero-length window, got %v", got.Kind)
	}
}

func TestEvaluate_OffMinutesProduceNothing(t *testing.T) {
	p := normalPlan(t, "23:00", "07:00")
	for _, minute := range []int{44, 46, 1, 59} {
		lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 22, minute)
		if got := Evaluate(lt, p); got.Kind != NoAction {
			t.Fatalf("want NoAction at 22:%02d, got %v", minute, got.Kind)
		}
	}
}

// The end-to-end scenario from the group's point of view: reminder at
// 22:45, self-expiring mute at 23:00, silence in between and after.
func TestEvaluate_FullEvening(t *testing.T) {
	p := normalPlan(t, "23:00", "07:00")

	lt := resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 22, 45)
	if got := Evaluate(lt, p); got.Kind != SendReminder {
		t.Fatalf("22:45: want SendReminder, got %v", got.Kind)
	}
	p.ReminderSentDate = lt.Date

	lt = resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 22, 50)
	if got := Evaluate(lt, p); got.Kind != NoAction {
		t.Fatalf("22:50: want NoAction, got %v", got.Kind)
	}

	lt = resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 23, 0)
	got := Evaluate(lt, p)
	if got.Kind != MuteUntilWake {
		t.Fatalf("23:00: want MuteUntilWake, got %v", got.Kind)
	}
	want := time.Date(2025, time.May, 6, 7, 0, 0, 0, lt.Now.Location())
	if !got.Until.Equal(want) {
		t.Fatalf("23:00: want until %v, got %v", want, got.Until)
	}

	lt = resolveAt(t, "Asia/Shanghai", 2025, time.May, 5, 23, 1)
	if got := Evaluate(lt, p); got.Kind != NoAction {
		t.Fatalf("23:01: want NoAction, got %v", got.Kind)
	}
}
