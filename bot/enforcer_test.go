package bot

import (
	"sleep-schedule-bot/db"
	"sleep-schedule-bot/schedule"
	"testing"
)

func TestGroupByChat(t *testing.T) {
	schedules := []db.Schedule{
		{UserID: 1, ChatID: -100},
		{UserID: 2, ChatID: -200},
		{UserID: 3, ChatID: -100},
	}
	byChat := groupByChat(schedules)
	if len(byChat) != 2 {
		t.Fatalf("want 2 chats, got %v", len(byChat))
	}
	if len(byChat[-100]) != 2 || len(byChat[-200]) != 1 {
		t.Fatalf("unexpected partition: %v", byChat)
	}
}

func TestToPlan(t *testing.T) {
	sched := db.Schedule{
		UserID:         7,
		ChatID:         -100,
		DisplayName:    "Lena",
		SleepTime:      "23:00",
		WakeTime:       "07:00",
		PlanType:       "habit",
		TotalLeaveDays: 3,
		UsedLeaveDays:  1,
		ExemptWeekends: true,
		EndDate:        "2025-06-01",
	}
	plan, err := toPlan(sched)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Type != schedule.PlanHabit {
		t.Fatalf("want habit plan, got %v", plan.Type)
	}
	if plan.Sleep.String() != "23:00" || plan.Wake.String() != "07:00" {
		t.Fatalf("clock mismatch: %v %v", plan.Sleep, plan.Wake)
	}
	if !plan.ExemptWeekends || plan.EndDate != "2025-06-01" {
		t.Fatalf("habit fields lost: %+v", plan)
	}
}

func TestToPlanRejectsMalformedTimes(t *testing.T) {
	for _, sched := range []db.Schedule{
		{SleepTime: "25:00", WakeTime: "07:00"},
		{SleepTime: "23:00", WakeTime: "7 am"},
	} {
		if _, err := toPlan(sched); err == nil {
			t.Fatalf("want an error for %v %v", sched.SleepTime, sched.WakeTime)
		}
	}
}
