package bot

import (
	"context"
	"fmt"
	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"
	"log"
	"sleep-schedule-bot/db"
	"sleep-schedule-bot/schedule"
	"sleep-schedule-bot/templates"
	"time"
)

const (
	lockKindMute     = "mute"
	lockKindReminder = "reminder"
	lockKindConvert  = "convert"
)

// StartEnforcer runs the evaluation loop: once per minute every stored
// schedule is checked against its group's local time and the resulting
// actions are applied. Ticks never overlap.
func (s *Service) StartEnforcer(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(schedule.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.enforceTick()
			}
		}
	}()
}

func (s *Service) enforceTick() {
	schedules, err := s.db.GetAllSchedules()
	if err != nil {
		log.Printf("unable to list schedules: %v", err.Error())
		return
	}
	for chatID, chatSchedules := range groupByChat(schedules) {
		settings, err := s.db.GetGroupSettings(chatID)
		if err != nil {
			log.Printf("unable to get settings of chat %v: %v", chatID, err.Error())
			continue
		}
		localTime, err := s.resolver.Resolve(settings.Timezone)
		if err != nil {
			// Misconfigured group; skipped every tick until corrected.
			log.Printf("skipping chat %v: %v", chatID, err.Error())
			continue
		}
		for _, sched := range chatSchedules {
			s.enforceOne(localTime, sched)
		}
	}
}

func groupByChat(schedules []db.Schedule) map[int64][]db.Schedule {
	byChat := make(map[int64][]db.Schedule)
	for _, sched := range schedules {
		byChat[sched.ChatID] = append(byChat[sched.ChatID], sched)
	}
	return byChat
}

// enforceOne applies the evaluator's decision for a single schedule.
// Failures are logged and isolated so one user cannot block the tick.
func (s *Service) enforceOne(localTime schedule.LocalTime, sched db.Schedule) {
	plan, err := toPlan(sched)
	if err != nil {
		log.Printf("skipping schedule of user %v: %v", sched.UserID, err.Error())
		return
	}
	action := schedule.Evaluate(localTime, plan)
	switch action.Kind {
	case schedule.ConvertHabitToNormal:
		s.withActionLock(lockKindConvert, sched.UserID, localTime.Date, func() {
			s.convertHabit(sched)
		})
	case schedule.SendReminder:
		s.withActionLock(lockKindReminder, sched.UserID, localTime.Date, func() {
			s.sendReminder(localTime, sched)
		})
	case schedule.MuteUntilWake:
		s.withActionLock(lockKindMute, sched.UserID, localTime.Date, func() {
			s.mute(localTime, sched, action.Until)
		})
	case schedule.MuteTooShort:
		s.withActionLock(lockKindMute, sched.UserID, localTime.Date, func() {
			s.send(sched.ChatID, fmt.Sprintf(templates.MuteTooShort, sched.DisplayName))
		})
	}
}

func toPlan(sched db.Schedule) (schedule.Plan, error) {
	sleep, err := schedule.ParseClock(sched.SleepTime)
	if err != nil {
		return schedule.Plan{}, errors.Wrap(err, "bad sleep time")
	}
	wake, err := schedule.ParseClock(sched.WakeTime)
	if err != nil {
		return schedule.Plan{}, errors.Wrap(err, "bad wake time")
	}
	return schedule.Plan{
		UserID:           sched.UserID,
		ChatID:           sched.ChatID,
		DisplayName:      sched.DisplayName,
		Sleep:            sleep,
		Wake:             wake,
		Type:             schedule.PlanType(sched.PlanType),
		LeaveUntil:       sched.LeaveUntil,
		TotalLeaveDays:   sched.TotalLeaveDays,
		UsedLeaveDays:    sched.UsedLeaveDays,
		ExemptWeekends:   sched.ExemptWeekends,
		EndDate:          sched.EndDate,
		ReminderSentDate: sched.ReminderSentDate,
	}, nil
}

// withActionLock makes the side effect at-most-once per user and local
// date even when several bot instances share the store.
func (s *Service) withActionLock(kind string, userID int64, date string, action func()) {
	lock := s.mb.Action(kind, userID, date)
	err := lock.Lock()
	if err != nil {
		log.Println(err.Error())
		return
	}
	defer func() {
		_, err := lock.Unlock()
		if err != nil {
			log.Println(err.Error())
		}
	}()
	action()
}

func (s *Service) convertHabit(sched db.Schedule) {
	err := s.db.SetPlanNormal(sched.UserID)
	if err != nil {
		log.Printf("unable to convert habit plan of user %v: %v", sched.UserID, err.Error())
		return
	}
	s.send(sched.ChatID, fmt.Sprintf(templates.HabitComplete, sched.DisplayName))
}

// sendReminder marks the date only after a successful send. A failed
// send at the reminder minute is a missed occurrence, not retried.
func (s *Service) sendReminder(localTime schedule.LocalTime, sched db.Schedule) {
	_, err := s.bot.Send(tele.ChatID(sched.ChatID), fmt.Sprintf(templates.Reminder, sched.DisplayName))
	if err != nil {
		log.Printf("reminder failed for user %v: %v", sched.UserID, err.Error())
		return
	}
	err = s.db.MarkReminderSent(sched.UserID, localTime.Date)
	if err != nil {
		log.Printf("unable to mark reminder sent for user %v: %v", sched.UserID, err.Error())
	}
}

// mute applies a self-expiring restriction: Telegram lifts it at the
// wake deadline on its own, so no unmute pass is needed even if the bot
// is down at the wake minute.
func (s *Service) mute(localTime schedule.LocalTime, sched db.Schedule, until time.Time) {
	if until.Sub(localTime.Now) > schedule.MaxRestriction {
		until = localTime.Now.Add(schedule.MaxRestriction)
	}
	member := &tele.ChatMember{
		User:            &tele.User{ID: sched.UserID},
		Rights:          tele.NoRights(),
		RestrictedUntil: until.Unix(),
	}
	err := s.bot.Restrict(&tele.Chat{ID: sched.ChatID}, member)
	if err != nil {
		log.Printf("mute failed for user %v: %v", sched.UserID, err.Error())
		return
	}
	s.send(sched.ChatID, fmt.Sprintf(templates.GoodNight, sched.DisplayName))
}
