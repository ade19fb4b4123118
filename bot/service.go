package bot

import (
	"fmt"
	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"
	"log"
	"sleep-schedule-bot/db"
	"sleep-schedule-bot/mutex"
	"sleep-schedule-bot/schedule"
	"sleep-schedule-bot/templates"
	"sleep-schedule-bot/timezone"
	"strings"
	"time"
)

type Service struct {
	db       *db.DB
	mb       *mutex.Builder
	tz       *timezone.Service
	bot      *tele.Bot
	resolver *schedule.Resolver
	sessions *habitSessions
}

func NewService(
	db *db.DB,
	mb *mutex.Builder,
	tz *timezone.Service,
	bot *tele.Bot,
) *Service {
	return &Service{
		db:       db,
		mb:       mb,
		tz:       tz,
		bot:      bot,
		resolver: schedule.NewResolver(),
		sessions: newHabitSessions(),
	}
}

func (s *Service) Hello(context tele.Context) error {
	return context.Send(templates.Hello)
}

func (s *Service) InitGroup(context tele.Context) error {
	if context.Chat().Type == tele.ChatPrivate {
		return context.Send(templates.GroupOnly)
	}
	owner, err := s.isOwner(context.Chat(), context.Sender())
	if err != nil {
		return err
	}
	if !owner {
		return context.Send(templates.OwnerOnly)
	}
	zone := strings.TrimSpace(context.Data())
	if len(zone) == 0 || len(strings.Fields(zone)) != 1 {
		return context.Send(templates.InitUsage)
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return context.Send(fmt.Sprintf(templates.BadTimezone, zone))
	}
	err = s.db.SetGroupTimezone(context.Chat().ID, zone)
	if err != nil {
		return errors.Wrap(err, "cannot save group timezone")
	}
	return context.Send(fmt.Sprintf(templates.TimezoneSuccess, zone))
}

// OnLocation sets the group timezone from a shared location; an
// alternative to typing a zone name into /init.
func (s *Service) OnLocation(context tele.Context) error {
	if context.Chat().Type == tele.ChatPrivate {
		return nil
	}
	owner, err := s.isOwner(context.Chat(), context.Sender())
	if err != nil {
		return err
	}
	if !owner {
		return nil
	}
	location := context.Message().Location
	if location == nil {
		return errors.New("location is empty")
	}
	zone, err := s.tz.ZoneByLocation(
		fmt.Sprintf("%f", location.Lat),
		fmt.Sprintf("%f", location.Lng),
	)
	if err != nil {
		return errors.Wrapf(err, "error on getting timezone by location lat: %v, lng: %v", location.Lat, location.Lng)
	}
	if _, err := time.LoadLocation(zone); err != nil {
		return context.Send(fmt.Sprintf(templates.BadTimezone, zone))
	}
	err = s.db.SetGroupTimezone(context.Chat().ID, zone)
	if err != nil {
		return err
	}
	return context.Send(fmt.Sprintf(templates.TimezoneSuccess, zone))
}

func (s *Service) ShowSettings(context tele.Context) error {
	if context.Chat().Type == tele.ChatPrivate {
		return context.Send(templates.GroupOnly)
	}
	settings, err := s.db.GetGroupSettings(context.Chat().ID)
	if err != nil {
		return errors.Wrap(err, "cannot get group settings")
	}
	return context.Send(fmt.Sprintf(
		templates.Settings,
		settings.Timezone,
		yesNo(settings.AdminCanBreakHabit),
		settings.MaxLeaveDays,
	))
}

func (s *Service) SetPlan(context tele.Context) error {
	if context.Chat().Type == tele.ChatPrivate {
		return context.Send(templates.GroupOnly)
	}
	user := context.Sender()
	existing, err := s.db.GetSchedule(user.ID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	if err == nil && existing.PlanType == string(schedule.PlanHabit) {
		return context.Send(templates.HabitLocked)
	}
	owner, err := s.isOwner(context.Chat(), user)
	if err != nil {
		return err
	}
	if owner {
		return context.Send(templates.OwnerUnmutable)
	}
	args := context.Args()
	if len(args) != 2 {
		return context.Send(templates.SetUsage)
	}
	sleep, err := schedule.ParseClock(args[0])
	if err != nil {
		return context.Send(templates.BadClock)
	}
	wake, err := schedule.ParseClock(args[1])
	if err != nil {
		return context.Send(templates.BadClock)
	}
	err = s.db.UpsertSchedule(
		db.Schedule{
			UserID:      user.ID,
			ChatID:      context.Chat().ID,
			DisplayName: user.FirstName,
			SleepTime:   sleep.String(),
			WakeTime:    wake.String(),
			PlanType:    string(schedule.PlanNormal),
		},
	)
	if err != nil {
		return errors.Wrap(err, "cannot save schedule")
	}
	return context.Send(fmt.Sprintf(templates.SetSuccess, user.FirstName, sleep, wake))
}

func (s *Service) ShowPlan(context tele.Context) error {
	user := context.Sender()
	sched, err := s.db.GetSchedule(user.ID)
	if err != nil && errors.Is(err, db.ErrNotFound) {
		return context.Send(templates.NoPlan)
	}
	if err != nil {
		return err
	}
	if sched.PlanType == string(schedule.PlanHabit) {
		ends := sched.EndDate
		if ends == "" {
			ends = "never"
		}
		remaining := sched.TotalLeaveDays - sched.UsedLeaveDays
		return context.Send(fmt.Sprintf(
			templates.PlanHabit,
			sched.SleepTime, sched.WakeTime,
			yesNo(sched.ExemptWeekends), remaining, ends,
		))
	}
	return context.Send(fmt.Sprintf(templates.PlanNormal, sched.SleepTime, sched.WakeTime))
}

func (s *Service) RemovePlan(context tele.Context) error {
	user := context.Sender()
	sched, err := s.db.GetSchedule(user.ID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return err
	}
	if err == nil && sched.PlanType == string(schedule.PlanHabit) {
		return context.Send(templates.HabitLocked)
	}
	removed, err := s.db.RemoveSchedule(user.ID)
	if err != nil {
		return errors.Wrap(err, "cannot remove schedule")
	}
	if !removed {
		return context.Send(templates.RemoveNothing)
	}
	return context.Send(templates.RemoveSuccess)
}

func (s *Service) TakeLeaveDay(context tele.Context) error {
	if context.Chat().Type == tele.ChatPrivate {
		return context.Send(templates.GroupOnly)
	}
	settings, err := s.db.GetGroupSettings(context.Chat().ID)
	if err != nil {
		return errors.Wrap(err, "cannot get group settings")
	}
	localTime, err := s.resolver.Resolve(settings.Timezone)
	if err != nil {
		return errors.Wrapf(err, "cannot resolve local time for chat %v", context.Chat().ID)
	}
	result, err := s.db.ApplyLeaveDay(context.Sender().ID, localTime.Date)
	if err != nil {
		return errors.Wrap(err, "cannot apply leave day")
	}
	switch result.Status {
	case schedule.LeaveAppliedNormal:
		return context.Send(templates.LeaveNormal)
	case schedule.LeaveAppliedHabit:
		return context.Send(fmt.Sprintf(templates.LeaveHabit, result.RemainingDays))
	case schedule.LeaveNoDaysLeft:
		return context.Send(templates.LeaveNoDaysLeft)
	}
	return context.Send(templates.NoPlan)
}

// BreakHabit is the administrative override for locked habit plans,
// available only when the owner enabled it for the group.
func (s *Service) BreakHabit(context tele.Context) error {
	if context.Chat().Type == tele.ChatPrivate {
		return context.Send(templates.GroupOnly)
	}
	settings, err := s.db.GetGroupSettings(context.Chat().ID)
	if err != nil {
		return errors.Wrap(err, "cannot get group settings")
	}
	if !settings.AdminCanBreakHabit {
		return context.Send(templates.BreakDisabled)
	}
	admin, err := s.isAdmin(context.Chat(), context.Sender())
	if err != nil {
		return err
	}
	if !admin {
		return context.Send(templates.AdminOnly)
	}
	replyTo := context.Message().ReplyTo
	if replyTo == nil || replyTo.Sender == nil {
		return context.Send(templates.BreakUsage)
	}
	target := replyTo.Sender
	sched, err := s.db.GetSchedule(target.ID)
	if err != nil && errors.Is(err, db.ErrNotFound) {
		return context.Send(templates.BreakNoHabit)
	}
	if err != nil {
		return err
	}
	if sched.PlanType != string(schedule.PlanHabit) {
		return context.Send(templates.BreakNoHabit)
	}
	_, err = s.db.RemoveSchedule(target.ID)
	if err != nil {
		return errors.Wrap(err, "cannot remove habit schedule")
	}
	return context.Send(fmt.Sprintf(templates.BreakSuccess, target.FirstName))
}

func (s *Service) AllowBreak(context tele.Context) error {
	if context.Chat().Type == tele.ChatPrivate {
		return context.Send(templates.GroupOnly)
	}
	owner, err := s.isOwner(context.Chat(), context.Sender())
	if err != nil {
		return err
	}
	if !owner {
		return context.Send(templates.OwnerOnly)
	}
	var allowed bool
	switch strings.TrimSpace(context.Data()) {
	case "on":
		allowed = true
	case "off":
		allowed = false
	default:
		return context.Send(templates.AllowBreakUsage)
	}
	err = s.db.SetAdminCanBreakHabit(context.Chat().ID, allowed)
	if err != nil {
		return errors.Wrap(err, "cannot update group settings")
	}
	return context.Send(fmt.Sprintf(templates.AllowBreakSuccess, yesNo(allowed)))
}

func (s *Service) isOwner(chat *tele.Chat, user *tele.User) (bool, error) {
	admins, err := s.bot.AdminsOf(chat)
	if err != nil {
		return false, errors.Wrapf(err, "cannot list administrators of chat %v", chat.ID)
	}
	for _, admin := range admins {
		if admin.Role == tele.Creator && admin.User.ID == user.ID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) isAdmin(chat *tele.Chat, user *tele.User) (bool, error) {
	admins, err := s.bot.AdminsOf(chat)
	if err != nil {
		return false, errors.Wrapf(err, "cannot list administrators of chat %v", chat.ID)
	}
	for _, admin := range admins {
		if admin.User.ID != user.ID {
			continue
		}
		if admin.Role == tele.Creator || admin.Role == tele.Administrator {
			return true, nil
		}
	}
	return false, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func (s *Service) send(chatID int64, text string) {
	_, err := s.bot.Send(tele.ChatID(chatID), text)
	if err != nil {
		log.Println(err.Error())
	}
}
