package bot

import (
	"fmt"
	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"
	"regexp"
	"sleep-schedule-bot/db"
	"sleep-schedule-bot/schedule"
	"sleep-schedule-bot/templates"
	"strconv"
	"strings"
	"sync"
)

// The habit setup walks one user through four steps; each step advances
// the session state, /cancel drops it at any point.
type habitState int

const (
	collectTimes habitState = iota
	collectDuration
	collectLeaveDays
	collectWeekendOption
)

// habitSession is the transient state of one user's habit plan setup.
type habitSession struct {
	chatID    int64
	state     habitState
	sleep     schedule.Clock
	wake      schedule.Clock
	duration  int // plan length in days, 0 = no end date
	leaveDays int
}

type habitSessions struct {
	mu       sync.Mutex
	sessions map[int64]*habitSession
}

func newHabitSessions() *habitSessions {
	return &habitSessions{sessions: make(map[int64]*habitSession)}
}

func (h *habitSessions) get(userID int64) *habitSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sessions[userID]
}

func (h *habitSessions) put(userID int64, session *habitSession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[userID] = session
}

func (h *habitSessions) remove(userID int64) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.sessions[userID]
	delete(h.sessions, userID)
	return ok
}

var (
	habitDaysPattern    = regexp.MustCompile("\fhabit_days:(\\d+)")
	habitLeavePattern   = regexp.MustCompile("\fhabit_leave:(\\d+)")
	habitWeekendPattern = regexp.MustCompile("\fhabit_weekend:([01])")
)

var durationOptions = []struct {
	days  int
	label string
}{
	{7, "1 week"},
	{21, "21 days"},
	{30, "30 days"},
	{0, "No end date"},
}

func (s *Service) StartHabitSetup(context tele.Context) error {
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
	s.sessions.put(user.ID, &habitSession{chatID: context.Chat().ID, state: collectTimes})
	return context.Send(templates.HabitIntro)
}

func (s *Service) CancelHabitSetup(context tele.Context) error {
	if s.sessions.remove(context.Sender().ID) {
		return context.Send(templates.HabitCancelled)
	}
	return context.Send(templates.HabitNoSetup)
}

// OnText only feeds the time-collection step; all other group chatter is
// ignored.
func (s *Service) OnText(context tele.Context) error {
	user := context.Sender()
	session := s.sessions.get(user.ID)
	if session == nil || session.state != collectTimes || session.chatID != context.Chat().ID {
		return nil
	}
	fields := strings.Fields(context.Text())
	if len(fields) != 2 {
		return context.Send(templates.HabitBadTimes)
	}
	sleep, err := schedule.ParseClock(fields[0])
	if err != nil {
		return context.Send(templates.HabitBadTimes)
	}
	wake, err := schedule.ParseClock(fields[1])
	if err != nil {
		return context.Send(templates.HabitBadTimes)
	}
	session.sleep = sleep
	session.wake = wake
	session.state = collectDuration

	selector := &tele.ReplyMarkup{}
	var buttons []tele.Btn
	for _, option := range durationOptions {
		dataID := fmt.Sprintf("habit_days:%v", option.days)
		buttons = append(buttons, selector.Data(option.label, dataID))
	}
	selector.Inline(selector.Row(buttons...))
	return context.Send(templates.HabitDuration, selector)
}

func (s *Service) ProcessCallback(context tele.Context) error {
	data := context.Callback().Data
	if submatch := habitDaysPattern.FindStringSubmatch(data); submatch != nil {
		return s.habitDuration(context, submatch[1])
	}
	if submatch := habitLeavePattern.FindStringSubmatch(data); submatch != nil {
		return s.habitLeaveDays(context, submatch[1])
	}
	if submatch := habitWeekendPattern.FindStringSubmatch(data); submatch != nil {
		return s.habitWeekend(context, submatch[1])
	}
	return errors.New("couldn't match callback data to a setup step")
}

func (s *Service) habitDuration(context tele.Context, raw string) error {
	session := s.sessions.get(context.Sender().ID)
	if session == nil || session.state != collectDuration {
		return nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	session.duration = days
	session.state = collectLeaveDays

	settings, err := s.db.GetGroupSettings(session.chatID)
	if err != nil {
		return errors.Wrap(err, "cannot get group settings")
	}
	selector := &tele.ReplyMarkup{}
	var buttons []tele.Btn
	for _, leave := range []int{0, 1, 3, 5} {
		if leave > settings.MaxLeaveDays {
			continue
		}
		dataID := fmt.Sprintf("habit_leave:%v", leave)
		buttons = append(buttons, selector.Data(fmt.Sprintf("%v days", leave), dataID))
	}
	selector.Inline(selector.Row(buttons...))
	return context.Edit(templates.HabitLeaveDays, selector)
}

func (s *Service) habitLeaveDays(context tele.Context, raw string) error {
	session := s.sessions.get(context.Sender().ID)
	if session == nil || session.state != collectLeaveDays {
		return nil
	}
	leave, err := strconv.Atoi(raw)
	if err != nil {
		return err
	}
	session.leaveDays = leave
	session.state = collectWeekendOption

	selector := &tele.ReplyMarkup{}
	yes := selector.Data("Yes", "habit_weekend:1")
	no := selector.Data("No", "habit_weekend:0")
	selector.Inline(selector.Row(yes, no))
	return context.Edit(templates.HabitWeekend, selector)
}

func (s *Service) habitWeekend(context tele.Context, raw string) error {
	user := context.Sender()
	session := s.sessions.get(user.ID)
	if session == nil || session.state != collectWeekendOption {
		return nil
	}
	exempt := raw == "1"

	endDate := ""
	durationText := "no end date"
	if session.duration > 0 {
		settings, err := s.db.GetGroupSettings(session.chatID)
		if err != nil {
			return errors.Wrap(err, "cannot get group settings")
		}
		localTime, err := s.resolver.Resolve(settings.Timezone)
		if err != nil {
			return errors.Wrapf(err, "cannot resolve local time for chat %v", session.chatID)
		}
		endDate = localTime.Now.AddDate(0, 0, session.duration).Format(schedule.DateLayout)
		durationText = fmt.Sprintf("%v days, until %v", session.duration, endDate)
	}

	err := s.db.UpsertSchedule(
		db.Schedule{
			UserID:         user.ID,
			ChatID:         session.chatID,
			DisplayName:    user.FirstName,
			SleepTime:      session.sleep.String(),
			WakeTime:       session.wake.String(),
			PlanType:       string(schedule.PlanHabit),
			TotalLeaveDays: session.leaveDays,
			ExemptWeekends: exempt,
			EndDate:        endDate,
		},
	)
	if err != nil {
		return errors.Wrap(err, "cannot save habit schedule")
	}
	s.sessions.remove(user.ID)
	return context.Edit(fmt.Sprintf(
		templates.HabitDone,
		session.sleep, session.wake,
		durationText, session.leaveDays, yesNo(exempt),
	))
}
