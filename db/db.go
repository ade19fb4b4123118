package db

import (
	"context"
	"database/sql"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"sleep-schedule-bot/schedule"
	"time"
)

var (
	ErrNotFound = errors.New("entity not found")
)

type DB struct {
	db      *bun.DB
	timeout time.Duration
}

const (
	defaultTimeout  = time.Minute
	defaultTimezone = "UTC"
	defaultMaxLeave = 3
)

func New(address, user, password, database string) *DB {
	connector := pgdriver.NewConnector(
		pgdriver.WithInsecure(true),
		pgdriver.WithAddr(address),
		pgdriver.WithUser(user),
		pgdriver.WithPassword(password),
		pgdriver.WithDatabase(database),
	)
	sqldb := sql.OpenDB(connector)
	db := bun.NewDB(sqldb, pgdialect.New())
	return &DB{db: db, timeout: defaultTimeout}
}

func (d *DB) SetTimeout(duration time.Duration) {
	d.timeout = duration
}

func (d *DB) EnableDebug() {
	d.db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
}

func (d *DB) GetSchedule(userID int64) (Schedule, error) {
	s := Schedule{UserID: userID}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	err := d.db.NewSelect().Model(&s).WherePK().Scan(ctx)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return Schedule{}, ErrNotFound
	}
	if err != nil {
		return Schedule{}, errors.Wrap(err, "error during querying schedule")
	}
	return s, nil
}

func (d *DB) GetAllSchedules() ([]Schedule, error) {
	var schedules []Schedule
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	err := d.db.NewSelect().Model(&schedules).Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error during listing schedules")
	}
	return schedules, nil
}

// UpsertSchedule replaces the user's schedule with the given one. A new
// plan always starts with a clean leave/reminder state, so the full row
// is written either way.
func (d *DB) UpsertSchedule(s Schedule) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	exists, err := d.db.NewSelect().Model(&s).WherePK().Exists(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot check if schedule exists")
	}
	ctx, cancel = context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if exists {
		_, err = d.db.NewUpdate().Model(&s).WherePK().Exec(ctx)
	} else {
		_, err = d.db.NewInsert().Model(&s).Exec(ctx)
	}
	if err != nil {
		return errors.Wrap(err, "error during saving schedule")
	}
	return nil
}

func (d *DB) RemoveSchedule(userID int64) (bool, error) {
	s := Schedule{UserID: userID}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	result, err := d.db.NewDelete().Model(&s).WherePK().Exec(ctx)
	if err != nil {
		return false, errors.Wrap(err, "error during removing schedule")
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SetPlanNormal converts a habit plan back to a normal one, clearing
// every habit-only field.
func (d *DB) SetPlanNormal(userID int64) error {
	s := Schedule{UserID: userID}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	_, err := d.db.NewUpdate().
		Model(&s).
		Set("plan_type = ?", string(schedule.PlanNormal)).
		Set("total_leave_days = 0").
		Set("used_leave_days = 0").
		Set("exempt_weekends = FALSE").
		Set("end_date = ''").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "error during converting plan to normal")
	}
	return nil
}

func (d *DB) MarkReminderSent(userID int64, date string) error {
	s := Schedule{UserID: userID}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	_, err := d.db.NewUpdate().
		Model(&s).
		Set("reminder_sent_date = ?", date).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, "error during marking reminder sent")
	}
	return nil
}

// ApplyLeaveDay grants the user a one-day exemption for the given local
// date, consuming leave budget for habit plans.
func (d *DB) ApplyLeaveDay(userID int64, date string) (schedule.LeaveResult, error) {
	s, err := d.GetSchedule(userID)
	if err != nil && errors.Is(err, ErrNotFound) {
		return schedule.LeaveResult{Status: schedule.LeaveNoPlan}, nil
	}
	if err != nil {
		return schedule.LeaveResult{}, err
	}
	result := schedule.ApplyLeave(schedule.PlanType(s.PlanType), s.UsedLeaveDays, s.TotalLeaveDays)
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	switch result.Status {
	case schedule.LeaveAppliedNormal:
		_, err = d.db.NewUpdate().
			Model(&s).
			Set("leave_until = ?", date).
			WherePK().
			Exec(ctx)
	case schedule.LeaveAppliedHabit:
		_, err = d.db.NewUpdate().
			Model(&s).
			Set("leave_until = ?", date).
			Set("used_leave_days = used_leave_days + 1").
			WherePK().
			Exec(ctx)
	}
	if err != nil {
		return schedule.LeaveResult{}, errors.Wrap(err, "error during applying leave day")
	}
	return result, nil
}

// GetGroupSettings returns the settings row for a chat, creating it with
// defaults on first access.
func (d *DB) GetGroupSettings(chatID int64) (GroupSettings, error) {
	g := GroupSettings{ChatID: chatID}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	err := d.db.NewSelect().Model(&g).WherePK().Scan(ctx)
	if err == nil {
		return g, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return GroupSettings{}, errors.Wrap(err, "error during querying group settings")
	}
	g = GroupSettings{
		ChatID:       chatID,
		Timezone:     defaultTimezone,
		MaxLeaveDays: defaultMaxLeave,
	}
	ctx, cancel = context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	_, err = d.db.NewInsert().Model(&g).Exec(ctx)
	if err != nil {
		return GroupSettings{}, errors.Wrap(err, "error during creating group settings")
	}
	return g, nil
}

func (d *DB) SetGroupTimezone(chatID int64, zone string) error {
	if _, err := d.GetGroupSettings(chatID); err != nil {
		return err
	}
	g := GroupSettings{
		ChatID:   chatID,
		Timezone: zone,
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	_, err := d.db.NewUpdate().Model(&g).Set("timezone = ?timezone").WherePK().Exec(ctx)
	return err
}

func (d *DB) SetAdminCanBreakHabit(chatID int64, allowed bool) error {
	if _, err := d.GetGroupSettings(chatID); err != nil {
		return err
	}
	g := GroupSettings{
		ChatID:             chatID,
		AdminCanBreakHabit: allowed,
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	_, err := d.db.NewUpdate().Model(&g).Set("admin_can_break_habit = ?admin_can_break_habit").WherePK().Exec(ctx)
	return err
}
