package db

// Schedule is one user's sleep plan. A user has at most one schedule,
// owned by exactly one chat. Date columns hold "2006-01-02" strings in
// the owning group's local zone, empty when unset.
type Schedule struct {
	UserID           int64 `bun:"user_id,pk"`
	ChatID           int64
	DisplayName      string
	SleepTime        string
	WakeTime         string
	PlanType         string
	LeaveUntil       string
	TotalLeaveDays   int
	UsedLeaveDays    int
	ExemptWeekends   bool
	EndDate          string
	ReminderSentDate string
}

type GroupSettings struct {
	ChatID             int64 `bun:"chat_id,pk"`
	Timezone           string
	MaxLeaveDays       int
	AdminCanBreakHabit bool
}
