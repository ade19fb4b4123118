package templates

import _ "embed"

var (
	//go:embed resource/hello.txt
	Hello string
	//go:embed resource/help.txt
	Help string
	//go:embed resource/unexpectedError.txt
	UnexpectedError string
	//go:embed resource/groupOnly.txt
	GroupOnly string
	//go:embed resource/ownerOnly.txt
	OwnerOnly string
	//go:embed resource/initUsage.txt
	InitUsage string
	//go:embed resource/badTimezone.txt
	BadTimezone string
	//go:embed resource/timezoneSuccess.txt
	TimezoneSuccess string
	//go:embed resource/settings.txt
	Settings string
	//go:embed resource/setUsage.txt
	SetUsage string
	//go:embed resource/badClock.txt
	BadClock string
	//go:embed resource/setSuccess.txt
	SetSuccess string
	//go:embed resource/ownerUnmutable.txt
	OwnerUnmutable string
	//go:embed resource/habitLocked.txt
	HabitLocked string
	//go:embed resource/noPlan.txt
	NoPlan string
	//go:embed resource/planNormal.txt
	PlanNormal string
	//go:embed resource/planHabit.txt
	PlanHabit string
	//go:embed resource/removeSuccess.txt
	RemoveSuccess string
	//go:embed resource/removeNothing.txt
	RemoveNothing string
	//go:embed resource/leaveNormal.txt
	LeaveNormal string
	//go:embed resource/leaveHabit.txt
	LeaveHabit string
	//go:embed resource/leaveNoDaysLeft.txt
	LeaveNoDaysLeft string
	//go:embed resource/habitIntro.txt
	HabitIntro string
	//go:embed resource/habitBadTimes.txt
	HabitBadTimes string
	//go:embed resource/habitDuration.txt
	HabitDuration string
	//go:embed resource/habitLeaveDays.txt
	HabitLeaveDays string
	//go:embed resource/habitWeekend.txt
	HabitWeekend string
	//go:embed resource/habitDone.txt
	HabitDone string
	//go:embed resource/habitCancelled.txt
	HabitCancelled string
	//go:embed resource/habitNoSetup.txt
	HabitNoSetup string
	//go:embed resource/habitComplete.txt
	HabitComplete string
	//go:embed resource/reminder.txt
	Reminder string
	//go:embed resource/goodNight.txt
	GoodNight string
	//go:embed resource/muteTooShort.txt
	MuteTooShort string
	//go:embed resource/breakDisabled.txt
	BreakDisabled string
	//go:embed resource/breakUsage.txt
	BreakUsage string
	//go:embed resource/breakNoHabit.txt
	BreakNoHabit string
	//go:embed resource/breakSuccess.txt
	BreakSuccess string
	//go:embed resource/adminOnly.txt
	AdminOnly string
	//go:embed resource/allowBreakUsage.txt
	AllowBreakUsage string
	//go:embed resource/allowBreakSuccess.txt
	AllowBreakSuccess string
)
