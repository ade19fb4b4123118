package schedule

import (
	"fmt"
	"github.com/pkg/errors"
	"regexp"
	"strconv"
	"sync"
	"time"
)

var (
	ErrBadClock = errors.New("expected time in 24-hour HH:MM format")

	clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
)

const DateLayout = "2006-01-02"

// Clock is a wall-clock time of day, stored as minutes since midnight.
type Clock int

func ParseClock(s string) (Clock, error) {
	submatch := clockPattern.FindStringSubmatch(s)
	if submatch == nil {
		return 0, errors.Wrapf(ErrBadClock, "got %q", s)
	}
	h, _ := strconv.Atoi(submatch[1])
	m, _ := strconv.Atoi(submatch[2])
	return Clock(h*60 + m), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Back returns the clock the given number of minutes earlier, wrapping
// past midnight.
func (c Clock) Back(minutes int) Clock {
	v := (int(c) - minutes) % (24 * 60)
	if v < 0 {
		v += 24 * 60
	}
	return Clock(v)
}

// LocalTime is "now" as seen from one group's configured timezone.
type LocalTime struct {
	Now     time.Time
	Date    string
	Clock   Clock
	Weekend bool
}

// locationCache memoizes time.LoadLocation results. The enforcer loop
// and the command handlers share one cache, so access is locked.
type locationCache struct {
	mu        sync.Mutex
	locations map[string]*time.Location
}

func (lc *locationCache) get(zone string) (*time.Location, error) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	if l, ok := lc.locations[zone]; ok {
		return l, nil
	}
	location, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}
	lc.locations[zone] = location
	return location, nil
}

// Resolver turns a zone name into the group-local view of the current
// moment. Loaded locations are memoized for the lifetime of the process.
type Resolver struct {
	cache *locationCache
	now   func() time.Time
}

func NewResolver() *Resolver {
	return &Resolver{
		cache: &locationCache{locations: make(map[string]*time.Location)},
		now:   time.Now,
	}
}

func (r *Resolver) Resolve(zone string) (LocalTime, error) {
	location, err := r.cache.get(zone)
	if err != nil {
		return LocalTime{}, errors.Wrapf(err, "unknown timezone %v", zone)
	}
	now := r.now().In(location)
	weekday := now.Weekday()
	return LocalTime{
		Now:     now,
		Date:    now.Format(DateLayout),
		Clock:   Clock(now.Hour()*60 + now.Minute()),
		Weekend: weekday == time.Saturday || weekday == time.Sunday,
	}, nil
}
