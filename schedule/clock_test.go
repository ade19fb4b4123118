package schedule

import (
	"github.com/pkg/errors"
	"sync"
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	valid := map[string]Clock{
		"00:00": 0,
		"09:05": 9*60 + 5,
		"23:59": 23*60 + 59,
	}
	for raw, want := range valid {
		got, err := ParseClock(raw)
		if err != nil {
			t.Fatalf("%v: unexpected error %v", raw, err)
		}
		if got != want {
			t.Fatalf("%v: want %v, got %v", raw, want, got)
		}
		if got.String() != raw {
			t.Fatalf("%v: String() round trip gave %v", raw, got.String())
		}
	}

	for _, raw := range []string{"", "24:00", "12:60", "7:00", "12-30", "noon", "12:30:00"} {
		if _, err := ParseClock(raw); !errors.Is(err, ErrBadClock) {
			t.Fatalf("%v: want ErrBadClock, got %v", raw, err)
		}
	}
}

func TestClockBack(t *testing.T) {
	cases := []struct {
		clock   string
		minutes int
		want    string
	}{
		{"23:00", 15, "22:45"},
		{"00:10", 15, "23:55"},
		{"00:00", 1, "23:59"},
		{"12:00", 0, "12:00"},
	}
	for _, c := range cases {
		got := mustClock(t, c.clock).Back(c.minutes)
		if got.String() != c.want {
			t.Fatalf("%v back %v: want %v, got %v", c.clock, c.minutes, c.want, got)
		}
	}
}

func TestResolver(t *testing.T) {
	r := NewResolver()
	r.now = func() time.Time {
		// 2025-05-09 23:30 UTC is already Saturday morning in Shanghai.
		return time.Date(2025, time.May, 9, 23, 30, 0, 0, time.UTC)
	}

	localTime, err := r.Resolve("Asia/Shanghai")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if localTime.Date != "2025-05-10" {
		t.Fatalf("want local date 2025-05-10, got %v", localTime.Date)
	}
	if localTime.Clock.String() != "07:30" {
		t.Fatalf("want local clock 07:30, got %v", localTime.Clock)
	}
	if !localTime.Weekend {
		t.Fatal("2025-05-10 in Shanghai is a Saturday")
	}

	if _, err := r.Resolve("Atlantis/Sunken"); err == nil {
		t.Fatal("want an error for an unknown zone")
	}
}

// One resolver serves the enforcer loop and the command handlers at the
// same time; run under -race this catches unsynchronized cache access.
func TestResolverConcurrentResolve(t *testing.T) {
	r := NewResolver()
	zones := []string{
		"UTC", "Asia/Shanghai", "Europe/Moscow",
		"America/New_York", "Asia/Tokyo", "Europe/Berlin",
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				zone := zones[j%len(zones)]
				if _, err := r.Resolve(zone); err != nil {
					t.Errorf("resolve %v: %v", zone, err)
				}
			}
		}()
	}
	wg.Wait()
}
