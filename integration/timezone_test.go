package integration

import (
	"context"
	"testing"
	"time"
	_ "time/tzdata"

	td "github.com/maxatome/go-testdeep"

	"github.com/javiermolinar/huddle/internal/grid"
	"github.com/javiermolinar/huddle/internal/poll"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("LoadLocation(%q) failed: %v", name, err)
	}
	return loc
}

// Madrid moves from +01:00 to +02:00 at 02:00 on 2024-03-31.
func TestDaylightSavingWindow(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	madrid := mustLoad(t, "Europe/Madrid")

	day := func(d, hour, minute int) time.Time {
		return time.Date(2024, 3, 30+d, hour, minute, 0, 0, madrid)
	}

	p := createPoll(t, repo, day(0, 0, 0), day(2, 0, 0), "08:00", "12:00")
	got, err := repo.GetPoll(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPoll failed: %v", err)
	}
	td.CmpDeeply(t, got.TimeZone, "Europe/Madrid")

	g := setAvailability(t, repo, p, "ana")
	c := editor(t, repo, p, g)
	for d := 0; d < 3; d++ {
		drag(t, c, day(d, 9, 0), day(d, 10, 45))
	}
	save(t, repo, p, g, c)

	intervals, err := repo.ListAvailability(ctx, p.ID)
	if err != nil {
		t.Fatalf("failed to list availability: %v", err)
	}
	if len(intervals) != 3 {
		t.Fatalf("expected 3 intervals, got %v", intervals)
	}

	wantUTC := []int{8, 7, 7} // 09:00 local before and after the change
	for i, iv := range intervals {
		if iv.From.Location().String() != "Europe/Madrid" {
			t.Errorf("interval %d in %v, want Europe/Madrid", i, iv.From.Location())
		}
		if h := iv.From.Hour(); h != 9 {
			t.Errorf("interval %d starts at local hour %d, want 9", i, h)
		}
		if h := iv.From.UTC().Hour(); h != wantUTC[i] {
			t.Errorf("interval %d starts at %02d:00 UTC, want %02d:00", i, h, wantUTC[i])
		}
		if iv.Duration() != 2*time.Hour {
			t.Errorf("interval %d lasts %v, want 2h", i, iv.Duration())
		}
	}
}

// The spring-forward gap is an hour of wall clock that never happens. A
// range across it keeps its wall-clock columns.
func TestDaylightSavingGap(t *testing.T) {
	repo := openRepo(t)
	madrid := mustLoad(t, "Europe/Madrid")

	date := time.Date(2024, 3, 31, 0, 0, 0, 0, madrid)
	p := createPoll(t, repo, date, date, "00:00", "24:00")
	g := setAvailability(t, repo, p, "ana")
	c := editor(t, repo, p, g)

	slots := drag(t, c, time.Date(2024, 3, 31, 1, 0, 0, 0, madrid), time.Date(2024, 3, 31, 3, 45, 0, 0, madrid))
	if len(slots) != 1 {
		t.Fatalf("expected one slot, got %v", slots)
	}
	s := slots[0]
	if s.From.Hour() != 1 || s.To.Hour() != 4 {
		t.Errorf("slot %v, want 01:00-04:00 local", s)
	}
	if s.Duration() != 2*time.Hour {
		t.Errorf("slot lasts %v, want 2h of real time", s.Duration())
	}
}

// Availability entered in another zone lands on the poll's wall clock.
func TestCrossZoneAggregate(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()
	madrid := mustLoad(t, "Europe/Madrid")
	newYork := mustLoad(t, "America/New_York")

	p := createPoll(t, repo, at(madrid, 14, 0, 0), at(madrid, 16, 0, 0), "09:00", "17:00")
	// 03:00-05:00 in New York is 09:00-11:00 in Madrid in January.
	setAvailability(t, repo, p, "bo", at(newYork, 14, 3, 0), at(newYork, 14, 5, 0))
	setAvailability(t, repo, p, "ana", at(madrid, 14, 10, 0), at(madrid, 14, 12, 0))

	intervals, err := repo.ListAvailability(ctx, p.ID)
	if err != nil {
		t.Fatalf("failed to list availability: %v", err)
	}
	agg, err := poll.BuildAggregate(p, intervals, "")
	if err != nil {
		t.Fatalf("failed to aggregate: %v", err)
	}

	td.CmpDeeply(t, p.ClipSlots(agg.ExtractSlots()), []grid.Slot{
		{From: at(madrid, 14, 9, 0), To: at(madrid, 14, 10, 0), Weight: 1, Contributors: []string{"bo"}},
		{From: at(madrid, 14, 10, 0), To: at(madrid, 14, 11, 0), Weight: 2, Contributors: []string{"bo", "ana"}},
		{From: at(madrid, 14, 11, 0), To: at(madrid, 14, 12, 0), Weight: 1, Contributors: []string{"ana"}},
	})
}
