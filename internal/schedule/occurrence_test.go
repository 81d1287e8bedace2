package schedule_test

import (
	"testing"
	"time"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/schedule"
)

func at(t *testing.T, year int, month time.Month, day, hour, minute int) time.Time {
	t.Helper()
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestNextOccurrence_TodayStillAhead(t *testing.T) {
	// Sunday 2025-12-28 11:48.
	now := at(t, 2025, time.December, 28, 11, 48)

	a := agenda("a", []domain.Weekday{domain.Domingo, domain.Sabado, domain.Martes, domain.Jueves}, "11:55", 10)
	b := agenda("b", []domain.Weekday{domain.Sabado, domain.Domingo}, "20:20", 15)

	occ, ok := schedule.NextOccurrence(now, []*domain.Agenda{a, b})
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if got := occ.Display(now); got != "Hoy 11:55 (10min)" {
		t.Fatalf("got %q, want %q", got, "Hoy 11:55 (10min)")
	}
}

func TestNextOccurrence_PastTimeRollsToNextDay(t *testing.T) {
	// Saturday 2025-12-27 10:00; the 00:01 slot already elapsed today.
	now := at(t, 2025, time.December, 27, 10, 0)

	a := agenda("a", []domain.Weekday{domain.Sabado, domain.Domingo}, "00:01", 5)

	occ, ok := schedule.NextOccurrence(now, []*domain.Agenda{a})
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if got := occ.Display(now); got != "Mañana 00:01 (5min)" {
		t.Fatalf("got %q, want %q", got, "Mañana 00:01 (5min)")
	}
}

func TestNextOccurrence_StartEqualToNowDoesNotCountAsToday(t *testing.T) {
	// Friday 2025-12-26 19:00 with a daily 19:00 agenda: today's slot is
	// not strictly ahead, so tomorrow wins.
	now := at(t, 2025, time.December, 26, 19, 0)

	all := []domain.Weekday{
		domain.Lunes, domain.Martes, domain.Miercoles, domain.Jueves,
		domain.Viernes, domain.Sabado, domain.Domingo,
	}
	a := agenda("a", all, "19:00", 10)

	occ, ok := schedule.NextOccurrence(now, []*domain.Agenda{a})
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if got := occ.Display(now); got != "Mañana 19:00 (10min)" {
		t.Fatalf("got %q, want %q", got, "Mañana 19:00 (10min)")
	}
}

func TestNextOccurrence_PicksNearestAcrossAgendas(t *testing.T) {
	// Friday 2025-12-26 10:00. Saturday 06:00 beats Saturday 18:00 and
	// Monday 08:00.
	now := at(t, 2025, time.December, 26, 10, 0)

	late := agenda("late", []domain.Weekday{domain.Sabado}, "18:00", 15)
	early := agenda("early", []domain.Weekday{domain.Sabado}, "06:00", 10)
	monday := agenda("monday", []domain.Weekday{domain.Lunes}, "08:00", 20)

	occ, ok := schedule.NextOccurrence(now, []*domain.Agenda{late, early, monday})
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if got := occ.Display(now); got != "Mañana 06:00 (10min)" {
		t.Fatalf("got %q, want %q", got, "Mañana 06:00 (10min)")
	}
}

func TestNextOccurrence_RemoteDayUsesNumericDate(t *testing.T) {
	// Sunday 2025-12-21 10:00; agenda only fires Thursdays.
	now := at(t, 2025, time.December, 21, 10, 0)

	a := agenda("a", []domain.Weekday{domain.Jueves}, "12:00", 30)

	occ, ok := schedule.NextOccurrence(now, []*domain.Agenda{a})
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if got := occ.Display(now); got != "25/12 12:00 (30min)" {
		t.Fatalf("got %q, want %q", got, "25/12 12:00 (30min)")
	}
}

func TestNextOccurrence_EmptySchedule(t *testing.T) {
	now := at(t, 2025, time.December, 28, 11, 48)

	if _, ok := schedule.NextOccurrence(now, nil); ok {
		t.Fatal("expected no occurrence for empty schedule")
	}
}

func TestNextOccurrence_IgnoresInactive(t *testing.T) {
	now := at(t, 2025, time.December, 28, 8, 0)

	a := agenda("a", []domain.Weekday{domain.Domingo}, "09:00", 10)
	a.Activa = false

	if _, ok := schedule.NextOccurrence(now, []*domain.Agenda{a}); ok {
		t.Fatal("expected no occurrence when the only agenda is inactive")
	}
}
