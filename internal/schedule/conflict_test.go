package schedule_test

import (
	"errors"
	"testing"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/schedule"
)

func agenda(id string, dias []domain.Weekday, hora string, duracionMin int) *domain.Agenda {
	t, err := domain.ParseTimeOfDay(hora)
	if err != nil {
		panic(err)
	}
	return &domain.Agenda{
		ID:          id,
		NodeID:      "node-1",
		Zona:        3,
		DiasSemana:  dias,
		HoraInicio:  t,
		DuracionMin: duracionMin,
		Activa:      true,
	}
}

func TestValidateNoOverlap_RejectsOverlappingInterval(t *testing.T) {
	existing := []*domain.Agenda{
		agenda("a1", []domain.Weekday{domain.Lunes, domain.Miercoles}, "08:00", 30),
	}
	candidate := agenda("a2", []domain.Weekday{domain.Miercoles}, "08:15", 30)

	err := schedule.ValidateNoOverlap(candidate, existing)
	if !errors.Is(err, domain.ErrAgendaOverlap) {
		t.Fatalf("expected ErrAgendaOverlap, got %v", err)
	}
}

func TestValidateNoOverlap_AllowsDisjointDays(t *testing.T) {
	existing := []*domain.Agenda{
		agenda("a1", []domain.Weekday{domain.Lunes}, "08:00", 30),
	}
	candidate := agenda("a2", []domain.Weekday{domain.Martes}, "08:00", 30)

	if err := schedule.ValidateNoOverlap(candidate, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateNoOverlap_AllowsAdjacentIntervals(t *testing.T) {
	// Half-open intervals: [08:00, 08:30) and [08:30, 09:00) do not overlap.
	existing := []*domain.Agenda{
		agenda("a1", []domain.Weekday{domain.Viernes}, "08:00", 30),
	}
	candidate := agenda("a2", []domain.Weekday{domain.Viernes}, "08:30", 30)

	if err := schedule.ValidateNoOverlap(candidate, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateNoOverlap_SkipsOwnPriorVersion(t *testing.T) {
	existing := []*domain.Agenda{
		agenda("a1", []domain.Weekday{domain.Sabado}, "10:00", 60),
	}
	// Same id: updating the agenda onto its own slot must pass.
	candidate := agenda("a1", []domain.Weekday{domain.Sabado}, "10:30", 60)

	if err := schedule.ValidateNoOverlap(candidate, existing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateNoOverlap_IgnoresInactiveAgendas(t *testing.T) {
	inactive := agenda("a1", []domain.Weekday{domain.Domingo}, "07:00", 45)
	inactive.Activa = false

	candidate := agenda("a2", []domain.Weekday{domain.Domingo}, "07:00", 45)

	if err := schedule.ValidateNoOverlap(candidate, []*domain.Agenda{inactive}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateNoOverlap_ContainedInterval(t *testing.T) {
	existing := []*domain.Agenda{
		agenda("a1", []domain.Weekday{domain.Jueves}, "06:00", 120),
	}
	candidate := agenda("a2", []domain.Weekday{domain.Jueves, domain.Lunes}, "06:30", 15)

	err := schedule.ValidateNoOverlap(candidate, existing)
	if !errors.Is(err, domain.ErrAgendaOverlap) {
		t.Fatalf("expected ErrAgendaOverlap, got %v", err)
	}
}
