// Package schedule holds the scheduling core: conflict validation between
// agendas, next-occurrence computation and the in-memory zone status cache.
package schedule

import (
	"fmt"

	"github.com/riegolab/riego/internal/domain"
)

// ValidateNoOverlap checks a candidate agenda against the other active
// agendas of the same node/zone. Two agendas conflict when their day sets
// intersect and their half-open clock intervals [start, start+duration)
// overlap. The candidate is never compared against its own prior version.
//
// Intervals use plain clock-of-day arithmetic: an agenda starting late
// enough that start+duration passes midnight is not normalized. Duration
// is capped at 180 minutes so the window for that is small, and the
// firmware shares the same arithmetic.
func ValidateNoOverlap(candidate *domain.Agenda, existing []*domain.Agenda) error {
	start := candidate.HoraInicio.Minutes()
	end := start + candidate.DuracionMin

	for _, a := range existing {
		if a.ID == candidate.ID {
			continue
		}
		if !a.Activa {
			continue
		}
		aStart := a.HoraInicio.Minutes()
		aEnd := aStart + a.DuracionMin

		if daysIntersect(candidate.DiasSemana, a.DiasSemana) && start < aEnd && end > aStart {
			return fmt.Errorf("%w: zona %d", domain.ErrAgendaOverlap, candidate.Zona)
		}
	}
	return nil
}

func daysIntersect(a, b []domain.Weekday) bool {
	for _, da := range a {
		for _, db := range b {
			if da == db {
				return true
			}
		}
	}
	return false
}
