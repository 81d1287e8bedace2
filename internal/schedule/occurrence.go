package schedule

import (
	"fmt"
	"time"

	"github.com/riegolab/riego/internal/domain"
)

const minutesPerDay = 24 * 60

// lookaheadDays is the search window: today plus the next seven days.
const lookaheadDays = 7

// Occurrence is the nearest concrete future run of any agenda in a zone.
type Occurrence struct {
	Date        time.Time // midnight of the day the run starts, in now's location
	Hora        domain.TimeOfDay
	DuracionMin int
}

// NextOccurrence finds the earliest future start among the given active
// agendas, relative to now. Each agenda contributes at most one candidate:
// the first day in the window whose weekday it matches, with today only
// qualifying when the start time is still strictly ahead of now. The
// winner is the candidate with the fewest minutes until start. Returns
// false when no agenda has a future run inside the window.
func NextOccurrence(now time.Time, agendas []*domain.Agenda) (Occurrence, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	nowMinutes := now.Hour()*60 + now.Minute()

	var best Occurrence
	bestWait := -1

	for _, a := range agendas {
		if !a.Activa {
			continue
		}
		for offset := 0; offset <= lookaheadDays; offset++ {
			date := today.AddDate(0, 0, offset)
			if !a.HasDia(domain.WeekdayFromTime(date.Weekday())) {
				continue
			}
			if offset == 0 && a.HoraInicio.Minutes() <= nowMinutes {
				// Today's slot already started; keep scanning later days.
				continue
			}

			wait := offset*minutesPerDay + a.HoraInicio.Minutes() - nowMinutes
			if bestWait < 0 || wait < bestWait {
				bestWait = wait
				best = Occurrence{Date: date, Hora: a.HoraInicio, DuracionMin: a.DuracionMin}
			}
			break // first matching day is this agenda's only candidate
		}
	}

	if bestWait < 0 {
		return Occurrence{}, false
	}
	return best, true
}

// Display renders the occurrence for the status view, e.g.
// "Hoy 11:55 (10min)", "Mañana 06:00 (10min)" or "03/01 19:00 (15min)".
func (o Occurrence) Display(now time.Time) string {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var cuando string
	switch {
	case o.Date.Equal(today):
		cuando = "Hoy"
	case o.Date.Equal(today.AddDate(0, 0, 1)):
		cuando = "Mañana"
	default:
		cuando = o.Date.Format("02/01")
	}

	return fmt.Sprintf("%s %s (%dmin)", cuando, o.Hora, o.DuracionMin)
}
