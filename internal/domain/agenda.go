package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAgendaNotFound   = errors.New("agenda not found")
	ErrAgendaOverlap    = errors.New("agenda overlaps an existing agenda")
	ErrInvalidHora      = errors.New("invalid start time, expected HH:MM")
	ErrInvalidDiaSemana = errors.New("invalid day of week")
	ErrZonaOutOfRange   = errors.New("zona must be between 1 and 8")
	ErrInvalidDuracion  = errors.New("duracion must be between 1 and 180 minutes")
)

const (
	// MinZona and MaxZona bound the zone index addressable by the controller hardware.
	MinZona = 1
	MaxZona = 8

	// MaxDuracionMin caps a single watering run.
	MaxDuracionMin = 180
)

// Weekday is a day tag as the controllers understand it.
type Weekday string

const (
	Lunes     Weekday = "LUN"
	Martes    Weekday = "MAR"
	Miercoles Weekday = "MIE"
	Jueves    Weekday = "JUE"
	Viernes   Weekday = "VIE"
	Sabado    Weekday = "SAB"
	Domingo   Weekday = "DOM"
)

var weekdayByTime = map[time.Weekday]Weekday{
	time.Monday:    Lunes,
	time.Tuesday:   Martes,
	time.Wednesday: Miercoles,
	time.Thursday:  Jueves,
	time.Friday:    Viernes,
	time.Saturday:  Sabado,
	time.Sunday:    Domingo,
}

// WeekdayFromTime maps a time.Weekday onto its wire tag.
func WeekdayFromTime(d time.Weekday) Weekday {
	return weekdayByTime[d]
}

// ParseWeekday validates a wire tag.
func ParseWeekday(s string) (Weekday, error) {
	switch Weekday(s) {
	case Lunes, Martes, Miercoles, Jueves, Viernes, Sabado, Domingo:
		return Weekday(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDiaSemana, s)
}

// TimeOfDay is a wall-clock time with minute resolution, zone-local.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM", zero-padded.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	// time.Parse accepts "7:30" for layout "15:04"; the wire format is
	// strictly two-digit.
	if len(s) != 5 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidHora, s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidHora, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes elapsed since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Agenda is a recurring watering rule for one zone of a node.
// The id is caller-supplied and stable across updates (upsert key).
type Agenda struct {
	ID          string
	NodeID      string
	Nombre      string
	Zona        int
	DiasSemana  []Weekday
	HoraInicio  TimeOfDay
	DuracionMin int
	Activa      bool

	// Version is the node's schedule version at the time of the last write.
	Version   int
	UpdatedAt time.Time
}

// HasDia reports whether the agenda fires on the given weekday.
func (a *Agenda) HasDia(d Weekday) bool {
	for _, day := range a.DiasSemana {
		if day == d {
			return true
		}
	}
	return false
}
