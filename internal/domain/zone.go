package domain

import (
	"errors"
	"time"
)

var (
	ErrZonaNotFound  = errors.New("zona not found")
	ErrInvalidNombre = errors.New("invalid nombre")
)

// ZoneConfig is per-zone metadata: display name, icon, ordering and
// whether the zone participates in status queries at all.
type ZoneConfig struct {
	NodeID     string
	Zona       int
	Nombre     string
	Habilitada bool
	Icono      string
	Orden      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DefaultIcono is assigned when a zone is created without an icon.
const DefaultIcono = "water_drop"

// ZoneStatus is the ephemeral runtime state a controller last reported
// for one zone. It lives only in the in-memory status cache.
type ZoneStatus struct {
	Activa            bool
	TiempoRestanteSeg int
	LastUpdate        time.Time
}
