package domain

import "time"

// Event origins as reported by the firmware.
const (
	OrigenAgenda = "agenda"
	OrigenManual = "manual"
)

// WateringEvent records one completed watering run reported by a controller.
// Only "fin" reports are persisted; "inicio" reports are transient.
type WateringEvent struct {
	ID            string
	NodeID        string
	Zona          int
	Timestamp     time.Time
	DuracionSeg   int
	Origen        string
	VersionAgenda *int
	Raw           string
}
