// Package mqtt carries the broker-facing side of the backend: the gateway
// that broadcasts schedule snapshots and ad-hoc commands, and the
// subscriber that feeds controller reports back into the core.
//
// Topic layout shared with the firmware:
//
//	riego/{nodeId}/agenda/sync        backend -> node, full schedule snapshot
//	riego/{nodeId}/cmd/zona/{zona}    backend -> node, ad-hoc ON/OFF command
//	riego/{nodeId}/status/zona/{zona} node -> backend, zone runtime status
//	riego/{nodeId}/evento             node -> backend, watering run lifecycle
package mqtt

import (
	"fmt"
	"time"
)

const (
	StatusTopicFilter = "riego/+/status/zona/+"
	EventTopicFilter  = "riego/+/evento"
)

func SyncTopic(nodeID string) string {
	return fmt.Sprintf("riego/%s/agenda/sync", nodeID)
}

func CommandTopic(nodeID string, zona int) string {
	return fmt.Sprintf("riego/%s/cmd/zona/%d", nodeID, zona)
}

// SyncPayload is the authoritative snapshot a controller replaces its
// local schedule with. Field names are fixed by the firmware parser.
type SyncPayload struct {
	Version   int          `json:"version"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Agendas   []SyncAgenda `json:"agendas"`
}

type SyncAgenda struct {
	ID          string   `json:"id"`
	Zona        int      `json:"zona"`
	DiasSemana  []string `json:"diasSemana"`
	HoraInicio  string   `json:"horaInicio"`
	DuracionMin int      `json:"duracionMin"`
	Activa      bool     `json:"activa"`
}

// CommandPayload is an immediate ON/OFF action. Duracion is omitted
// entirely (not null) for OFF.
type CommandPayload struct {
	Accion   string `json:"accion"`
	Duracion *int   `json:"duracion,omitempty"`
}

// StatusReport is what a controller publishes per zone; tiempoRestante
// defaults to 0 when absent.
type StatusReport struct {
	Activa         bool `json:"activa"`
	TiempoRestante *int `json:"tiempoRestante"`
}
