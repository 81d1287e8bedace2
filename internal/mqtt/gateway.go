package mqtt

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/metrics"
)

// Publisher is the raw byte-level publish primitive. Implemented by
// ClientPublisher for a live broker; fakes implement it in tests.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Gateway builds and publishes the outbound messages: full-schedule sync
// snapshots and ad-hoc zone commands. Delivery is fire-and-forget beyond
// the broker ack; the durable store stays the source of truth.
type Gateway struct {
	pub    Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewGateway wraps a Publisher. A nil Publisher yields a disabled gateway
// whose publish methods return domain.ErrMQTTDisabled.
func NewGateway(pub Publisher, logger *slog.Logger) *Gateway {
	return &Gateway{
		pub:    pub,
		logger: logger.With("component", "mqtt_gateway"),
		now:    time.Now,
	}
}

func (g *Gateway) Enabled() bool {
	return g.pub != nil
}

// PublishSync broadcasts the node's schedule snapshot at its sync topic.
func (g *Gateway) PublishSync(nodeID string, version int, agendas []*domain.Agenda) error {
	if g.pub == nil {
		return domain.ErrMQTTDisabled
	}

	payload := SyncPayload{
		Version:   version,
		UpdatedAt: g.now().UTC(),
		Agendas:   make([]SyncAgenda, 0, len(agendas)),
	}
	for _, a := range agendas {
		payload.Agendas = append(payload.Agendas, SyncAgenda{
			ID:          a.ID,
			Zona:        a.Zona,
			DiasSemana:  diasToStrings(a.DiasSemana),
			HoraInicio:  a.HoraInicio.String(),
			DuracionMin: a.DuracionMin,
			Activa:      a.Activa,
		})
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sync payload: %w", err)
	}

	if err := g.pub.Publish(SyncTopic(nodeID), b); err != nil {
		metrics.SyncPublishesTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("publish sync: %w", err)
	}
	metrics.SyncPublishesTotal.WithLabelValues("ok").Inc()

	g.logger.Info("sync published", "node_id", nodeID, "version", version, "agendas", len(payload.Agendas))
	return nil
}

// PublishCommand sends an immediate ON/OFF action to one zone. duracionSeg
// must be nil for OFF so the field is absent from the wire payload.
func (g *Gateway) PublishCommand(nodeID string, zona int, accion string, duracionSeg *int) error {
	if g.pub == nil {
		return domain.ErrMQTTDisabled
	}

	b, err := json.Marshal(CommandPayload{Accion: accion, Duracion: duracionSeg})
	if err != nil {
		return fmt.Errorf("marshal command payload: %w", err)
	}

	if err := g.pub.Publish(CommandTopic(nodeID, zona), b); err != nil {
		metrics.CommandsTotal.WithLabelValues(accion, "error").Inc()
		return fmt.Errorf("publish command: %w", err)
	}
	metrics.CommandsTotal.WithLabelValues(accion, "ok").Inc()

	g.logger.Info("command published", "node_id", nodeID, "zona", zona, "accion", accion)
	return nil
}

func diasToStrings(dias []domain.Weekday) []string {
	out := make([]string, len(dias))
	for i, d := range dias {
		out[i] = string(d)
	}
	return out
}
