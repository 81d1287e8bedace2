package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/metrics"
	"github.com/riegolab/riego/internal/repository"
)

const defaultHistoryLimit = 50
const maxHistoryLimit = 500

// eventPayload mirrors what the firmware publishes at the evento topic.
type eventPayload struct {
	Zona          int    `json:"zona"`
	Evento        string `json:"evento"`
	Timestamp     int64  `json:"timestamp"`
	Origen        string `json:"origen"`
	DuracionReal  int    `json:"duracionReal"`
	VersionAgenda *int   `json:"versionAgenda"`
}

// EventUsecase persists completed watering runs and serves the history
// queries. Only "fin" events are stored; "inicio" and anything unknown
// are logged and dropped.
type EventUsecase struct {
	repo   repository.EventRepository
	logger *slog.Logger
}

func NewEventUsecase(repo repository.EventRepository, logger *slog.Logger) *EventUsecase {
	return &EventUsecase{
		repo:   repo,
		logger: logger.With("component", "event_usecase"),
	}
}

// RecordEvent ingests one raw evento payload. Implements the subscriber's
// EventSink. Malformed payloads are dropped without error so a bad
// controller cannot poison the ingest path.
func (u *EventUsecase) RecordEvent(ctx context.Context, nodeID string, payload []byte) error {
	var p eventPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		u.logger.Warn("dropping malformed event", "node_id", nodeID, "error", err)
		return nil
	}

	if p.Evento != "fin" {
		u.logger.Debug("ignoring non-terminal event", "node_id", nodeID, "evento", p.Evento, "zona", p.Zona)
		return nil
	}
	if p.Zona < domain.MinZona || p.Zona > domain.MaxZona {
		u.logger.Warn("dropping event for out-of-range zona", "node_id", nodeID, "zona", p.Zona)
		return nil
	}

	origen := p.Origen
	if origen != domain.OrigenAgenda && origen != domain.OrigenManual {
		origen = domain.OrigenManual
	}

	_, err := u.repo.Create(ctx, &domain.WateringEvent{
		NodeID:        nodeID,
		Zona:          p.Zona,
		Timestamp:     time.Unix(p.Timestamp, 0),
		DuracionSeg:   p.DuracionReal,
		Origen:        origen,
		VersionAgenda: p.VersionAgenda,
		Raw:           string(payload),
	})
	if err != nil {
		return fmt.Errorf("persist event: %w", err)
	}
	metrics.EventsRecordedTotal.Inc()
	return nil
}

// History returns a node's most recent completed runs, newest first.
// zona 0 means all zones.
func (u *EventUsecase) History(ctx context.Context, nodeID string, zona, limit int) ([]*domain.WateringEvent, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	if zona == 0 {
		events, err := u.repo.ListByNode(ctx, nodeID, limit)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		return events, nil
	}

	if zona < domain.MinZona || zona > domain.MaxZona {
		return nil, domain.ErrZonaOutOfRange
	}
	events, err := u.repo.ListByNodeAndZona(ctx, nodeID, zona, limit)
	if err != nil {
		return nil, fmt.Errorf("list events for zona %d: %w", zona, err)
	}
	return events, nil
}
