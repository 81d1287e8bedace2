package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riegolab/riego/internal/domain"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, node_id, zona, ts, duracion_seg, origen, version_agenda, raw`

func (r *EventRepository) Create(ctx context.Context, e *domain.WateringEvent) (*domain.WateringEvent, error) {
	query := fmt.Sprintf(`
		INSERT INTO riego_evento (node_id, zona, ts, duracion_seg, origen, version_agenda, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, eventColumns)

	row := r.pool.QueryRow(ctx, query,
		e.NodeID, e.Zona, e.Timestamp, e.DuracionSeg, e.Origen, e.VersionAgenda, e.Raw)
	return scanEvent(row)
}

func (r *EventRepository) ListByNode(ctx context.Context, nodeID string, limit int) ([]*domain.WateringEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM riego_evento
		WHERE node_id = $1
		ORDER BY ts DESC
		LIMIT $2`, eventColumns)

	return r.queryEvents(ctx, query, nodeID, limit)
}

func (r *EventRepository) ListByNodeAndZona(ctx context.Context, nodeID string, zona, limit int) ([]*domain.WateringEvent, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM riego_evento
		WHERE node_id = $1 AND zona = $2
		ORDER BY ts DESC
		LIMIT $3`, eventColumns)

	return r.queryEvents(ctx, query, nodeID, zona, limit)
}

func (r *EventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.WateringEvent, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query riego_evento: %w", err)
	}
	defer rows.Close()

	var events []*domain.WateringEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (*domain.WateringEvent, error) {
	var e domain.WateringEvent
	err := row.Scan(
		&e.ID, &e.NodeID, &e.Zona, &e.Timestamp, &e.DuracionSeg,
		&e.Origen, &e.VersionAgenda, &e.Raw,
	)
	if err != nil {
		return nil, fmt.Errorf("scan riego_evento: %w", err)
	}
	return &e, nil
}
