package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riegolab/riego/internal/domain"
)

type ZoneConfigRepository struct {
	pool *pgxpool.Pool
}

func NewZoneConfigRepository(pool *pgxpool.Pool) *ZoneConfigRepository {
	return &ZoneConfigRepository{pool: pool}
}

const zoneConfigColumns = `node_id, zona, nombre, habilitada, icono, orden, created_at, updated_at`

func (r *ZoneConfigRepository) ListByNode(ctx context.Context, nodeID string) ([]*domain.ZoneConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM zona_config
		WHERE node_id = $1
		ORDER BY orden ASC, zona ASC`, zoneConfigColumns)

	return r.queryZones(ctx, query, nodeID)
}

func (r *ZoneConfigRepository) ListEnabledByNode(ctx context.Context, nodeID string) ([]*domain.ZoneConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM zona_config
		WHERE node_id = $1 AND habilitada
		ORDER BY orden ASC, zona ASC`, zoneConfigColumns)

	return r.queryZones(ctx, query, nodeID)
}

func (r *ZoneConfigRepository) Get(ctx context.Context, nodeID string, zona int) (*domain.ZoneConfig, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM zona_config
		WHERE node_id = $1 AND zona = $2`, zoneConfigColumns)

	return scanZoneConfig(r.pool.QueryRow(ctx, query, nodeID, zona))
}

func (r *ZoneConfigRepository) Upsert(ctx context.Context, zc *domain.ZoneConfig) (*domain.ZoneConfig, error) {
	query := fmt.Sprintf(`
		INSERT INTO zona_config (node_id, zona, nombre, habilitada, icono, orden, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (node_id, zona) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			habilitada = EXCLUDED.habilitada,
			icono = EXCLUDED.icono,
			orden = EXCLUDED.orden,
			updated_at = NOW()
		RETURNING %s`, zoneConfigColumns)

	row := r.pool.QueryRow(ctx, query,
		zc.NodeID, zc.Zona, zc.Nombre, zc.Habilitada, zc.Icono, zc.Orden)
	return scanZoneConfig(row)
}

func (r *ZoneConfigRepository) SetOrden(ctx context.Context, nodeID string, zona, orden int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE zona_config SET orden = $3, updated_at = NOW()
		 WHERE node_id = $1 AND zona = $2`,
		nodeID, zona, orden)
	if err != nil {
		return fmt.Errorf("set orden: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrZonaNotFound
	}
	return nil
}

func (r *ZoneConfigRepository) queryZones(ctx context.Context, query string, args ...any) ([]*domain.ZoneConfig, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query zona_config: %w", err)
	}
	defer rows.Close()

	var zones []*domain.ZoneConfig
	for rows.Next() {
		zc, err := scanZoneConfig(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zc)
	}
	return zones, rows.Err()
}

func scanZoneConfig(row rowScanner) (*domain.ZoneConfig, error) {
	var zc domain.ZoneConfig
	err := row.Scan(
		&zc.NodeID, &zc.Zona, &zc.Nombre, &zc.Habilitada, &zc.Icono,
		&zc.Orden, &zc.CreatedAt, &zc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrZonaNotFound
		}
		return nil, fmt.Errorf("scan zona_config: %w", err)
	}
	return &zc, nil
}
