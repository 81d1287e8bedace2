package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/repository"
)

type AgendaRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAgendaRepository(pool *pgxpool.Pool, logger *slog.Logger) *AgendaRepository {
	return &AgendaRepository{pool: pool, logger: logger.With("component", "agenda_repo")}
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const agendaColumns = `id, node_id, nombre, zona, dias_semana, hora_inicio, duracion_min, activa, version, updated_at`

func (r *AgendaRepository) ListByNode(ctx context.Context, nodeID string) ([]*domain.Agenda, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM agenda
		WHERE node_id = $1
		ORDER BY zona ASC, hora_inicio ASC`, agendaColumns)

	return queryAgendas(ctx, r.pool, query, nodeID)
}

func (r *AgendaRepository) ListActiveByNodeAndZona(ctx context.Context, nodeID string, zona int) ([]*domain.Agenda, error) {
	return listActiveByNodeAndZona(ctx, r.pool, nodeID, zona)
}

func listActiveByNodeAndZona(ctx context.Context, q querier, nodeID string, zona int) ([]*domain.Agenda, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM agenda
		WHERE node_id = $1 AND zona = $2 AND activa
		ORDER BY hora_inicio ASC`, agendaColumns)

	return queryAgendas(ctx, q, query, nodeID, zona)
}

func queryAgendas(ctx context.Context, q querier, query string, args ...any) ([]*domain.Agenda, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query agendas: %w", err)
	}
	defer rows.Close()

	var agendas []*domain.Agenda
	for rows.Next() {
		a, err := scanAgenda(rows)
		if err != nil {
			return nil, err
		}
		agendas = append(agendas, a)
	}
	return agendas, rows.Err()
}

// Upsert writes the agenda and bumps the node's schedule version in one
// transaction. The FOR UPDATE lock on the version row serializes the
// validate-bump-write sequence per node; mutations against other nodes
// are not blocked.
func (r *AgendaRepository) Upsert(ctx context.Context, a *domain.Agenda, check repository.ConflictCheck) (created *domain.Agenda, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	current, err := lockVersion(ctx, tx, a.NodeID)
	if err != nil {
		return nil, err
	}

	existing, err := listActiveByNodeAndZona(ctx, tx, a.NodeID, a.Zona)
	if err != nil {
		return nil, err
	}
	if err = check(existing); err != nil {
		return nil, err
	}

	newVersion := current + 1
	if err = bumpVersion(ctx, tx, a.NodeID, newVersion); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO agenda (id, node_id, nombre, zona, dias_semana, hora_inicio, duracion_min, activa, version, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (id) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			zona = EXCLUDED.zona,
			dias_semana = EXCLUDED.dias_semana,
			hora_inicio = EXCLUDED.hora_inicio,
			duracion_min = EXCLUDED.duracion_min,
			activa = EXCLUDED.activa,
			version = EXCLUDED.version,
			updated_at = NOW()
		RETURNING %s`, agendaColumns)

	row := tx.QueryRow(ctx, query,
		a.ID, a.NodeID, a.Nombre, a.Zona, diasToText(a.DiasSemana),
		a.HoraInicio.String(), a.DuracionMin, a.Activa, newVersion,
	)
	created, err = scanAgenda(row)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return created, nil
}

// Delete removes the agenda and bumps the node's version, returning the
// new version. Same locking discipline as Upsert.
func (r *AgendaRepository) Delete(ctx context.Context, nodeID, agendaID string) (version int, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	current, err := lockVersion(ctx, tx, nodeID)
	if err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM agenda WHERE node_id = $1 AND id = $2`,
		nodeID, agendaID)
	if err != nil {
		return 0, fmt.Errorf("delete agenda: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrAgendaNotFound
		return 0, err
	}

	newVersion := current + 1
	if err = bumpVersion(ctx, tx, nodeID, newVersion); err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return newVersion, nil
}

func (r *AgendaRepository) GetVersion(ctx context.Context, nodeID string) (int, error) {
	var version int
	err := r.pool.QueryRow(ctx,
		`SELECT version FROM agenda_version WHERE node_id = $1`,
		nodeID).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil // node never mutated
		}
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

func (r *AgendaRepository) ListNodes(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT node_id FROM agenda_version ORDER BY node_id`)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan node id: %w", err)
		}
		nodes = append(nodes, id)
	}
	return nodes, rows.Err()
}

// lockVersion creates the node's version row if it does not exist yet and
// takes a row lock on it, returning the current version.
func lockVersion(ctx context.Context, tx pgx.Tx, nodeID string) (int, error) {
	_, err := tx.Exec(ctx,
		`INSERT INTO agenda_version (node_id, version, updated_at)
		 VALUES ($1, 0, NOW())
		 ON CONFLICT (node_id) DO NOTHING`,
		nodeID)
	if err != nil {
		return 0, fmt.Errorf("init version row: %w", err)
	}

	var version int
	err = tx.QueryRow(ctx,
		`SELECT version FROM agenda_version WHERE node_id = $1 FOR UPDATE`,
		nodeID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("lock version row: %w", err)
	}
	return version, nil
}

func bumpVersion(ctx context.Context, tx pgx.Tx, nodeID string, version int) error {
	_, err := tx.Exec(ctx,
		`UPDATE agenda_version SET version = $2, updated_at = NOW() WHERE node_id = $1`,
		nodeID, version)
	if err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgenda(row rowScanner) (*domain.Agenda, error) {
	var a domain.Agenda
	var dias []string
	var hora string

	err := row.Scan(
		&a.ID, &a.NodeID, &a.Nombre, &a.Zona, &dias, &hora,
		&a.DuracionMin, &a.Activa, &a.Version, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgendaNotFound
		}
		return nil, fmt.Errorf("scan agenda: %w", err)
	}

	a.DiasSemana = make([]domain.Weekday, len(dias))
	for i, d := range dias {
		a.DiasSemana[i] = domain.Weekday(d)
	}
	if a.HoraInicio, err = domain.ParseTimeOfDay(hora); err != nil {
		return nil, fmt.Errorf("scan agenda hora_inicio: %w", err)
	}
	return &a, nil
}

func diasToText(dias []domain.Weekday) []string {
	out := make([]string, len(dias))
	for i, d := range dias {
		out[i] = string(d)
	}
	return out
}
