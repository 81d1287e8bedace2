package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/metrics"
	"github.com/riegolab/riego/internal/repository"
	"github.com/riegolab/riego/internal/schedule"
)

// Gateway is the outbound message-bus surface the facade needs.
// Implemented by mqtt.Gateway.
type Gateway interface {
	Enabled() bool
	PublishSync(nodeID string, version int, agendas []*domain.Agenda) error
	PublishCommand(nodeID string, zona int, accion string, duracionSeg *int) error
}

// AgendaUsecase orchestrates schedule mutations: conflict validation,
// version bump and persist happen atomically in the repository; the sync
// broadcast follows after commit and its failure never rolls anything
// back.
type AgendaUsecase struct {
	repo    repository.AgendaRepository
	gateway Gateway
	logger  *slog.Logger
}

func NewAgendaUsecase(repo repository.AgendaRepository, gateway Gateway, logger *slog.Logger) *AgendaUsecase {
	return &AgendaUsecase{
		repo:    repo,
		gateway: gateway,
		logger:  logger.With("component", "agenda_usecase"),
	}
}

func (u *AgendaUsecase) ListAgendas(ctx context.Context, nodeID string) ([]*domain.Agenda, error) {
	agendas, err := u.repo.ListByNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("list agendas: %w", err)
	}
	return agendas, nil
}

type UpsertAgendaInput struct {
	ID          string
	NodeID      string
	Nombre      string
	Zona        int
	DiasSemana  []string
	HoraInicio  string
	DuracionMin int
	Activa      bool
}

// UpsertAgenda creates or replaces an agenda. On success the new snapshot
// is broadcast; if only the broadcast fails the agenda is still returned
// alongside domain.ErrSyncNotBroadcast so the boundary can report partial
// success.
func (u *AgendaUsecase) UpsertAgenda(ctx context.Context, input UpsertAgendaInput) (*domain.Agenda, error) {
	a, err := buildAgenda(input)
	if err != nil {
		return nil, err
	}

	created, err := u.repo.Upsert(ctx, a, func(existing []*domain.Agenda) error {
		return schedule.ValidateNoOverlap(a, existing)
	})
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("upsert", "error").Inc()
		return nil, fmt.Errorf("upsert agenda: %w", err)
	}
	metrics.MutationsTotal.WithLabelValues("upsert", "ok").Inc()

	if err := u.publishSync(ctx, created.NodeID, created.Version); err != nil {
		return created, err
	}
	return created, nil
}

// DeleteAgenda removes an agenda and broadcasts the shrunk snapshot.
// Deletion needs no conflict check.
func (u *AgendaUsecase) DeleteAgenda(ctx context.Context, nodeID, agendaID string) error {
	version, err := u.repo.Delete(ctx, nodeID, agendaID)
	if err != nil {
		metrics.MutationsTotal.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("delete agenda: %w", err)
	}
	metrics.MutationsTotal.WithLabelValues("delete", "ok").Inc()

	return u.publishSync(ctx, nodeID, version)
}

// SendCommand publishes an immediate ON/OFF action. Nothing is persisted,
// so a publish failure is an outright error.
func (u *AgendaUsecase) SendCommand(ctx context.Context, nodeID string, zona int, accion string, duracionSeg *int) error {
	if zona < domain.MinZona || zona > domain.MaxZona {
		return domain.ErrZonaOutOfRange
	}

	switch accion {
	case domain.AccionOff:
		duracionSeg = nil
	case domain.AccionOn:
		if duracionSeg == nil {
			return domain.ErrDuracionSegRequired
		}
		if *duracionSeg <= 0 || *duracionSeg > domain.MaxCommandDuracionSeg {
			return domain.ErrDuracionSegOutOfRange
		}
	default:
		return domain.ErrInvalidAccion
	}

	if !u.gateway.Enabled() {
		return domain.ErrMQTTDisabled
	}
	if err := u.gateway.PublishCommand(nodeID, zona, accion, duracionSeg); err != nil {
		return fmt.Errorf("send command: %w", err)
	}
	return nil
}

// publishSync rebuilds the node's active-agenda snapshot from the durable
// store and broadcasts it. With MQTT disabled the broadcast is skipped
// silently; any other failure maps to ErrSyncNotBroadcast.
func (u *AgendaUsecase) publishSync(ctx context.Context, nodeID string, version int) error {
	if !u.gateway.Enabled() {
		u.logger.Info("mqtt disabled, sync not broadcast", "node_id", nodeID, "version", version)
		return nil
	}

	all, err := u.repo.ListByNode(ctx, nodeID)
	if err != nil {
		u.logger.Error("load snapshot for sync", "node_id", nodeID, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrSyncNotBroadcast, err)
	}

	active := make([]*domain.Agenda, 0, len(all))
	for _, a := range all {
		if a.Activa {
			active = append(active, a)
		}
	}

	if err := u.gateway.PublishSync(nodeID, version, active); err != nil {
		u.logger.Error("sync broadcast failed", "node_id", nodeID, "version", version, "error", err)
		return fmt.Errorf("%w: %v", domain.ErrSyncNotBroadcast, err)
	}
	return nil
}

func buildAgenda(input UpsertAgendaInput) (*domain.Agenda, error) {
	if input.Zona < domain.MinZona || input.Zona > domain.MaxZona {
		return nil, domain.ErrZonaOutOfRange
	}
	if input.DuracionMin <= 0 || input.DuracionMin > domain.MaxDuracionMin {
		return nil, domain.ErrInvalidDuracion
	}
	if len(input.DiasSemana) == 0 {
		return nil, fmt.Errorf("%w: empty day set", domain.ErrInvalidDiaSemana)
	}

	hora, err := domain.ParseTimeOfDay(input.HoraInicio)
	if err != nil {
		return nil, err
	}

	// Duplicates in the day set carry no meaning; drop them.
	seen := make(map[domain.Weekday]bool, len(input.DiasSemana))
	dias := make([]domain.Weekday, 0, len(input.DiasSemana))
	for _, s := range input.DiasSemana {
		d, err := domain.ParseWeekday(s)
		if err != nil {
			return nil, err
		}
		if !seen[d] {
			seen[d] = true
			dias = append(dias, d)
		}
	}

	return &domain.Agenda{
		ID:          input.ID,
		NodeID:      input.NodeID,
		Nombre:      input.Nombre,
		Zona:        input.Zona,
		DiasSemana:  dias,
		HoraInicio:  hora,
		DuracionMin: input.DuracionMin,
		Activa:      input.Activa,
	}, nil
}
