// Package resync periodically re-broadcasts every node's schedule
// snapshot. Controllers that missed a sync while offline converge on the
// next sweep instead of waiting for the next mutation.
package resync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/metrics"
	"github.com/riegolab/riego/internal/repository"
)

// Gateway is the broadcast surface. Matches usecase.Gateway.
type Gateway interface {
	Enabled() bool
	PublishSync(nodeID string, version int, agendas []*domain.Agenda) error
}

type Broadcaster struct {
	repo    repository.AgendaRepository
	gateway Gateway
	cron    *cron.Cron
	logger  *slog.Logger
}

func NewBroadcaster(repo repository.AgendaRepository, gateway Gateway, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		repo:    repo,
		gateway: gateway,
		cron:    cron.New(),
		logger:  logger.With("component", "resync"),
	}
}

// Start schedules the sweep at the given cron spec and launches the cron
// runner. The first sweep happens at the next cron tick, not immediately.
func (b *Broadcaster) Start(spec string) error {
	_, err := b.cron.AddFunc(spec, func() {
		if err := b.Sweep(context.Background()); err != nil {
			b.logger.Error("resync sweep", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule resync: %w", err)
	}
	b.cron.Start()
	b.logger.Info("resync scheduled", "cron", spec)
	return nil
}

// Stop halts the cron runner, waiting for an in-flight sweep to finish.
func (b *Broadcaster) Stop() {
	<-b.cron.Stop().Done()
}

// Sweep re-publishes the current snapshot for every known node. Nodes fail
// independently; one unreachable snapshot does not stop the rest.
func (b *Broadcaster) Sweep(ctx context.Context) error {
	if !b.gateway.Enabled() {
		b.logger.Info("mqtt disabled, skipping resync sweep")
		return nil
	}

	nodes, err := b.repo.ListNodes(ctx)
	if err != nil {
		metrics.ResyncRunsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("list nodes: %w", err)
	}

	failed := 0
	for _, nodeID := range nodes {
		if err := b.resyncNode(ctx, nodeID); err != nil {
			b.logger.Error("resync node", "node_id", nodeID, "error", err)
			failed++
		}
	}

	if failed > 0 {
		metrics.ResyncRunsTotal.WithLabelValues("partial").Inc()
		return fmt.Errorf("resync sweep: %d of %d nodes failed", failed, len(nodes))
	}
	metrics.ResyncRunsTotal.WithLabelValues("ok").Inc()
	b.logger.Info("resync sweep complete", "nodes", len(nodes))
	return nil
}

func (b *Broadcaster) resyncNode(ctx context.Context, nodeID string) error {
	version, err := b.repo.GetVersion(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("get version: %w", err)
	}

	all, err := b.repo.ListByNode(ctx, nodeID)
	if err != nil {
		return fmt.Errorf("list agendas: %w", err)
	}
	active := make([]*domain.Agenda, 0, len(all))
	for _, a := range all {
		if a.Activa {
			active = append(active, a)
		}
	}

	if err := b.gateway.PublishSync(nodeID, version, active); err != nil {
		return fmt.Errorf("publish sync: %w", err)
	}
	return nil
}
