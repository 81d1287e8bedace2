package repository

import (
	"context"

	"github.com/riegolab/riego/internal/domain"
)

// ZoneConfigRepository stores per-zone display metadata. Zones are keyed
// by (node, zona) and listed in their configured order.
type ZoneConfigRepository interface {
	ListByNode(ctx context.Context, nodeID string) ([]*domain.ZoneConfig, error)
	ListEnabledByNode(ctx context.Context, nodeID string) ([]*domain.ZoneConfig, error)
	Get(ctx context.Context, nodeID string, zona int) (*domain.ZoneConfig, error)
	Upsert(ctx context.Context, zc *domain.ZoneConfig) (*domain.ZoneConfig, error)
	SetOrden(ctx context.Context, nodeID string, zona, orden int) error
}
