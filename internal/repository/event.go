package repository

import (
	"context"

	"github.com/riegolab/riego/internal/domain"
)

// EventRepository stores completed watering runs reported by controllers.
type EventRepository interface {
	Create(ctx context.Context, e *domain.WateringEvent) (*domain.WateringEvent, error)
	ListByNode(ctx context.Context, nodeID string, limit int) ([]*domain.WateringEvent, error)
	ListByNodeAndZona(ctx context.Context, nodeID string, zona, limit int) ([]*domain.WateringEvent, error)
}
