package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/repository"
)

// ZoneConfigUsecase manages per-zone display metadata. Zone config never
// touches schedule versions: changing a name or icon triggers no sync.
type ZoneConfigUsecase struct {
	repo   repository.ZoneConfigRepository
	logger *slog.Logger
}

func NewZoneConfigUsecase(repo repository.ZoneConfigRepository, logger *slog.Logger) *ZoneConfigUsecase {
	return &ZoneConfigUsecase{
		repo:   repo,
		logger: logger.With("component", "zoneconfig_usecase"),
	}
}

func (u *ZoneConfigUsecase) List(ctx context.Context, nodeID string, onlyHabilitadas bool) ([]*domain.ZoneConfig, error) {
	var (
		zones []*domain.ZoneConfig
		err   error
	)
	if onlyHabilitadas {
		zones, err = u.repo.ListEnabledByNode(ctx, nodeID)
	} else {
		zones, err = u.repo.ListByNode(ctx, nodeID)
	}
	if err != nil {
		return nil, fmt.Errorf("list zone configs: %w", err)
	}
	return zones, nil
}

type UpsertZoneConfigInput struct {
	NodeID     string
	Zona       int
	Nombre     string
	Habilitada bool
	Icono      string
	Orden      int
}

func (u *ZoneConfigUsecase) Upsert(ctx context.Context, input UpsertZoneConfigInput) (*domain.ZoneConfig, error) {
	if input.Zona < domain.MinZona || input.Zona > domain.MaxZona {
		return nil, domain.ErrZonaOutOfRange
	}

	nombre := strings.TrimSpace(input.Nombre)
	if nombre == "" {
		nombre = fmt.Sprintf("Zona %d", input.Zona)
	}
	icono := strings.TrimSpace(input.Icono)
	if icono == "" {
		icono = domain.DefaultIcono
	}

	zc, err := u.repo.Upsert(ctx, &domain.ZoneConfig{
		NodeID:     input.NodeID,
		Zona:       input.Zona,
		Nombre:     nombre,
		Habilitada: input.Habilitada,
		Icono:      icono,
		Orden:      input.Orden,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert zone config: %w", err)
	}
	return zc, nil
}

func (u *ZoneConfigUsecase) Get(ctx context.Context, nodeID string, zona int) (*domain.ZoneConfig, error) {
	if zona < domain.MinZona || zona > domain.MaxZona {
		return nil, domain.ErrZonaOutOfRange
	}
	zc, err := u.repo.Get(ctx, nodeID, zona)
	if err != nil {
		return nil, fmt.Errorf("get zone config: %w", err)
	}
	return zc, nil
}

// UpdateNombre renames a zone, keeping the rest of its config.
func (u *ZoneConfigUsecase) UpdateNombre(ctx context.Context, nodeID string, zona int, nombre string) (*domain.ZoneConfig, error) {
	zc, err := u.Get(ctx, nodeID, zona)
	if err != nil {
		return nil, err
	}
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, domain.ErrInvalidNombre
	}
	zc.Nombre = nombre
	updated, err := u.repo.Upsert(ctx, zc)
	if err != nil {
		return nil, fmt.Errorf("update nombre: %w", err)
	}
	return updated, nil
}

// ToggleHabilitada flips whether the zone participates in status queries.
func (u *ZoneConfigUsecase) ToggleHabilitada(ctx context.Context, nodeID string, zona int) (*domain.ZoneConfig, error) {
	zc, err := u.Get(ctx, nodeID, zona)
	if err != nil {
		return nil, err
	}
	zc.Habilitada = !zc.Habilitada
	updated, err := u.repo.Upsert(ctx, zc)
	if err != nil {
		return nil, fmt.Errorf("toggle habilitada: %w", err)
	}
	return updated, nil
}

// Disable soft-removes a zone from the dashboard. The row stays so its
// name and ordering survive a later re-enable.
func (u *ZoneConfigUsecase) Disable(ctx context.Context, nodeID string, zona int) error {
	zc, err := u.Get(ctx, nodeID, zona)
	if err != nil {
		return err
	}
	zc.Habilitada = false
	if _, err := u.repo.Upsert(ctx, zc); err != nil {
		return fmt.Errorf("disable zone: %w", err)
	}
	return nil
}

// Reorder rewrites the display order of a node's zones to match the given
// zona sequence.
func (u *ZoneConfigUsecase) Reorder(ctx context.Context, nodeID string, zonas []int) error {
	seen := make(map[int]bool, len(zonas))
	for _, z := range zonas {
		if z < domain.MinZona || z > domain.MaxZona {
			return domain.ErrZonaOutOfRange
		}
		if seen[z] {
			return fmt.Errorf("%w: duplicate zona %d in order", domain.ErrZonaOutOfRange, z)
		}
		seen[z] = true
	}

	for orden, zona := range zonas {
		if err := u.repo.SetOrden(ctx, nodeID, zona, orden); err != nil {
			return fmt.Errorf("set orden for zona %d: %w", zona, err)
		}
	}
	return nil
}
