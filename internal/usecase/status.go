package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/repository"
	"github.com/riegolab/riego/internal/schedule"
)

// ZoneStatusView is one zone's row in the dashboard status response:
// last reported runtime state merged with the next scheduled run.
type ZoneStatusView struct {
	Zona              int
	Nombre            string
	Icono             string
	Activa            bool
	TiempoRestanteSeg int
	ProximoRiego      string // empty when nothing is scheduled in the window
	LastUpdate        time.Time
}

// StatusUsecase answers "what is each zone doing and when does it run
// next". Runtime state comes from the in-memory cache, the next run from
// the durable schedule; neither path can fail the other.
type StatusUsecase struct {
	agendas repository.AgendaRepository
	zones   repository.ZoneConfigRepository
	cache   *schedule.StatusCache
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
}

func NewStatusUsecase(
	agendas repository.AgendaRepository,
	zones repository.ZoneConfigRepository,
	cache *schedule.StatusCache,
	loc *time.Location,
	logger *slog.Logger,
) *StatusUsecase {
	return &StatusUsecase{
		agendas: agendas,
		zones:   zones,
		cache:   cache,
		loc:     loc,
		now:     time.Now,
		logger:  logger.With("component", "status_usecase"),
	}
}

// GetStatus builds the status view for every enabled zone of a node, in
// configured order.
func (u *StatusUsecase) GetStatus(ctx context.Context, nodeID string) ([]ZoneStatusView, error) {
	configs, err := u.zones.ListEnabledByNode(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}

	now := u.now().In(u.loc)
	views := make([]ZoneStatusView, 0, len(configs))
	for _, zc := range configs {
		st := u.cache.Read(nodeID, zc.Zona)
		view := ZoneStatusView{
			Zona:              zc.Zona,
			Nombre:            zc.Nombre,
			Icono:             zc.Icono,
			Activa:            st.Activa,
			TiempoRestanteSeg: st.TiempoRestanteSeg,
			LastUpdate:        st.LastUpdate,
		}

		active, err := u.agendas.ListActiveByNodeAndZona(ctx, nodeID, zc.Zona)
		if err != nil {
			return nil, fmt.Errorf("list agendas for zona %d: %w", zc.Zona, err)
		}
		if occ, ok := schedule.NextOccurrence(now, active); ok {
			view.ProximoRiego = occ.Display(now)
		}

		views = append(views, view)
	}
	return views, nil
}

// OnStatusReport feeds one controller report into the cache. Implements
// the subscriber's StatusSink.
func (u *StatusUsecase) OnStatusReport(nodeID string, zona int, activa bool, tiempoRestanteSeg int) {
	if zona < domain.MinZona || zona > domain.MaxZona {
		u.logger.Warn("dropping report for out-of-range zona", "node_id", nodeID, "zona", zona)
		return
	}
	u.cache.Update(nodeID, zona, activa, tiempoRestanteSeg)
}
