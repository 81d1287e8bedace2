package schedule

import (
	"sync"
	"time"

	"github.com/riegolab/riego/internal/domain"
)

// StatusCache holds the last runtime state each controller reported per
// zone. It is overwrite-only (last writer wins, no merging) and purely
// in-memory: a restart simply starts empty until the next report arrives.
//
// The outer level is a sync.Map keyed by node so reports from different
// nodes never contend; zones of one node share a small RWMutex.
type StatusCache struct {
	nodes sync.Map // nodeID -> *nodeStatuses
}

type nodeStatuses struct {
	mu    sync.RWMutex
	zones map[int]domain.ZoneStatus
}

func NewStatusCache() *StatusCache {
	return &StatusCache{}
}

// Update records a status report for one zone, stamping it with the
// current time.
func (c *StatusCache) Update(nodeID string, zona int, activa bool, tiempoRestanteSeg int) {
	v, _ := c.nodes.LoadOrStore(nodeID, &nodeStatuses{zones: make(map[int]domain.ZoneStatus)})
	ns := v.(*nodeStatuses)

	ns.mu.Lock()
	ns.zones[zona] = domain.ZoneStatus{
		Activa:            activa,
		TiempoRestanteSeg: tiempoRestanteSeg,
		LastUpdate:        time.Now(),
	}
	ns.mu.Unlock()
}

// Read returns the last reported status for a zone. A zone that never
// reported yields the zero default (inactive, no time remaining) — absence
// is not an error.
func (c *StatusCache) Read(nodeID string, zona int) domain.ZoneStatus {
	v, ok := c.nodes.Load(nodeID)
	if !ok {
		return domain.ZoneStatus{}
	}
	ns := v.(*nodeStatuses)

	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.zones[zona]
}
