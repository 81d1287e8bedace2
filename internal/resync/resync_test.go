package resync

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/repository"
)

type fakeRepo struct {
	nodes   []string
	agendas map[string][]*domain.Agenda
	version map[string]int
	listErr error
}

func (r *fakeRepo) ListByNode(_ context.Context, nodeID string) ([]*domain.Agenda, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.agendas[nodeID], nil
}

func (r *fakeRepo) ListActiveByNodeAndZona(_ context.Context, _ string, _ int) ([]*domain.Agenda, error) {
	return nil, nil
}

func (r *fakeRepo) Upsert(_ context.Context, _ *domain.Agenda, _ repository.ConflictCheck) (*domain.Agenda, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeRepo) Delete(_ context.Context, _, _ string) (int, error) {
	return 0, errors.New("not implemented")
}

func (r *fakeRepo) GetVersion(_ context.Context, nodeID string) (int, error) {
	return r.version[nodeID], nil
}

func (r *fakeRepo) ListNodes(_ context.Context) ([]string, error) {
	return r.nodes, nil
}

type fakeGateway struct {
	enabled bool
	calls   map[string]int // nodeID -> published version
	errFor  string
}

func (g *fakeGateway) Enabled() bool { return g.enabled }

func (g *fakeGateway) PublishSync(nodeID string, version int, _ []*domain.Agenda) error {
	if nodeID == g.errFor {
		return errors.New("broker unreachable")
	}
	if g.calls == nil {
		g.calls = make(map[string]int)
	}
	g.calls[nodeID] = version
	return nil
}

func TestSweep_RepublishesEveryNode(t *testing.T) {
	repo := &fakeRepo{
		nodes:   []string{"node-a", "node-b"},
		version: map[string]int{"node-a": 3, "node-b": 7},
		agendas: map[string][]*domain.Agenda{
			"node-a": {{ID: "a1", NodeID: "node-a", Activa: true}},
		},
	}
	gw := &fakeGateway{enabled: true}
	b := NewBroadcaster(repo, gw, slog.Default())

	if err := b.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.calls["node-a"] != 3 || gw.calls["node-b"] != 7 {
		t.Fatalf("unexpected publishes: %v", gw.calls)
	}
}

func TestSweep_OneFailureDoesNotStopOthers(t *testing.T) {
	repo := &fakeRepo{
		nodes:   []string{"node-a", "node-b"},
		version: map[string]int{"node-a": 1, "node-b": 2},
	}
	gw := &fakeGateway{enabled: true, errFor: "node-a"}
	b := NewBroadcaster(repo, gw, slog.Default())

	err := b.Sweep(context.Background())
	if err == nil {
		t.Fatal("expected partial failure error")
	}
	if gw.calls["node-b"] != 2 {
		t.Fatalf("node-b should still be resynced: %v", gw.calls)
	}
}

func TestSweep_DisabledGatewaySkips(t *testing.T) {
	repo := &fakeRepo{nodes: []string{"node-a"}}
	gw := &fakeGateway{enabled: false}
	b := NewBroadcaster(repo, gw, slog.Default())

	if err := b.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("expected no publishes, got %v", gw.calls)
	}
}

func TestSweep_ExcludesInactiveAgendas(t *testing.T) {
	repo := &fakeRepo{
		nodes:   []string{"node-a"},
		version: map[string]int{"node-a": 5},
		agendas: map[string][]*domain.Agenda{
			"node-a": {
				{ID: "a1", NodeID: "node-a", Activa: true},
				{ID: "a2", NodeID: "node-a", Activa: false},
			},
		},
	}

	gw := &captureGateway{}
	b := NewBroadcaster(repo, gw, slog.Default())

	if err := b.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gw.agendas) != 1 || gw.agendas[0].ID != "a1" {
		t.Fatalf("expected only active agenda, got %v", gw.agendas)
	}
}

type captureGateway struct {
	agendas []*domain.Agenda
}

func (g *captureGateway) Enabled() bool { return true }

func (g *captureGateway) PublishSync(_ string, _ int, agendas []*domain.Agenda) error {
	g.agendas = agendas
	return nil
}
