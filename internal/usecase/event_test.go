package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/riegolab/riego/internal/domain"
)

type fakeEventRepo struct {
	events    []*domain.WateringEvent
	createErr error
}

func (r *fakeEventRepo) Create(_ context.Context, e *domain.WateringEvent) (*domain.WateringEvent, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.events = append(r.events, e)
	return e, nil
}

func (r *fakeEventRepo) ListByNode(_ context.Context, nodeID string, limit int) ([]*domain.WateringEvent, error) {
	var out []*domain.WateringEvent
	for _, e := range r.events {
		if e.NodeID == nodeID && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeEventRepo) ListByNodeAndZona(_ context.Context, nodeID string, zona, limit int) ([]*domain.WateringEvent, error) {
	var out []*domain.WateringEvent
	for _, e := range r.events {
		if e.NodeID == nodeID && e.Zona == zona && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func newTestEventUsecase(repo *fakeEventRepo) *EventUsecase {
	return NewEventUsecase(repo, slog.Default())
}

func TestRecordEvent_PersistsFin(t *testing.T) {
	repo := &fakeEventRepo{}
	u := newTestEventUsecase(repo)

	payload := []byte(`{"zona":3,"evento":"fin","timestamp":1767000000,"origen":"agenda","duracionReal":600,"versionAgenda":4}`)
	if err := u.RecordEvent(context.Background(), "node-a", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Zona != 3 || e.DuracionSeg != 600 || e.Origen != domain.OrigenAgenda {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.Timestamp.Unix() != 1767000000 {
		t.Fatalf("unexpected timestamp: %v", e.Timestamp)
	}
	if e.VersionAgenda == nil || *e.VersionAgenda != 4 {
		t.Fatalf("unexpected versionAgenda: %v", e.VersionAgenda)
	}
	if e.Raw != string(payload) {
		t.Fatalf("raw payload not preserved")
	}
}

func TestRecordEvent_IgnoresNonTerminal(t *testing.T) {
	repo := &fakeEventRepo{}
	u := newTestEventUsecase(repo)

	for _, payload := range []string{
		`{"zona":3,"evento":"inicio","timestamp":1767000000,"origen":"agenda"}`,
		`{"zona":3,"evento":"pausa","timestamp":1767000000}`,
	} {
		if err := u.RecordEvent(context.Background(), "node-a", []byte(payload)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(repo.events) != 0 {
		t.Fatalf("expected no events, got %d", len(repo.events))
	}
}

func TestRecordEvent_DropsMalformedWithoutError(t *testing.T) {
	repo := &fakeEventRepo{}
	u := newTestEventUsecase(repo)

	for _, payload := range []string{
		`not json`,
		`{"zona":0,"evento":"fin","timestamp":1767000000}`,
		`{"zona":9,"evento":"fin","timestamp":1767000000}`,
	} {
		if err := u.RecordEvent(context.Background(), "node-a", []byte(payload)); err != nil {
			t.Fatalf("unexpected error for %q: %v", payload, err)
		}
	}
	if len(repo.events) != 0 {
		t.Fatalf("expected no events, got %d", len(repo.events))
	}
}

func TestRecordEvent_UnknownOrigenFallsBackToManual(t *testing.T) {
	repo := &fakeEventRepo{}
	u := newTestEventUsecase(repo)

	payload := []byte(`{"zona":1,"evento":"fin","timestamp":1767000000,"origen":"firmware-x","duracionReal":60}`)
	if err := u.RecordEvent(context.Background(), "node-a", payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.events[0].Origen != domain.OrigenManual {
		t.Fatalf("expected manual fallback, got %q", repo.events[0].Origen)
	}
}

func TestRecordEvent_PersistErrorSurfaces(t *testing.T) {
	repo := &fakeEventRepo{createErr: errors.New("db down")}
	u := newTestEventUsecase(repo)

	payload := []byte(`{"zona":1,"evento":"fin","timestamp":1767000000,"duracionReal":60}`)
	if err := u.RecordEvent(context.Background(), "node-a", payload); err == nil {
		t.Fatal("expected error")
	}
}

func TestHistory_DefaultsAndCaps(t *testing.T) {
	repo := &fakeEventRepo{}
	for i := 0; i < 60; i++ {
		repo.events = append(repo.events, &domain.WateringEvent{NodeID: "node-a", Zona: 1})
	}
	u := newTestEventUsecase(repo)

	events, err := u.History(context.Background(), "node-a", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 50 {
		t.Fatalf("expected default limit 50, got %d", len(events))
	}

	if _, err := u.History(context.Background(), "node-a", 9, 10); !errors.Is(err, domain.ErrZonaOutOfRange) {
		t.Fatalf("expected ErrZonaOutOfRange, got %v", err)
	}
}
