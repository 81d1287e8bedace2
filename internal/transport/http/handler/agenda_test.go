package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/repository"
	"github.com/riegolab/riego/internal/transport/http/handler"
	"github.com/riegolab/riego/internal/usecase"
)

const testNodeID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"

type stubAgendaRepo struct {
	agendas map[string]*domain.Agenda
	version int
}

func newStubAgendaRepo() *stubAgendaRepo {
	return &stubAgendaRepo{agendas: make(map[string]*domain.Agenda)}
}

func (r *stubAgendaRepo) ListByNode(_ context.Context, nodeID string) ([]*domain.Agenda, error) {
	var out []*domain.Agenda
	for _, a := range r.agendas {
		if a.NodeID == nodeID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAgendaRepo) ListActiveByNodeAndZona(_ context.Context, nodeID string, zona int) ([]*domain.Agenda, error) {
	var out []*domain.Agenda
	for _, a := range r.agendas {
		if a.NodeID == nodeID && a.Zona == zona && a.Activa {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *stubAgendaRepo) Upsert(ctx context.Context, a *domain.Agenda, check repository.ConflictCheck) (*domain.Agenda, error) {
	existing, _ := r.ListActiveByNodeAndZona(ctx, a.NodeID, a.Zona)
	if err := check(existing); err != nil {
		return nil, err
	}
	r.version++
	stored := *a
	stored.Version = r.version
	r.agendas[a.ID] = &stored
	return &stored, nil
}

func (r *stubAgendaRepo) Delete(_ context.Context, nodeID, agendaID string) (int, error) {
	a, ok := r.agendas[agendaID]
	if !ok || a.NodeID != nodeID {
		return 0, domain.ErrAgendaNotFound
	}
	delete(r.agendas, agendaID)
	r.version++
	return r.version, nil
}

func (r *stubAgendaRepo) GetVersion(_ context.Context, _ string) (int, error) { return r.version, nil }
func (r *stubAgendaRepo) ListNodes(_ context.Context) ([]string, error)      { return nil, nil }

type stubGateway struct {
	enabled bool
	syncErr error
}

func (g *stubGateway) Enabled() bool { return g.enabled }
func (g *stubGateway) PublishSync(string, int, []*domain.Agenda) error {
	return g.syncErr
}
func (g *stubGateway) PublishCommand(string, int, string, *int) error { return nil }

func newTestRouter(repo *stubAgendaRepo, gw *stubGateway) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.Default()

	u := usecase.NewAgendaUsecase(repo, gw, logger)
	h := handler.NewAgendaHandler(u, logger)

	r := gin.New()
	r.GET("/api/nodos/:nodeId/agendas", h.List)
	r.POST("/api/nodos/:nodeId/agendas", h.Upsert)
	r.DELETE("/api/nodos/:nodeId/agendas/:agendaId", h.Delete)
	return r
}

func postAgenda(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/nodos/"+testNodeID+"/agendas", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{
	"nombre": "Riego matutino",
	"zona": 2,
	"diasSemana": ["LUN", "VIE"],
	"horaInicio": "07:30",
	"duracionMin": 20
}`

func TestUpsertAgenda_Created(t *testing.T) {
	r := newTestRouter(newStubAgendaRepo(), &stubGateway{enabled: true})

	w := postAgenda(t, r, validBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["version"].(float64) != 1 {
		t.Fatalf("expected version 1, got %v", resp["version"])
	}
	if resp["id"] == "" {
		t.Fatal("expected generated id")
	}
	if _, ok := resp["warning"]; ok {
		t.Fatalf("unexpected warning: %v", resp["warning"])
	}
}

func TestUpsertAgenda_OverlapConflict(t *testing.T) {
	repo := newStubAgendaRepo()
	r := newTestRouter(repo, &stubGateway{enabled: true})

	if w := postAgenda(t, r, validBody); w.Code != http.StatusCreated {
		t.Fatalf("seed: %d", w.Code)
	}
	w := postAgenda(t, r, `{
		"zona": 2,
		"diasSemana": ["VIE"],
		"horaInicio": "07:40",
		"duracionMin": 10
	}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body)
	}
	if len(repo.agendas) != 1 {
		t.Fatalf("conflicting agenda was stored")
	}
}

func TestUpsertAgenda_NodeIDMismatch(t *testing.T) {
	r := newTestRouter(newStubAgendaRepo(), &stubGateway{enabled: true})

	w := postAgenda(t, r, `{
		"nodeId": "0e02b2c3-d479-4372-a567-f47ac10b58cc",
		"zona": 2,
		"diasSemana": ["LUN"],
		"horaInicio": "07:30",
		"duracionMin": 20
	}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body)
	}
}

func TestUpsertAgenda_SyncFailureReturnsWarning(t *testing.T) {
	r := newTestRouter(newStubAgendaRepo(), &stubGateway{enabled: true, syncErr: errors.New("broker down")})

	w := postAgenda(t, r, validBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["warning"] == nil || resp["warning"] == "" {
		t.Fatal("expected warning field")
	}
}

func TestUpsertAgenda_BadPayload(t *testing.T) {
	r := newTestRouter(newStubAgendaRepo(), &stubGateway{enabled: true})

	for name, body := range map[string]string{
		"missing days": `{"zona":2,"horaInicio":"07:30","duracionMin":20}`,
		"bad hora":     `{"zona":2,"diasSemana":["LUN"],"horaInicio":"25:00","duracionMin":20}`,
		"bad zona":     `{"zona":9,"diasSemana":["LUN"],"horaInicio":"07:30","duracionMin":20}`,
		"bad day tag":  `{"zona":2,"diasSemana":["MON"],"horaInicio":"07:30","duracionMin":20}`,
	} {
		if w := postAgenda(t, r, body); w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", name, w.Code, w.Body)
		}
	}
}

func TestDeleteAgenda(t *testing.T) {
	repo := newStubAgendaRepo()
	r := newTestRouter(repo, &stubGateway{enabled: true})

	w := postAgenda(t, r, validBody)
	var created map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	id := created["id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/api/nodos/"+testNodeID+"/agendas/"+id, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rec.Code, rec.Body)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/nodos/"+testNodeID+"/agendas/"+id, nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body)
	}
}

func TestListAgendas(t *testing.T) {
	r := newTestRouter(newStubAgendaRepo(), &stubGateway{enabled: true})

	if w := postAgenda(t, r, validBody); w.Code != http.StatusCreated {
		t.Fatalf("seed: %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/nodos/"+testNodeID+"/agendas", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 agenda, got %d", len(list))
	}
}
