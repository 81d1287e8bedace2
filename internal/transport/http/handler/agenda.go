package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/usecase"
)

type AgendaHandler struct {
	agendaUsecase *usecase.AgendaUsecase
	logger        *slog.Logger
}

func NewAgendaHandler(agendaUsecase *usecase.AgendaUsecase, logger *slog.Logger) *AgendaHandler {
	return &AgendaHandler{agendaUsecase: agendaUsecase, logger: logger.With("component", "agenda_handler")}
}

type upsertAgendaRequest struct {
	ID          string   `json:"id"          binding:"omitempty,uuid"`
	NodeID      string   `json:"nodeId"      binding:"omitempty,uuid"`
	Nombre      string   `json:"nombre"`
	Zona        int      `json:"zona"        binding:"required"`
	DiasSemana  []string `json:"diasSemana"  binding:"required,min=1"`
	HoraInicio  string   `json:"horaInicio"  binding:"required"`
	DuracionMin int      `json:"duracionMin" binding:"required"`
	Activa      *bool    `json:"activa"`
}

type agendaResponse struct {
	ID          string    `json:"id"`
	NodeID      string    `json:"nodeId"`
	Nombre      string    `json:"nombre"`
	Zona        int       `json:"zona"`
	DiasSemana  []string  `json:"diasSemana"`
	HoraInicio  string    `json:"horaInicio"`
	DuracionMin int       `json:"duracionMin"`
	Activa      bool      `json:"activa"`
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Warning     string    `json:"warning,omitempty"`
}

func toAgendaResponse(a *domain.Agenda) agendaResponse {
	dias := make([]string, len(a.DiasSemana))
	for i, d := range a.DiasSemana {
		dias[i] = string(d)
	}
	return agendaResponse{
		ID:          a.ID,
		NodeID:      a.NodeID,
		Nombre:      a.Nombre,
		Zona:        a.Zona,
		DiasSemana:  dias,
		HoraInicio:  a.HoraInicio.String(),
		DuracionMin: a.DuracionMin,
		Activa:      a.Activa,
		Version:     a.Version,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (h *AgendaHandler) List(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")

	agendas, err := h.agendaUsecase.ListAgendas(ctx.Request.Context(), nodeID)
	if err != nil {
		h.logger.Error("list agendas", "node_id", nodeID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]agendaResponse, 0, len(agendas))
	for _, a := range agendas {
		out = append(out, toAgendaResponse(a))
	}
	ctx.JSON(http.StatusOK, out)
}

// Upsert creates or replaces an agenda. A missing id gets a fresh UUID. A
// broadcast failure after the write committed still returns 201, with a
// warning field instead of an error.
func (h *AgendaHandler) Upsert(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")

	var req upsertAgendaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.NodeID != "" && req.NodeID != nodeID {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errNodeIDMismatch})
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	activa := true
	if req.Activa != nil {
		activa = *req.Activa
	}

	agenda, err := h.agendaUsecase.UpsertAgenda(ctx.Request.Context(), usecase.UpsertAgendaInput{
		ID:          req.ID,
		NodeID:      nodeID,
		Nombre:      req.Nombre,
		Zona:        req.Zona,
		DiasSemana:  req.DiasSemana,
		HoraInicio:  req.HoraInicio,
		DuracionMin: req.DuracionMin,
		Activa:      activa,
	})
	if err != nil && !errors.Is(err, domain.ErrSyncNotBroadcast) {
		switch {
		case errors.Is(err, domain.ErrAgendaOverlap):
			ctx.JSON(http.StatusConflict, gin.H{"error": errAgendaOverlap})
		case errors.Is(err, domain.ErrZonaOutOfRange),
			errors.Is(err, domain.ErrInvalidDuracion),
			errors.Is(err, domain.ErrInvalidDiaSemana),
			errors.Is(err, domain.ErrInvalidHora):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.logger.Error("upsert agenda", "node_id", nodeID, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	resp := toAgendaResponse(agenda)
	if errors.Is(err, domain.ErrSyncNotBroadcast) {
		resp.Warning = warnSyncNotSent
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Delete removes an agenda. On a broadcast failure the deletion stands and
// the response downgrades from 204 to 200 with a warning.
func (h *AgendaHandler) Delete(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")
	agendaID := ctx.Param("agendaId")

	err := h.agendaUsecase.DeleteAgenda(ctx.Request.Context(), nodeID, agendaID)
	switch {
	case err == nil:
		ctx.Status(http.StatusNoContent)
	case errors.Is(err, domain.ErrSyncNotBroadcast):
		ctx.JSON(http.StatusOK, gin.H{"warning": warnSyncNotSent})
	case errors.Is(err, domain.ErrAgendaNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errAgendaNotFound})
	default:
		h.logger.Error("delete agenda", "node_id", nodeID, "agenda_id", agendaID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
