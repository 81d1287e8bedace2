package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/usecase"
)

type EventHandler struct {
	eventUsecase *usecase.EventUsecase
	logger       *slog.Logger
}

func NewEventHandler(eventUsecase *usecase.EventUsecase, logger *slog.Logger) *EventHandler {
	return &EventHandler{eventUsecase: eventUsecase, logger: logger.With("component", "event_handler")}
}

type eventResponse struct {
	ID            string    `json:"id"`
	Zona          int       `json:"zona"`
	Timestamp     time.Time `json:"timestamp"`
	DuracionSeg   int       `json:"duracionSeg"`
	Origen        string    `json:"origen"`
	VersionAgenda *int      `json:"versionAgenda,omitempty"`
}

func (h *EventHandler) History(ctx *gin.Context) {
	h.listHistory(ctx, 0)
}

func (h *EventHandler) HistoryByZona(ctx *gin.Context) {
	zona, ok := zonaParam(ctx)
	if !ok {
		return
	}
	h.listHistory(ctx, zona)
}

func (h *EventHandler) listHistory(ctx *gin.Context, zona int) {
	nodeID := ctx.Param("nodeId")

	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	events, err := h.eventUsecase.History(ctx.Request.Context(), nodeID, zona, limit)
	if err != nil {
		if errors.Is(err, domain.ErrZonaOutOfRange) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("list history", "node_id", nodeID, "zona", zona, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:            e.ID,
			Zona:          e.Zona,
			Timestamp:     e.Timestamp,
			DuracionSeg:   e.DuracionSeg,
			Origen:        e.Origen,
			VersionAgenda: e.VersionAgenda,
		})
	}
	ctx.JSON(http.StatusOK, out)
}
