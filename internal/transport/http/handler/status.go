package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/riegolab/riego/internal/domain"
	"github.com/riegolab/riego/internal/usecase"
)

type StatusHandler struct {
	statusUsecase *usecase.StatusUsecase
	agendaUsecase *usecase.AgendaUsecase
	logger        *slog.Logger
}

func NewStatusHandler(statusUsecase *usecase.StatusUsecase, agendaUsecase *usecase.AgendaUsecase, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{
		statusUsecase: statusUsecase,
		agendaUsecase: agendaUsecase,
		logger:        logger.With("component", "status_handler"),
	}
}

type zoneStatusResponse struct {
	Zona              int        `json:"zona"`
	Nombre            string     `json:"nombre"`
	Icono             string     `json:"icono"`
	Activa            bool       `json:"activa"`
	TiempoRestanteSeg int        `json:"tiempoRestanteSeg"`
	ProximoRiego      string     `json:"proximoRiego,omitempty"`
	LastUpdate        *time.Time `json:"lastUpdate,omitempty"`
}

func (h *StatusHandler) GetStatus(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")

	views, err := h.statusUsecase.GetStatus(ctx.Request.Context(), nodeID)
	if err != nil {
		h.logger.Error("get status", "node_id", nodeID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]zoneStatusResponse, 0, len(views))
	for _, v := range views {
		resp := zoneStatusResponse{
			Zona:              v.Zona,
			Nombre:            v.Nombre,
			Icono:             v.Icono,
			Activa:            v.Activa,
			TiempoRestanteSeg: v.TiempoRestanteSeg,
			ProximoRiego:      v.ProximoRiego,
		}
		if !v.LastUpdate.IsZero() {
			t := v.LastUpdate
			resp.LastUpdate = &t
		}
		out = append(out, resp)
	}
	ctx.JSON(http.StatusOK, out)
}

type commandRequest struct {
	Zona     int    `json:"zona"     binding:"required"`
	Accion   string `json:"accion"   binding:"required"`
	Duracion *int   `json:"duracion"`
}

// SendCommand publishes an immediate ON/OFF action. 202 means handed to
// the broker, not that the controller acted on it.
func (h *StatusHandler) SendCommand(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")

	var req commandRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.agendaUsecase.SendCommand(ctx.Request.Context(), nodeID, req.Zona, req.Accion, req.Duracion)
	switch {
	case err == nil:
		ctx.JSON(http.StatusAccepted, gin.H{"status": "enviado"})
	case errors.Is(err, domain.ErrMQTTDisabled):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": errMQTTUnavailable})
	case errors.Is(err, domain.ErrInvalidAccion),
		errors.Is(err, domain.ErrZonaOutOfRange),
		errors.Is(err, domain.ErrDuracionSegRequired),
		errors.Is(err, domain.ErrDuracionSegOutOfRange):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("send command", "node_id", nodeID, "zona", req.Zona, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}
