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

type ZoneHandler struct {
	zoneUsecase *usecase.ZoneConfigUsecase
	logger      *slog.Logger
}

func NewZoneHandler(zoneUsecase *usecase.ZoneConfigUsecase, logger *slog.Logger) *ZoneHandler {
	return &ZoneHandler{zoneUsecase: zoneUsecase, logger: logger.With("component", "zone_handler")}
}

type zoneConfigResponse struct {
	Zona       int       `json:"zona"`
	Nombre     string    `json:"nombre"`
	Habilitada bool      `json:"habilitada"`
	Icono      string    `json:"icono"`
	Orden      int       `json:"orden"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toZoneConfigResponse(zc *domain.ZoneConfig) zoneConfigResponse {
	return zoneConfigResponse{
		Zona:       zc.Zona,
		Nombre:     zc.Nombre,
		Habilitada: zc.Habilitada,
		Icono:      zc.Icono,
		Orden:      zc.Orden,
		UpdatedAt:  zc.UpdatedAt,
	}
}

func (h *ZoneHandler) List(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")
	onlyHabilitadas := ctx.Query("habilitadas") == "true"

	zones, err := h.zoneUsecase.List(ctx.Request.Context(), nodeID, onlyHabilitadas)
	if err != nil {
		h.logger.Error("list zones", "node_id", nodeID, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	out := make([]zoneConfigResponse, 0, len(zones))
	for _, zc := range zones {
		out = append(out, toZoneConfigResponse(zc))
	}
	ctx.JSON(http.StatusOK, out)
}

func (h *ZoneHandler) Get(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")
	zona, ok := zonaParam(ctx)
	if !ok {
		return
	}

	zc, err := h.zoneUsecase.Get(ctx.Request.Context(), nodeID, zona)
	if err != nil {
		h.respondZoneError(ctx, nodeID, zona, err)
		return
	}
	ctx.JSON(http.StatusOK, toZoneConfigResponse(zc))
}

type upsertZoneRequest struct {
	Zona       int    `json:"zona"   binding:"required"`
	Nombre     string `json:"nombre"`
	Habilitada *bool  `json:"habilitada"`
	Icono      string `json:"icono"`
	Orden      int    `json:"orden"`
}

func (h *ZoneHandler) Upsert(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")

	var req upsertZoneRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	habilitada := true
	if req.Habilitada != nil {
		habilitada = *req.Habilitada
	}

	zc, err := h.zoneUsecase.Upsert(ctx.Request.Context(), usecase.UpsertZoneConfigInput{
		NodeID:     nodeID,
		Zona:       req.Zona,
		Nombre:     req.Nombre,
		Habilitada: habilitada,
		Icono:      req.Icono,
		Orden:      req.Orden,
	})
	if err != nil {
		h.respondZoneError(ctx, nodeID, req.Zona, err)
		return
	}
	ctx.JSON(http.StatusCreated, toZoneConfigResponse(zc))
}

type renameZoneRequest struct {
	Nombre string `json:"nombre" binding:"required"`
}

func (h *ZoneHandler) Rename(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")
	zona, ok := zonaParam(ctx)
	if !ok {
		return
	}

	var req renameZoneRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zc, err := h.zoneUsecase.UpdateNombre(ctx.Request.Context(), nodeID, zona, req.Nombre)
	if err != nil {
		h.respondZoneError(ctx, nodeID, zona, err)
		return
	}
	ctx.JSON(http.StatusOK, toZoneConfigResponse(zc))
}

func (h *ZoneHandler) Toggle(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")
	zona, ok := zonaParam(ctx)
	if !ok {
		return
	}

	zc, err := h.zoneUsecase.ToggleHabilitada(ctx.Request.Context(), nodeID, zona)
	if err != nil {
		h.respondZoneError(ctx, nodeID, zona, err)
		return
	}
	ctx.JSON(http.StatusOK, toZoneConfigResponse(zc))
}

func (h *ZoneHandler) Disable(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")
	zona, ok := zonaParam(ctx)
	if !ok {
		return
	}

	if err := h.zoneUsecase.Disable(ctx.Request.Context(), nodeID, zona); err != nil {
		h.respondZoneError(ctx, nodeID, zona, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

type reorderRequest struct {
	Zonas []int `json:"zonas" binding:"required,min=1"`
}

func (h *ZoneHandler) Reorder(ctx *gin.Context) {
	nodeID := ctx.Param("nodeId")

	var req reorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.zoneUsecase.Reorder(ctx.Request.Context(), nodeID, req.Zonas); err != nil {
		h.respondZoneError(ctx, nodeID, 0, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (h *ZoneHandler) respondZoneError(ctx *gin.Context, nodeID string, zona int, err error) {
	switch {
	case errors.Is(err, domain.ErrZonaNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": errZonaNotFound})
	case errors.Is(err, domain.ErrZonaOutOfRange), errors.Is(err, domain.ErrInvalidNombre):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("zone config", "node_id", nodeID, "zona", zona, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

func zonaParam(ctx *gin.Context) (int, bool) {
	zona, err := strconv.Atoi(ctx.Param("zona"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "zona must be an integer"})
		return 0, false
	}
	return zona, true
}
