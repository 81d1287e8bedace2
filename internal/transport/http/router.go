package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/riegolab/riego/internal/transport/http/handler"
	"github.com/riegolab/riego/internal/transport/http/middleware"
)

func NewRouter(
	logger *slog.Logger,
	agendaHandler *handler.AgendaHandler,
	statusHandler *handler.StatusHandler,
	zoneHandler *handler.ZoneHandler,
	eventHandler *handler.EventHandler,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	api := r.Group("/api")
	api.GET("/version", handler.NewVersionHandler().Get)

	nodos := api.Group("/nodos/:nodeId")

	nodos.GET("/agendas", agendaHandler.List)
	nodos.POST("/agendas", agendaHandler.Upsert)
	nodos.DELETE("/agendas/:agendaId", agendaHandler.Delete)

	nodos.GET("/status", statusHandler.GetStatus)
	nodos.POST("/cmd", statusHandler.SendCommand)

	zonas := nodos.Group("/zonas")
	zonas.GET("", zoneHandler.List)
	zonas.POST("", zoneHandler.Upsert)
	zonas.PUT("/orden", zoneHandler.Reorder)
	zonas.GET("/:zona", zoneHandler.Get)
	zonas.PATCH("/:zona/nombre", zoneHandler.Rename)
	zonas.PATCH("/:zona/toggle", zoneHandler.Toggle)
	zonas.DELETE("/:zona", zoneHandler.Disable)

	nodos.GET("/historial", eventHandler.History)
	nodos.GET("/historial/zona/:zona", eventHandler.HistoryByZona)

	return r
}
