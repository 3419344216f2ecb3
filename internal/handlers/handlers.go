package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pageview/pageview/internal/services"
)

type Handler struct {
	engineSrv  *services.EngineService
	workersSrv *services.WorkerService
}

func New(engineSrv *services.EngineService, workersSrv *services.WorkerService) *Handler {
	return &Handler{
		engineSrv:  engineSrv,
		workersSrv: workersSrv,
	}
}

// RegisterHandlers mounts the engine routes on router. Mutating routes go
// through guard first.
func RegisterHandlers(router *gin.RouterGroup, h *Handler, guard gin.HandlerFunc) {
	engine := router.Group("/engine")
	engine.GET("", h.GetEngine)
	engine.GET("/queue", h.GetQueue)
	engine.GET("/workers", h.GetWorkers)
	engine.PUT("/workers", guard, h.PutWorkers)
}
