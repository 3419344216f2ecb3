package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/pageview/pageview/api/v1"
	srvErrors "github.com/pageview/pageview/pkg/errors"
)

// GetEngine returns the pool and worker status
// (GET /engine)
func (h *Handler) GetEngine(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewEngineStatusFromModel(h.engineSrv.Status()))
}

// GetQueue returns the global queue in fetch order, with job logs
// (GET /engine/queue)
func (h *Handler) GetQueue(c *gin.Context) {
	c.JSON(http.StatusOK, v1.NewQueueResponseFromModel(h.engineSrv.Queue()))
}

// GetWorkers returns the worker count
// (GET /engine/workers)
func (h *Handler) GetWorkers(c *gin.Context) {
	c.JSON(http.StatusOK, v1.WorkersResponse{
		Count: h.workersSrv.Get(),
		Max:   h.workersSrv.Max(),
	})
}

// PutWorkers persists and applies a worker count
// (PUT /engine/workers)
func (h *Handler) PutWorkers(c *gin.Context) {
	var req v1.WorkersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.workersSrv.Validate(*req.Count); err != nil {
		if srvErrors.IsInvalidWorkerCountError(err) {
			c.JSON(http.StatusBadRequest, v1.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, v1.ErrorResponse{Error: err.Error()})
		return
	}

	n, err := h.workersSrv.Set(c.Request.Context(), *req.Count)
	if err != nil {
		if srvErrors.IsInvalidOperationError(err) {
			c.JSON(http.StatusConflict, v1.ErrorResponse{Error: err.Error()})
			return
		}
		zap.S().Named("engine_handler").Errorw("failed to set worker count", "count", *req.Count, "error", err)
		c.JSON(http.StatusInternalServerError, v1.ErrorResponse{Error: "failed to set worker count"})
		return
	}

	c.JSON(http.StatusOK, v1.WorkersResponse{Count: n, Max: h.workersSrv.Max()})
}
