// internal/handlers/ops/handler.go
package ops

import (
	"net/http"

	xerrors "duka-service/internal/pkg/errors"
	"duka-service/internal/pkg/response"
	"duka-service/internal/scheduler"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OpsHandler exposes job introspection and manual triggering. The jobs are
// headless; this surface is the only way to poke them outside the cron
// cadence.
type OpsHandler struct {
	jobs   *scheduler.Handler
	logger *zap.Logger
}

func NewOpsHandler(jobs *scheduler.Handler, logger *zap.Logger) *OpsHandler {
	return &OpsHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// ListJobs returns every job's run history snapshot.
func (h *OpsHandler) ListJobs(c *gin.Context) {
	response.Success(c, http.StatusOK, "jobs", h.jobs.Statuses())
}

// RunJob triggers one job immediately, under the same lease as a cron run.
func (h *OpsHandler) RunJob(c *gin.Context) {
	name := c.Param("name")

	err := h.jobs.RunJob(c.Request.Context(), name)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, "job completed", nil)
	case xerrors.Is(err, xerrors.ErrUnknownJob):
		response.Error(c, http.StatusNotFound, "unknown job", err)
	case xerrors.Is(err, xerrors.ErrLockNotAcquired):
		response.Error(c, http.StatusConflict, "job is already running", err)
	default:
		h.logger.Error("manual job run failed", zap.String("job", name), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "job failed", err)
	}
}
