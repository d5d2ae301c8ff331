// internal/scheduler/cron.go
package scheduler

import (
	"context"
	"fmt"
	"time"

	xerrors "duka-service/internal/pkg/errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// NewCron builds the cron runner. SkipIfStillRunning covers in-process
// overlap; the redis lease in RunJob covers the rest of the fleet.
func NewCron(logger *zap.Logger, loc *time.Location) *cron.Cron {
	cl := &cronLogger{log: logger.Sugar()}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

// Register adds one cron entry per job with a non-empty spec. A held lease
// is an expected outcome on a multi-worker deployment, not an error.
func (h *Handler) Register(c *cron.Cron, specs map[string]string) error {
	for _, name := range h.JobNames() {
		spec, ok := specs[name]
		if !ok || spec == "" {
			continue
		}

		name := name
		_, err := c.AddFunc(spec, func() {
			err := h.RunJob(context.Background(), name)
			if err != nil && !xerrors.Is(err, xerrors.ErrLockNotAcquired) {
				h.logger.Error("scheduled job failed", zap.String("job", name), zap.Error(err))
			}
		})
		if err != nil {
			return fmt.Errorf("failed to register job %s with spec %q: %w", name, spec, err)
		}

		h.logger.Info("scheduled job registered", zap.String("job", name), zap.String("spec", spec))
	}

	return nil
}

type cronLogger struct {
	log *zap.SugaredLogger
}

func (c *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Infow(msg, keysAndValues...)
}

func (c *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
