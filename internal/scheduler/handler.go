// internal/scheduler/handler.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"duka-service/internal/pkg/clock"
	xerrors "duka-service/internal/pkg/errors"
	"duka-service/internal/pkg/lock"
	remindersvc "duka-service/internal/service/reminder"
	savingssvc "duka-service/internal/service/savings"
	subscriptionsvc "duka-service/internal/service/subscription"
	writeoffsvc "duka-service/internal/service/writeoff"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Job names double as lock keys and as the ops API trigger identifiers.
const (
	JobCheckExpired  = "subscriptions:check-expired"
	JobCheckExpiring = "subscriptions:check-expiring"
	JobAutoRenewal   = "subscriptions:process-auto-renewal"
	JobSavingsDaily  = "savings:process-daily"
	JobWriteOff      = "sales:convert-unpaid-to-expense"
	JobDebtReminders = "customers:send-debt-reminders"
)

// JobStatus is a snapshot of one job's run history.
type JobStatus struct {
	Name      string    `json:"name"`
	Runs      int       `json:"runs"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Handler owns the scheduled batch jobs. Every run is wrapped in a
// lease-based lock keyed by job name, so a job executes on at most one
// worker across the fleet and never overlaps its own previous invocation; a
// trigger that finds the lease held is skipped, not queued.
type Handler struct {
	subscriptions *subscriptionsvc.Service
	savings       *savingssvc.Service
	writeoffs     *writeoffsvc.Service
	reminders     *remindersvc.Service

	clk          clock.Clock
	locker       *lock.Locker
	logger       *zap.Logger
	timeout      time.Duration
	reminderDays []int
	minDebt      decimal.Decimal

	mu       sync.RWMutex
	statuses map[string]*JobStatus
}

type Config struct {
	Timeout      time.Duration
	ReminderDays []int
	MinDebt      decimal.Decimal
}

func New(
	subscriptions *subscriptionsvc.Service,
	savings *savingssvc.Service,
	writeoffs *writeoffsvc.Service,
	reminders *remindersvc.Service,
	clk clock.Clock,
	locker *lock.Locker,
	cfg Config,
	logger *zap.Logger,
) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if len(cfg.ReminderDays) == 0 {
		cfg.ReminderDays = []int{1, 3, 7}
	}

	h := &Handler{
		subscriptions: subscriptions,
		savings:       savings,
		writeoffs:     writeoffs,
		reminders:     reminders,
		clk:           clk,
		locker:        locker,
		logger:        logger,
		timeout:       cfg.Timeout,
		reminderDays:  cfg.ReminderDays,
		minDebt:       cfg.MinDebt,
		statuses:      make(map[string]*JobStatus),
	}

	for _, name := range h.JobNames() {
		h.statuses[name] = &JobStatus{Name: name}
	}

	return h
}

func (h *Handler) JobNames() []string {
	return []string{
		JobCheckExpired,
		JobCheckExpiring,
		JobAutoRenewal,
		JobSavingsDaily,
		JobWriteOff,
		JobDebtReminders,
	}
}

// Statuses returns a snapshot of every job's run history.
func (h *Handler) Statuses() []JobStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]JobStatus, 0, len(h.statuses))
	for _, name := range h.JobNames() {
		out = append(out, *h.statuses[name])
	}
	return out
}

// RunJob executes one job under its lease. Returns ErrUnknownJob for a bad
// name and ErrLockNotAcquired when another worker holds the lease. Entity
// failures inside a job are counted in its summary, never returned.
func (h *Handler) RunJob(ctx context.Context, name string) error {
	var run func(context.Context) error

	switch name {
	case JobCheckExpired:
		run = h.checkExpired
	case JobCheckExpiring:
		run = h.checkExpiring
	case JobAutoRenewal:
		run = h.processAutoRenewal
	case JobSavingsDaily:
		run = h.processDailySavings
	case JobWriteOff:
		run = h.convertUnpaidSales
	case JobDebtReminders:
		run = h.sendDebtReminders
	default:
		return xerrors.ErrUnknownJob
	}

	lease, err := h.locker.Acquire(ctx, name)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrLockNotAcquired) {
			h.logger.Info("job lease held elsewhere, skipping run", zap.String("job", name))
		}
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lease.Release(releaseCtx); err != nil {
			h.logger.Warn("failed to release job lease", zap.String("job", name), zap.Error(err))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	err = run(runCtx)
	h.record(name, err)
	return err
}

func (h *Handler) record(name string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := h.statuses[name]
	status.Runs++
	status.LastRun = h.clk.Now()
	if err != nil {
		status.LastError = err.Error()
	} else {
		status.LastError = ""
	}
}

func (h *Handler) checkExpired(ctx context.Context) error {
	report, err := h.subscriptions.SweepExpired(ctx, h.clk.Now())
	if err != nil {
		return err
	}

	h.logger.Info("subscription expiry sweep complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed),
	)
	return nil
}

func (h *Handler) checkExpiring(ctx context.Context) error {
	now := h.clk.Now()

	for _, days := range h.reminderDays {
		report, err := h.subscriptions.SweepExpiring(ctx, now, days)
		if err != nil {
			return err
		}

		h.logger.Info("subscription reminder sweep complete",
			zap.Int("days_ahead", days),
			zap.Int("scanned", report.Scanned),
			zap.Int("notified", report.Notified),
		)
	}
	return nil
}

func (h *Handler) processAutoRenewal(ctx context.Context) error {
	report, err := h.subscriptions.SweepAutoRenewal(ctx, h.clk.Now())
	if err != nil {
		return err
	}

	h.logger.Info("subscription auto-renewal sweep complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("updated", report.Updated),
		zap.Int("notified", report.Notified),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return nil
}

func (h *Handler) processDailySavings(ctx context.Context) error {
	report, err := h.savings.ProcessDaily(ctx, h.clk.Now())
	if err != nil {
		return err
	}

	h.logger.Info("daily savings run complete",
		zap.Int("processed", report.Processed),
		zap.Int("skipped", report.Skipped),
		zap.Int("withdrawn", report.Withdrawn),
		zap.Int("failed", report.Failed),
		zap.String("total_saved", report.TotalSaved.String()),
	)
	return nil
}

func (h *Handler) convertUnpaidSales(ctx context.Context) error {
	report, err := h.writeoffs.ConvertUnpaidSales(ctx, h.clk.Now())
	if err != nil {
		return err
	}

	h.logger.Info("receivables write-off sweep complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("converted", report.Converted),
		zap.Int("failed", report.Failed),
		zap.String("total_written_off", report.Total.String()),
	)
	return nil
}

func (h *Handler) sendDebtReminders(ctx context.Context) error {
	report, err := h.reminders.SendDebtReminders(ctx, h.clk.Now(), h.minDebt)
	if err != nil {
		return err
	}

	h.logger.Info("debt reminder sweep complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("notified", report.Notified),
		zap.Int("failed", report.Failed),
	)
	return nil
}
