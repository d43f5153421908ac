// Package scheduler is the C6 cron table: a robfig/cron/v3 schedule drives
// scan_* invocations, batch recalculations, and digest generation
// (spec.md §4.5). Every run is wrapped in an audit record created before
// the job starts and updated once it finishes, and a lifecycle event is
// broadcast on both transitions — the same "wrap every unit of work in a
// fresh record and a status event" practice the teacher's worker pool
// applies to alert sessions (pkg/queue/pool.go), generalized here from a
// pulled work queue to a cron table.
package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/a96506/odoo-ai-platform-sub000/pkg/audit"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/config"
	"github.com/a96506/odoo-ai-platform-sub000/pkg/events"
)

// JobFunc is one scheduled unit of work. detail is a short human-readable
// summary persisted in the audit row's output snapshot and broadcast in
// the lifecycle event (e.g. "12 lines auto-matched").
type JobFunc func(ctx context.Context) (detail string, err error)

// Scheduler owns the cron table and the audit/lifecycle wrapping every
// registered job runs inside.
type Scheduler struct {
	cron *cron.Cron
	logs audit.AuditLogStore
	pub  *events.Publisher
	log  *zap.Logger
	now  func() time.Time
}

// New creates a Scheduler. pub may be nil if no dashboard broadcast is
// wanted (e.g. in tests).
func New(logs audit.AuditLogStore, pub *events.Publisher, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		cron: cron.New(),
		logs: logs,
		pub:  pub,
		log:  log,
		now:  time.Now,
	}
}

// Register schedules job to run on cronExpr under the given name. Returns
// an error if cronExpr fails to parse.
func (s *Scheduler) Register(name, cronExpr string, job JobFunc) error {
	_, err := s.cron.AddFunc(cronExpr, func() { s.runJob(name, job) })
	return err
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop halts the cron table and waits for any running job to finish.
func (s *Scheduler) Stop() { <-s.cron.Stop().Done() }

// RunNow executes job under name immediately, outside the cron table.
// Used by the operator API to trigger an on-demand scan.
func (s *Scheduler) RunNow(name string, job JobFunc) { s.runJob(name, job) }

func (s *Scheduler) runJob(name string, job JobFunc) {
	ctx := context.Background()
	started := s.now()

	log := &audit.AuditLog{
		ID:             uuid.NewString(),
		Timestamp:      started,
		AutomationType: "scheduler:" + name,
		ActionName:     name,
		Status:         audit.AuditStatusPending,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		s.log.Error("failed to create scheduler audit log", zap.String("job", name), zap.Error(err))
	}
	s.publish(name, "started", "")

	detail, err := job(ctx)

	finished := s.now()
	log.ExecutedAt = &finished
	if err != nil {
		msg := err.Error()
		log.Status = audit.AuditStatusFailed
		log.ErrorMessage = &msg
		s.log.Error("scheduler job failed", zap.String("job", name), zap.Error(err))
	} else {
		log.Status = audit.AuditStatusExecuted
		log.OutputSnapshot = map[string]interface{}{"detail": detail}
	}
	if updateErr := s.logs.Update(ctx, log); updateErr != nil {
		s.log.Error("failed to update scheduler audit log", zap.String("job", name), zap.Error(updateErr))
	}

	status := "completed"
	if err != nil {
		status = "failed"
		detail = err.Error()
	}
	s.publish(name, status, detail)
}

func (s *Scheduler) publish(name, status, detail string) {
	if s.pub == nil {
		return
	}
	s.pub.PublishSchedulerRun(events.SchedulerRunPayload{JobName: name, Status: status, Detail: detail})
}

// RegisterDefaults wires the named jobs spec.md §4.5 and the scheduler
// config's cron fields describe. A nil entry in jobs is skipped, letting
// callers register only the automations they've built so far.
func RegisterDefaults(s *Scheduler, cfg *config.SchedulerConfig, jobs map[string]JobFunc) error {
	named := []struct {
		name string
		cron string
	}{
		{"bank_scan", cfg.BankScanCron},
		{"dedup_sweep", cfg.DedupSweepCron},
		{"credit_recalc", cfg.CreditRecalcCron},
		{"daily_digest", cfg.DailyDigestCron},
		{"supplier_risk", cfg.SupplierRiskCron},
		{"suspension_timeout_sweep", cfg.SuspensionTimeoutCron},
		{"cashflow_refresh", cfg.CashflowRefreshCron},
		{"month_end_reopen_sweep", cfg.MonthEndReopenCron},
		{"stale_lead_sweep", cfg.StaleLeadSweepCron},
		{"sales_pipeline_forecast", cfg.SalesPipelineForecastCron},
		{"purchase_reorder_sweep", cfg.PurchaseReorderSweepCron},
	}
	for _, n := range named {
		job, ok := jobs[n.name]
		if !ok || job == nil {
			continue
		}
		if err := s.Register(n.name, n.cron, job); err != nil {
			return err
		}
	}
	return nil
}
