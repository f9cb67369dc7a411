package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/spec-kit/correspondence-service/internal/config"
	"github.com/spec-kit/correspondence-service/internal/workflow"
)

// TaskDeadlineScan is the periodic sweep that reports overdue cases.
const TaskDeadlineScan = "deadline:scan"

// OverdueNotifier publishes overdue events for cases past their deadline.
type OverdueNotifier interface {
	NotifyOverdue(ctx context.Context, now time.Time) (int, error)
}

// DeadlineScanPayload optionally pins the instant a manual scan evaluates.
type DeadlineScanPayload struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

// DeadlineWorker runs the sweeper on asynq: a scheduler enqueues the scan and
// a server executes it, so only one replica handles each tick.
type DeadlineWorker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	cron      string
	notifier  OverdueNotifier
	clock     workflow.Clock
	log       *zap.Logger
}

// NewDeadlineWorker builds the worker; nothing runs until Start.
func NewDeadlineWorker(redisOpt asynq.RedisClientOpt, cfg config.JobsConfig, loc *time.Location, notifier OverdueNotifier, clock workflow.Clock, log *zap.Logger) *DeadlineWorker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if clock == nil {
		clock = workflow.SystemClock
	}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			"default": 1,
		},
	})
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: loc})

	return &DeadlineWorker{
		server:    server,
		scheduler: scheduler,
		cron:      cfg.DeadlineScanCron,
		notifier:  notifier,
		clock:     clock,
		log:       log,
	}
}

// Start registers the periodic scan and begins processing tasks.
func (w *DeadlineWorker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskDeadlineScan, w.HandleDeadlineScan)

	task, err := NewDeadlineScanTask(nil)
	if err != nil {
		return err
	}
	// Unique keeps overlapping ticks from stacking up behind a slow scan.
	if _, err := w.scheduler.Register(w.cron, task, asynq.Unique(time.Minute)); err != nil {
		return fmt.Errorf("register deadline scan: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	if err := w.server.Start(mux); err != nil {
		w.scheduler.Shutdown()
		return fmt.Errorf("start job server: %w", err)
	}
	w.log.Info("deadline worker started", zap.String("cron", w.cron))
	return nil
}

// Stop drains in-flight scans and stops scheduling new ones.
func (w *DeadlineWorker) Stop() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
}

// HandleDeadlineScan evaluates every pending case at the current time, or at
// the payload's as_of instant when present.
func (w *DeadlineWorker) HandleDeadlineScan(ctx context.Context, t *asynq.Task) error {
	now := w.clock.Now()
	if len(t.Payload()) > 0 {
		var payload DeadlineScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode %s payload: %v: %w", TaskDeadlineScan, err, asynq.SkipRetry)
		}
		if payload.AsOf != nil {
			now = *payload.AsOf
		}
	}

	count, err := w.notifier.NotifyOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("deadline scan: %w", err)
	}
	w.log.Info("deadline scan finished", zap.Int("overdue", count), zap.Time("as_of", now))
	return nil
}

// NewDeadlineScanTask builds a scan task. A nil asOf evaluates at run time.
func NewDeadlineScanTask(asOf *time.Time) (*asynq.Task, error) {
	if asOf == nil {
		return asynq.NewTask(TaskDeadlineScan, nil), nil
	}
	data, err := json.Marshal(DeadlineScanPayload{AsOf: asOf})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeadlineScan, data), nil
}
