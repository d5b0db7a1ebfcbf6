// Package scheduler provides the asynq-backed job transport for the routing
// core: the worker consuming assignment and reconciliation tasks, and the
// client that enqueues them.
package scheduler

import (
	"context"
	"fmt"

	"leadrouter/internal/routing/reconcile"
	"leadrouter/internal/routing/service"
	"leadrouter/platform/apperr"
	"leadrouter/platform/config"
	"leadrouter/platform/logger"
	"leadrouter/platform/validator"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Assigner is the coordinator surface the worker drives.
type Assigner interface {
	Assign(ctx context.Context, leadID uuid.UUID) (service.AssignResult, error)
}

// Reconciler is the bulk job surface the worker drives.
type Reconciler interface {
	Run(ctx context.Context) (reconcile.Summary, error)
}

type Worker struct {
	server     *asynq.Server
	mux        *asynq.ServeMux
	assigner   Assigner
	reconciler Reconciler
	val        *validator.Validator
	log        *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, assigner Assigner, reconciler Reconciler, val *validator.Validator, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:     server,
		mux:        mux,
		assigner:   assigner,
		reconciler: reconciler,
		val:        val,
		log:        log,
	}

	mux.HandleFunc(TaskLeadAssign, w.handleLeadAssign)
	mux.HandleFunc(TaskReconcile, w.handleReconcile)

	return w, nil
}

func (w *Worker) handleLeadAssign(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadAssignPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := w.val.Struct(payload); err != nil {
		return fmt.Errorf("invalid lead assign payload: %v: %w", err, asynq.SkipRetry)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("parse lead id: %v: %w", err, asynq.SkipRetry)
	}

	result, err := w.assigner.Assign(ctx, leadID)
	if err != nil {
		// Transient failures (store, contention) surface here; asynq retries.
		return err
	}

	w.log.Info("lead assignment processed",
		"leadId", leadID,
		"success", result.Success,
		"reason", result.Reason)
	return nil
}

func (w *Worker) handleReconcile(ctx context.Context, task *asynq.Task) error {
	summary, err := w.reconciler.Run(ctx)
	if apperr.Is(err, apperr.KindConflict) {
		w.log.Warn("reconciliation already running, skipping trigger")
		return nil
	}
	if err != nil {
		return err
	}

	w.log.Info("reconciliation sweep finished",
		"totalConsidered", summary.TotalConsidered,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
