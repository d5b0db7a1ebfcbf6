// Package reconcile implements the bulk reconciliation job: a periodic or
// on-demand sweep that (re)assigns unassigned leads and retries failed
// external syncs, highest priority first.
package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"

	"leadrouter/internal/events"
	"leadrouter/internal/routing/domain"
	"leadrouter/internal/routing/scoring"
	"leadrouter/internal/routing/service"
	"leadrouter/platform/apperr"
	"leadrouter/platform/logger"

	"github.com/google/uuid"
)

// Store lists the leads that need (re)assignment and persists their scores.
type Store interface {
	ListReconcilable(ctx context.Context, limit int, pendingBefore time.Time) ([]domain.Lead, error)
	UpdateLeadScore(ctx context.Context, id uuid.UUID, estimatedValue, priority float64) error
}

// Assigner is the assignment coordinator surface the job drives. Each call
// carries the coordinator's own atomicity and idempotency guarantees, which
// makes re-running the job safe at any time.
type Assigner interface {
	Assign(ctx context.Context, leadID uuid.UUID) (service.AssignResult, error)
}

// Summary aggregates one reconciliation run. Leads with no eligible vendor
// are considered but counted neither succeeded nor failed: they are an
// expected outcome and will simply be considered again next run.
type Summary struct {
	TotalConsidered int
	Succeeded       int
	Failed          int
}

// Job is the bulk reconciliation sweep. It is single-flight: a Run invoked
// while another is in progress is rejected, never interleaved, so fairness
// credit cannot be double-counted.
type Job struct {
	store    Store
	assigner Assigner
	scorer   *scoring.Scorer
	bus      events.Bus
	log      *logger.Logger

	batchSize       int
	pendingRetryAge time.Duration

	mu  sync.Mutex
	now func() time.Time
}

// NewJob wires the reconciliation job.
func NewJob(store Store, assigner Assigner, scorer *scoring.Scorer, bus events.Bus, batchSize int, pendingRetryAge time.Duration, log *logger.Logger) *Job {
	return &Job{
		store:           store,
		assigner:        assigner,
		scorer:          scorer,
		bus:             bus,
		log:             log,
		batchSize:       batchSize,
		pendingRetryAge: pendingRetryAge,
		now:             time.Now,
	}
}

// Run scans reconcilable leads, orders them by priority descending then
// created_at ascending, and assigns each in turn. A concurrent Run returns a
// Conflict error without touching any lead.
func (j *Job) Run(ctx context.Context) (Summary, error) {
	if !j.mu.TryLock() {
		return Summary{}, apperr.Conflict("reconciliation already running").WithOp("reconcile.Run")
	}
	defer j.mu.Unlock()

	pendingBefore := j.now().Add(-j.pendingRetryAge)
	leads, err := j.store.ListReconcilable(ctx, j.batchSize, pendingBefore)
	if err != nil {
		return Summary{}, err
	}

	// Scores are recomputed per run so taxonomy/value table changes take
	// effect without a separate backfill. Persisting them is best effort.
	scores := make(map[uuid.UUID]scoring.Result, len(leads))
	for _, lead := range leads {
		result := j.scorer.Score(lead)
		scores[lead.ID] = result
		if err := j.store.UpdateLeadScore(ctx, lead.ID, result.EstimatedValue, result.Priority); err != nil {
			j.log.DatabaseError("update lead score", err)
		}
	}

	sort.SliceStable(leads, func(a, b int) bool {
		pa, pb := scores[leads[a].ID].Priority, scores[leads[b].ID].Priority
		if pa != pb {
			return pa > pb
		}
		return leads[a].CreatedAt.Before(leads[b].CreatedAt)
	})

	summary := Summary{TotalConsidered: len(leads)}
	for _, lead := range leads {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		result, err := j.assigner.Assign(ctx, lead.ID)
		switch {
		case err != nil:
			summary.Failed++
			j.log.Error("reconciliation assign failed", "leadId", lead.ID, "error", err)
		case result.Success:
			summary.Succeeded++
		case result.Reason == service.ReasonNoEligibleVendor:
			// Expected miss; considered only.
		default:
			summary.Failed++
		}
	}

	j.log.Info("reconciliation completed",
		"totalConsidered", summary.TotalConsidered,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed)

	j.bus.Publish(ctx, events.ReconciliationCompleted{
		BaseEvent:       events.NewBaseEvent(),
		TotalConsidered: summary.TotalConsidered,
		Succeeded:       summary.Succeeded,
		Failed:          summary.Failed,
	})

	return summary, nil
}
