// Package service contains the assignment coordinator: vendor pool filtering,
// fairness selection, atomic reservation and external synchronization.
package service

import (
	"context"
	"time"

	"leadrouter/internal/events"
	"leadrouter/internal/routing/domain"
	"leadrouter/internal/routing/repository"
	"leadrouter/internal/routing/taxonomy"
	"leadrouter/platform/apperr"
	"leadrouter/platform/config"
	"leadrouter/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the coordinator needs. Implemented by
// *repository.Repository; tests substitute an in-memory fake with the same
// conditional-write semantics.
type Store interface {
	GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateLeadCategory(ctx context.Context, id uuid.UUID, category string) error
	MarkLeadUnassigned(ctx context.Context, id uuid.UUID, reason string) error
	GetVendor(ctx context.Context, id uuid.UUID) (domain.Vendor, error)
	ListCandidateVendors(ctx context.Context) ([]domain.Vendor, error)
	GetAssignment(ctx context.Context, leadID uuid.UUID) (domain.Assignment, error)
	ReserveVendor(ctx context.Context, p repository.ReserveParams) (bool, error)
	ConfirmAssignment(ctx context.Context, leadID uuid.UUID, attempts int) error
	MarkAssignmentSyncFailed(ctx context.Context, leadID uuid.UUID, attempts int) error
}

// CRM sets lead ownership in the external system of record. Implementations
// must be idempotent from the caller's perspective: calling again with the
// same arguments after a timeout is safe.
type CRM interface {
	SetLeadOwner(ctx context.Context, externalLeadRef, externalUserID string) error
}

// AssignResult is the structured outcome of an assignment attempt. No path
// through Assign raises an unrecoverable fault; expected misses (no eligible
// vendor, deferred sync) resolve here, not as errors.
type AssignResult struct {
	Success  bool
	VendorID *uuid.UUID
	Reason   string
}

// Assignment outcome reasons.
const (
	ReasonAssigned         = "assigned"
	ReasonNoEligibleVendor = "no eligible vendor"
	ReasonAlreadyAssigned  = "assignment already exists"
	ReasonSyncDeferred     = "external sync failed, queued for reconciliation"
)

// Coordinator orchestrates lead assignment: category resolution, eligibility,
// fairness selection, atomic reservation and external synchronization.
type Coordinator struct {
	store    Store
	crm      CRM
	resolver *taxonomy.Resolver
	bus      events.Bus
	log      *logger.Logger

	syncMaxAttempts   int
	syncBackoffBase   time.Duration
	syncTimeout       time.Duration
	reserveMaxRetries int
	pendingRetryAge   time.Duration

	now func() time.Time
}

// NewCoordinator wires the assignment coordinator.
func NewCoordinator(store Store, crm CRM, resolver *taxonomy.Resolver, bus events.Bus, cfg config.RoutingConfig, syncTimeout time.Duration, log *logger.Logger) *Coordinator {
	return &Coordinator{
		store:             store,
		crm:               crm,
		resolver:          resolver,
		bus:               bus,
		log:               log,
		syncMaxAttempts:   cfg.GetSyncMaxAttempts(),
		syncBackoffBase:   cfg.GetSyncBackoffBase(),
		syncTimeout:       syncTimeout,
		reserveMaxRetries: cfg.GetReserveMaxRetries(),
		pendingRetryAge:   cfg.GetPendingRetryAge(),
		now:               time.Now,
	}
}

// Assign routes a lead to the single best-matching available vendor.
//
// The triggering event for a lead may be delivered more than once: an existing
// assignment in pending or confirmed state short-circuits to the existing
// outcome without selecting a vendor or crediting fairness again. A failed (or
// stale pending) assignment retries the external sync against the same vendor;
// reservations are never cancelled.
func (c *Coordinator) Assign(ctx context.Context, leadID uuid.UUID) (AssignResult, error) {
	lead, err := c.store.GetLead(ctx, leadID)
	if err != nil {
		return AssignResult{}, err
	}

	if existing, err := c.store.GetAssignment(ctx, leadID); err == nil {
		return c.resumeExisting(ctx, lead, existing)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return AssignResult{}, err
	}

	if _, known := c.resolver.KnownCategory(lead.CanonicalCategory); !known {
		category, confidence := c.resolver.Resolve(lead.SpecificService, lead.CanonicalCategory)
		if confidence.Low() {
			c.log.Debug("lead resolved to default category",
				"leadId", lead.ID, "rawService", lead.SpecificService)
		}
		if err := c.store.UpdateLeadCategory(ctx, lead.ID, category); err != nil {
			return AssignResult{}, err
		}
		lead.CanonicalCategory = category
	}

	for attempt := 0; attempt < c.reserveMaxRetries; attempt++ {
		eligible, err := c.eligibleVendors(ctx, lead)
		if err != nil {
			return AssignResult{}, err
		}

		if len(eligible) == 0 {
			if err := c.store.MarkLeadUnassigned(ctx, lead.ID, ReasonNoEligibleVendor); err != nil {
				return AssignResult{}, err
			}
			c.bus.Publish(ctx, events.LeadUnroutable{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    lead.ID,
				Category:  lead.CanonicalCategory,
				Reason:    ReasonNoEligibleVendor,
			})
			return AssignResult{Success: false, Reason: ReasonNoEligibleVendor}, nil
		}

		vendor, _ := SelectVendor(eligible)
		reserved, err := c.store.ReserveVendor(ctx, repository.ReserveParams{
			LeadID:                lead.ID,
			VendorID:              vendor.ID,
			ExpectedTotalAssigned: vendor.TotalAssigned,
			AssignedAt:            c.now(),
		})
		if err != nil {
			return AssignResult{}, err
		}
		if !reserved {
			// A concurrent assignment moved the counter; re-snapshot and re-select.
			continue
		}

		return c.syncReservation(ctx, lead, vendor)
	}

	return AssignResult{}, apperr.Conflict("vendor reservation lost the race too many times").WithOp("routing.Assign")
}

// resumeExisting handles duplicate triggers and retryable reservations.
func (c *Coordinator) resumeExisting(ctx context.Context, lead domain.Lead, existing domain.Assignment) (AssignResult, error) {
	vendorID := existing.VendorID

	switch existing.SyncStatus {
	case domain.SyncConfirmed:
		return AssignResult{Success: true, VendorID: &vendorID, Reason: ReasonAlreadyAssigned}, nil
	case domain.SyncPending:
		if c.now().Sub(existing.AssignedAt) < c.pendingRetryAge {
			// An inline assignment is (or was very recently) in flight.
			return AssignResult{Success: true, VendorID: &vendorID, Reason: ReasonAlreadyAssigned}, nil
		}
		// Stale pending reservation: a crash between reservation and sync.
		// The reservation stands; only the sync is retried.
	case domain.SyncFailed:
		// Reconciliation retry path.
	}

	vendor, err := c.store.GetVendor(ctx, vendorID)
	if err != nil {
		return AssignResult{}, err
	}
	return c.syncReservation(ctx, lead, vendor)
}

// syncReservation pushes the vendor ownership to the external system of
// record. The reservation and fairness counter are never rolled back on sync
// failure: the vendor keeps assignment credit even if the sync never
// succeeds, favoring long-run fairness over external-state accuracy.
func (c *Coordinator) syncReservation(ctx context.Context, lead domain.Lead, vendor domain.Vendor) (AssignResult, error) {
	vendorID := vendor.ID

	attempts, syncErr := c.syncWithRetry(ctx, lead, vendor)
	if syncErr == nil {
		if err := c.store.ConfirmAssignment(ctx, lead.ID, attempts); err != nil {
			return AssignResult{}, err
		}
		c.log.AssignmentEvent(lead.ID.String(), vendorID.String(), ReasonAssigned)
		c.bus.Publish(ctx, events.LeadAssigned{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			VendorID:  vendorID,
			Category:  lead.CanonicalCategory,
		})
		return AssignResult{Success: true, VendorID: &vendorID, Reason: ReasonAssigned}, nil
	}

	if err := c.store.MarkAssignmentSyncFailed(ctx, lead.ID, attempts); err != nil {
		return AssignResult{}, err
	}
	c.log.AssignmentEvent(lead.ID.String(), vendorID.String(), ReasonSyncDeferred)
	c.bus.Publish(ctx, events.AssignmentSyncFailed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		VendorID:  vendorID,
		Attempts:  attempts,
	})
	return AssignResult{Success: false, VendorID: &vendorID, Reason: ReasonSyncDeferred}, nil
}

// syncWithRetry calls the external collaborator with quadratic backoff, up to
// the configured attempt budget. Each attempt runs under a bounded timeout so
// the inline path stays bounded regardless of external responsiveness.
func (c *Coordinator) syncWithRetry(ctx context.Context, lead domain.Lead, vendor domain.Vendor) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= c.syncMaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, c.syncTimeout)
		err := c.crm.SetLeadOwner(callCtx, lead.ExternalRef, vendor.ExternalUserID)
		cancel()
		if err == nil {
			return attempt, nil
		}
		lastErr = err
		c.log.SyncRetry(lead.ID.String(), attempt, err)

		if attempt < c.syncMaxAttempts {
			delay := time.Duration(attempt*attempt) * c.syncBackoffBase
			select {
			case <-ctx.Done():
				return attempt, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return c.syncMaxAttempts, lastErr
}
