package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadrouter/internal/routing/domain"
	"leadrouter/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const assignmentNotFoundMsg = "assignment not found"

// GetAssignment loads the assignment for a lead, if one exists.
func (r *Repository) GetAssignment(ctx context.Context, leadID uuid.UUID) (domain.Assignment, error) {
	var a domain.Assignment
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT lead_id, vendor_id, assigned_at, sync_status, attempt_count
		FROM routing_assignments
		WHERE lead_id = $1
	`, leadID).Scan(&a.LeadID, &a.VendorID, &a.AssignedAt, &status, &a.AttemptCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, apperr.NotFound(assignmentNotFoundMsg)
	}
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("get assignment: %w", err)
	}
	a.SyncStatus = domain.SyncStatus(status)
	return a, nil
}

// ReserveParams carries the conditional reservation of a vendor for a lead.
// ExpectedTotalAssigned is the fairness counter read in the selection
// snapshot; the reservation only commits if it is still current.
type ReserveParams struct {
	LeadID                uuid.UUID
	VendorID              uuid.UUID
	ExpectedTotalAssigned int64
	AssignedAt            time.Time
}

// ReserveVendor atomically increments the vendor's fairness counter, creates
// the pending assignment record and transitions the lead to
// pending_assignment — all in one transaction, before any external call.
// It returns false without side effects when the counter moved since the
// snapshot was taken (a concurrent assignment won the race).
func (r *Repository) ReserveVendor(ctx context.Context, p ReserveParams) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("reserve vendor: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE routing_vendors
		SET total_assigned = total_assigned + 1, last_assigned = $3, updated_at = $3
		WHERE id = $1 AND total_assigned = $2
	`, p.VendorID, p.ExpectedTotalAssigned, p.AssignedAt)
	if err != nil {
		return false, fmt.Errorf("reserve vendor: increment counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Counter moved since the snapshot; caller re-selects.
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO routing_assignments (lead_id, vendor_id, assigned_at, sync_status, attempt_count)
		VALUES ($1, $2, $3, $4, 0)
	`, p.LeadID, p.VendorID, p.AssignedAt, domain.SyncPending)
	if err != nil {
		return false, fmt.Errorf("reserve vendor: create assignment: %w", err)
	}

	tag, err = tx.Exec(ctx, `
		UPDATE routing_leads
		SET status = $2, assigned_vendor_id = $3, unassigned_reason = NULL, updated_at = $4
		WHERE id = $1
	`, p.LeadID, domain.LeadStatusPendingAssignment, p.VendorID, p.AssignedAt)
	if err != nil {
		return false, fmt.Errorf("reserve vendor: transition lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, apperr.NotFound(leadNotFoundMsg)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("reserve vendor: commit: %w", err)
	}
	return true, nil
}

// ConfirmAssignment marks the external sync confirmed and the lead assigned.
// attempts is the number of external calls made in this sync cycle.
func (r *Repository) ConfirmAssignment(ctx context.Context, leadID uuid.UUID, attempts int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("confirm assignment: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE routing_assignments
		SET sync_status = $2, attempt_count = attempt_count + $3
		WHERE lead_id = $1
	`, leadID, domain.SyncConfirmed, attempts)
	if err != nil {
		return fmt.Errorf("confirm assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMsg)
	}

	_, err = tx.Exec(ctx, `
		UPDATE routing_leads SET status = $2, updated_at = now() WHERE id = $1
	`, leadID, domain.LeadStatusAssigned)
	if err != nil {
		return fmt.Errorf("confirm assignment: transition lead: %w", err)
	}

	return tx.Commit(ctx)
}

// MarkAssignmentSyncFailed records exhausted external sync retries. The
// reservation and fairness credit are retained; the bulk reconciliation job
// retries the sync later with the same vendor.
func (r *Repository) MarkAssignmentSyncFailed(ctx context.Context, leadID uuid.UUID, attempts int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("mark sync failed: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE routing_assignments
		SET sync_status = $2, attempt_count = attempt_count + $3
		WHERE lead_id = $1
	`, leadID, domain.SyncFailed, attempts)
	if err != nil {
		return fmt.Errorf("mark sync failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(assignmentNotFoundMsg)
	}

	_, err = tx.Exec(ctx, `
		UPDATE routing_leads SET status = $2, updated_at = now() WHERE id = $1
	`, leadID, domain.LeadStatusFailed)
	if err != nil {
		return fmt.Errorf("mark sync failed: transition lead: %w", err)
	}

	return tx.Commit(ctx)
}
