// Package repository provides database operations for the routing bounded
// context: leads, vendors and assignments.
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
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMsg = "lead not found"

// Repository provides database operations for the routing context.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new routing repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	id, canonical_category, specific_service, zip, county, state,
	contact_name, contact_email, contact_phone, details,
	status, assigned_vendor_id, external_ref,
	estimated_value, priority, unassigned_reason,
	created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (domain.Lead, error) {
	var l domain.Lead
	var status string
	err := row.Scan(
		&l.ID, &l.CanonicalCategory, &l.SpecificService,
		&l.Location.Zip, &l.Location.County, &l.Location.State,
		&l.ContactName, &l.ContactEmail, &l.ContactPhone, &l.Details,
		&status, &l.AssignedVendorID, &l.ExternalRef,
		&l.EstimatedValue, &l.Priority, &l.UnassignedReason,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	l.Status = domain.LeadStatus(status)
	return l, nil
}

// GetLead loads a lead by id.
func (r *Repository) GetLead(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM routing_leads WHERE id = $1`

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, apperr.NotFound(leadNotFoundMsg)
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

// UpdateLeadCategory persists the resolved canonical category.
func (r *Repository) UpdateLeadCategory(ctx context.Context, id uuid.UUID, category string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE routing_leads SET canonical_category = $2, updated_at = now()
		WHERE id = $1
	`, id, category)
	if err != nil {
		return fmt.Errorf("update lead category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// MarkLeadUnassigned records that no vendor could be selected. The lead stays
// visible to the bulk reconciliation job.
func (r *Repository) MarkLeadUnassigned(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE routing_leads
		SET status = $2, unassigned_reason = $3, updated_at = now()
		WHERE id = $1
	`, id, domain.LeadStatusUnassigned, reason)
	if err != nil {
		return fmt.Errorf("mark lead unassigned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// UpdateLeadScore persists scoring results for reconciliation ordering and
// operator visibility.
func (r *Repository) UpdateLeadScore(ctx context.Context, id uuid.UUID, estimatedValue, priority float64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE routing_leads SET estimated_value = $2, priority = $3, updated_at = now()
		WHERE id = $1
	`, id, estimatedValue, priority)
	if err != nil {
		return fmt.Errorf("update lead score: %w", err)
	}
	return nil
}

// ListReconcilable returns leads that need (re)assignment: unassigned leads,
// leads whose assignment failed to sync, and assignments stuck pending longer
// than pendingBefore (crash recovery).
func (r *Repository) ListReconcilable(ctx context.Context, limit int, pendingBefore time.Time) ([]domain.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM routing_leads l
		LEFT JOIN routing_assignments a ON a.lead_id = l.id
		WHERE l.status = 'unassigned'
			OR a.sync_status = 'failed'
			OR (a.sync_status = 'pending' AND a.assigned_at < $2)
		ORDER BY l.priority DESC, l.created_at ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit, pendingBefore)
	if err != nil {
		return nil, fmt.Errorf("list reconcilable leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reconcilable lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return leads, nil
}
