package repository

import (
	"context"
	"errors"
	"fmt"

	"leadrouter/internal/routing/domain"
	"leadrouter/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const vendorNotFoundMsg = "vendor not found"

const vendorColumns = `
	id, name, service_categories, coverage_type, coverage_set,
	active, accepting_new_work, external_user_id,
	total_assigned, last_assigned, created_at, updated_at
`

func scanVendor(row rowScanner) (domain.Vendor, error) {
	var v domain.Vendor
	var coverageType string
	err := row.Scan(
		&v.ID, &v.Name, &v.ServiceCategories, &coverageType, &v.CoverageSet,
		&v.Active, &v.AcceptingNewWork, &v.ExternalUserID,
		&v.TotalAssigned, &v.LastAssigned, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return domain.Vendor{}, err
	}
	v.CoverageType = domain.CoverageType(coverageType)
	return v, nil
}

// GetVendor loads a vendor by id.
func (r *Repository) GetVendor(ctx context.Context, id uuid.UUID) (domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM routing_vendors WHERE id = $1`

	vendor, err := scanVendor(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Vendor{}, apperr.NotFound(vendorNotFoundMsg)
	}
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("get vendor: %w", err)
	}
	return vendor, nil
}

// ListCandidateVendors returns a snapshot of all vendors that are active and
// accepting new work. Category and coverage predicates run in the service
// layer; fairness counters in the snapshot anchor the conditional reservation.
func (r *Repository) ListCandidateVendors(ctx context.Context) ([]domain.Vendor, error) {
	query := `
		SELECT ` + vendorColumns + `
		FROM routing_vendors
		WHERE active = true AND accepting_new_work = true
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list candidate vendors: %w", err)
	}
	defer rows.Close()

	vendors := make([]domain.Vendor, 0)
	for rows.Next() {
		vendor, err := scanVendor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate vendor: %w", err)
		}
		vendors = append(vendors, vendor)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return vendors, nil
}
