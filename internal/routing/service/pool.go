package service

import (
	"context"
	"strings"

	"leadrouter/internal/routing/coverage"
	"leadrouter/internal/routing/domain"
)

// eligibleVendors computes the unordered eligible set for a lead:
// active ∧ accepting new work ∧ category match ∧ geographic coverage.
// Ordering is the fairness selector's job.
func (c *Coordinator) eligibleVendors(ctx context.Context, lead domain.Lead) ([]domain.Vendor, error) {
	candidates, err := c.store.ListCandidateVendors(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]domain.Vendor, 0, len(candidates))
	for _, vendor := range candidates {
		if !categoryMatches(lead.CanonicalCategory, vendor.ServiceCategories) {
			continue
		}
		for _, problem := range coverage.Diagnose(vendor) {
			c.log.CoverageDiagnostic(vendor.ID.String(), problem)
		}
		if !coverage.Covers(vendor, lead.Location) {
			continue
		}
		eligible = append(eligible, vendor)
	}
	return eligible, nil
}

// categoryMatches tolerates minor taxonomy drift: the lead's canonical
// category matches a vendor entry when either string case-insensitively
// contains the other.
func categoryMatches(canonical string, vendorCategories []string) bool {
	lead := strings.ToLower(strings.TrimSpace(canonical))
	if lead == "" {
		return false
	}
	for _, entry := range vendorCategories {
		offered := strings.ToLower(strings.TrimSpace(entry))
		if offered == "" {
			continue
		}
		if strings.Contains(offered, lead) || strings.Contains(lead, offered) {
			return true
		}
	}
	return false
}
