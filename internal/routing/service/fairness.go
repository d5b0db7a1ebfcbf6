package service

import "leadrouter/internal/routing/domain"

// SelectVendor picks one vendor from the eligible set using load/recency
// ordering: smallest total_assigned first, ties broken by oldest
// last_assigned (never-assigned sorts first), remaining ties by vendor id.
// This converges to round-robin fairness without a rotating pointer and
// self-heals as vendors join or leave the pool.
//
// Selection operates on a snapshot; the caller must commit the matching
// counter increment through a conditional write so concurrent selections
// cannot both credit the same snapshot.
func SelectVendor(eligible []domain.Vendor) (domain.Vendor, bool) {
	if len(eligible) == 0 {
		return domain.Vendor{}, false
	}

	best := eligible[0]
	for _, v := range eligible[1:] {
		if lessLoaded(v, best) {
			best = v
		}
	}
	return best, true
}

func lessLoaded(a, b domain.Vendor) bool {
	if a.TotalAssigned != b.TotalAssigned {
		return a.TotalAssigned < b.TotalAssigned
	}

	switch {
	case a.LastAssigned == nil && b.LastAssigned != nil:
		return true
	case a.LastAssigned != nil && b.LastAssigned == nil:
		return false
	case a.LastAssigned != nil && b.LastAssigned != nil && !a.LastAssigned.Equal(*b.LastAssigned):
		return a.LastAssigned.Before(*b.LastAssigned)
	}

	// Stable key for determinism.
	return a.ID.String() < b.ID.String()
}
