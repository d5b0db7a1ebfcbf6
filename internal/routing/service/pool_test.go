package service

import (
	"context"
	"testing"

	"leadrouter/internal/routing/domain"
)

func TestCategoryMatchesToleratesDrift(t *testing.T) {
	cases := []struct {
		name     string
		lead     string
		offered  []string
		expected bool
	}{
		{"exact", "Boat Maintenance", []string{"Boat Maintenance"}, true},
		{"case insensitive", "boat maintenance", []string{"BOAT MAINTENANCE"}, true},
		{"vendor entry broader", "Boat Maintenance", []string{"Boat Maintenance & Repair"}, true},
		{"lead broader", "Boat Maintenance & Repair", []string{"Boat Maintenance"}, true},
		{"unrelated", "Boat Maintenance", []string{"Marine Electronics"}, false},
		{"empty lead category", "", []string{"Boat Maintenance"}, false},
		{"empty vendor entries skipped", "Boat Maintenance", []string{"", "  "}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := categoryMatches(tc.lead, tc.offered); got != tc.expected {
				t.Fatalf("categoryMatches(%q, %v) = %v, want %v", tc.lead, tc.offered, got, tc.expected)
			}
		})
	}
}

func TestEligibleVendorsFiltersCategoryAndCoverage(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store, &fakeCRM{})

	lead := maintenanceLead()

	covered := zipVendor("33139")
	wrongCategory := zipVendor("33139")
	wrongCategory.ServiceCategories = []string{"Marine Electronics"}
	offCoverage := zipVendor("90210")
	inactive := zipVendor("33139")
	inactive.Active = false
	paused := zipVendor("33139")
	paused.AcceptingNewWork = false

	for _, v := range []domain.Vendor{covered, wrongCategory, offCoverage, inactive, paused} {
		store.putVendor(v)
	}

	eligible, err := c.eligibleVendors(context.Background(), lead)
	if err != nil {
		t.Fatalf("eligibleVendors: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != covered.ID {
		t.Fatalf("expected exactly the covered vendor, got %d vendors", len(eligible))
	}
}

func TestEligibleVendorsExcludesMalformedCoverageWithoutFailing(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store, &fakeCRM{})

	lead := maintenanceLead()

	malformed := zipVendor("33139")
	malformed.CoverageType = domain.CoverageType("planetary")
	healthy := nationalVendor()
	store.putVendor(malformed)
	store.putVendor(healthy)

	eligible, err := c.eligibleVendors(context.Background(), lead)
	if err != nil {
		t.Fatalf("expected malformed coverage to be diagnostic-only, got error %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != healthy.ID {
		t.Fatalf("expected only the healthy vendor to remain eligible")
	}
}
