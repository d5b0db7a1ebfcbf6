package taxonomy

import "testing"

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	r, err := NewResolver()
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	return r
}

func TestHintExactMatchWinsOverEverything(t *testing.T) {
	r := newTestResolver(t)

	category, confidence := r.Resolve("barnacle cleaning", "boat detailing")
	if category != "Boat Detailing" {
		t.Fatalf("expected hint to win, got %q", category)
	}
	if confidence != ConfidenceExact {
		t.Fatalf("expected exact confidence, got %q", confidence)
	}
}

func TestCuratedSpecificServiceMatch(t *testing.T) {
	r := newTestResolver(t)

	category, confidence := r.Resolve("Bottom Painting", "")
	if category != "Boat Maintenance" {
		t.Fatalf("expected curated match to Boat Maintenance, got %q", category)
	}
	if confidence != ConfidenceCurated {
		t.Fatalf("expected curated confidence, got %q", confidence)
	}
}

func TestBarnacleCleaningResolvesViaKeyword(t *testing.T) {
	r := newTestResolver(t)

	category, confidence := r.Resolve("barnacle cleaning", "")
	if category != "Boat Maintenance" {
		t.Fatalf("expected keyword match to Boat Maintenance, got %q", category)
	}
	if confidence != ConfidenceKeyword {
		t.Fatalf("expected keyword confidence, got %q", confidence)
	}
}

func TestLongerKeywordIsNotShadowedByShorterOne(t *testing.T) {
	r := newTestResolver(t)

	// Contains both "boat lift" (Dock & Lift Services) and the shorter
	// "repair" (Boat Repair); longest-first must pick the former.
	category, _ := r.Resolve("boat lift repair quote", "")
	if category != "Dock & Lift Services" {
		t.Fatalf("expected longest keyword to win, got %q", category)
	}
}

func TestUnresolvableFallsBackToDefaultWithLowConfidence(t *testing.T) {
	r := newTestResolver(t)

	category, confidence := r.Resolve("quantum flux capacitor", "")
	if category != r.DefaultCategory() {
		t.Fatalf("expected default category, got %q", category)
	}
	if !confidence.Low() {
		t.Fatalf("expected low confidence flag on default resolution")
	}
}

func TestKnownCategoryReturnsCanonicalSpelling(t *testing.T) {
	r := newTestResolver(t)

	canonical, ok := r.KnownCategory("  boat maintenance ")
	if !ok || canonical != "Boat Maintenance" {
		t.Fatalf("expected canonical spelling, got %q ok=%v", canonical, ok)
	}
	if _, ok := r.KnownCategory("underwater basket weaving"); ok {
		t.Fatalf("expected unknown category to be rejected")
	}
}
