// Package coverage evaluates whether a vendor's declared geography covers a
// lead's location. It is a pure predicate: malformed coverage data is treated
// as zero coverage and reported through Diagnose, never widened and never a
// panic.
package coverage

import (
	"fmt"
	"strings"

	"leadrouter/internal/routing/domain"
)

// Covers reports whether the vendor's service area includes the location.
func Covers(v domain.Vendor, loc domain.Location) bool {
	switch v.CoverageType {
	case domain.CoverageGlobal:
		return true
	case domain.CoverageNational:
		return strings.TrimSpace(loc.State) != ""
	case domain.CoverageState:
		return coversState(v.CoverageSet, loc)
	case domain.CoverageCounty:
		return coversCounty(v.CoverageSet, loc)
	case domain.CoverageZip:
		return coversZip(v.CoverageSet, loc)
	default:
		// Unknown coverage type: zero coverage.
		return false
	}
}

func coversState(entries []string, loc domain.Location) bool {
	state := normalize(loc.State)
	if state == "" {
		return false
	}
	for _, entry := range entries {
		if !isStateCode(entry) {
			continue
		}
		if normalize(entry) == state {
			return true
		}
	}
	return false
}

func coversCounty(entries []string, loc domain.Location) bool {
	county := normalize(loc.County)
	if county == "" {
		return false
	}
	state := normalize(loc.State)
	for _, entry := range entries {
		entryCounty, entryState, qualified, ok := splitCountyEntry(entry)
		if !ok {
			continue
		}
		if !qualified {
			// Legacy fallback: a bare county name matches on county alone,
			// regardless of the lead's state. Known ambiguity across
			// same-named counties; preserved deliberately.
			if entryCounty == county {
				return true
			}
			continue
		}
		if entryCounty == county && entryState == state {
			return true
		}
	}
	return false
}

func coversZip(entries []string, loc domain.Location) bool {
	zip := strings.TrimSpace(loc.Zip)
	if zip == "" {
		return false
	}
	for _, entry := range entries {
		if !isZip(entry) {
			continue
		}
		if strings.TrimSpace(entry) == zip {
			return true
		}
	}
	return false
}

// Diagnose returns human-readable problems with the vendor's coverage data:
// entries of the wrong shape for the declared coverage type, a non-empty set
// on national/global coverage, or an unrecognized coverage type. An empty
// result means the data is well formed.
func Diagnose(v domain.Vendor) []string {
	if !domain.IsKnownCoverageType(v.CoverageType) {
		return []string{fmt.Sprintf("unknown coverage type %q", v.CoverageType)}
	}

	var problems []string
	switch v.CoverageType {
	case domain.CoverageNational, domain.CoverageGlobal:
		if len(v.CoverageSet) > 0 {
			problems = append(problems, fmt.Sprintf("coverage_set has %d entries but coverage type is %s", len(v.CoverageSet), v.CoverageType))
		}
	case domain.CoverageZip:
		for _, entry := range v.CoverageSet {
			if !isZip(entry) {
				problems = append(problems, fmt.Sprintf("entry %q is not a zip code", entry))
			}
		}
	case domain.CoverageState:
		for _, entry := range v.CoverageSet {
			if !isStateCode(entry) {
				problems = append(problems, fmt.Sprintf("entry %q is not a state code", entry))
			}
		}
	case domain.CoverageCounty:
		for _, entry := range v.CoverageSet {
			if _, _, _, ok := splitCountyEntry(entry); !ok {
				problems = append(problems, fmt.Sprintf("entry %q is not a county entry", entry))
			}
		}
	}
	return problems
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// isZip accepts 5-digit zips with an optional +4 extension.
func isZip(entry string) bool {
	entry = strings.TrimSpace(entry)
	base, ext, hasExt := strings.Cut(entry, "-")
	if !allDigits(base) || len(base) != 5 {
		return false
	}
	if hasExt && (!allDigits(ext) || len(ext) != 4) {
		return false
	}
	return true
}

func isStateCode(entry string) bool {
	entry = strings.TrimSpace(entry)
	if len(entry) != 2 {
		return false
	}
	for _, r := range entry {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// splitCountyEntry parses "County" or "County, ST" entries. qualified is true
// when a state qualifier is present; ok is false for malformed entries.
func splitCountyEntry(entry string) (county, state string, qualified, ok bool) {
	name, st, hasState := strings.Cut(entry, ",")
	county = normalize(name)
	if county == "" {
		return "", "", false, false
	}
	if !hasState {
		return county, "", false, true
	}
	if !isStateCode(st) {
		return "", "", false, false
	}
	return county, normalize(st), true, true
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
