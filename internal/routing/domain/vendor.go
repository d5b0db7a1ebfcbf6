package domain

import (
	"time"

	"github.com/google/uuid"
)

// CoverageType is the geographic granularity at which a vendor declares
// its service area.
type CoverageType string

const (
	CoverageZip      CoverageType = "zip"
	CoverageCounty   CoverageType = "county"
	CoverageState    CoverageType = "state"
	CoverageNational CoverageType = "national"
	CoverageGlobal   CoverageType = "global"
)

var knownCoverageTypes = map[CoverageType]struct{}{
	CoverageZip:      {},
	CoverageCounty:   {},
	CoverageState:    {},
	CoverageNational: {},
	CoverageGlobal:   {},
}

// IsKnownCoverageType reports whether the coverage type is recognized.
func IsKnownCoverageType(t CoverageType) bool {
	_, ok := knownCoverageTypes[t]
	return ok
}

// Vendor is a marketplace service provider. TotalAssigned and LastAssigned
// are the fairness counters; they are the only vendor fields this core
// mutates, and TotalAssigned is monotonic non-decreasing.
type Vendor struct {
	ID                uuid.UUID
	Name              string
	ServiceCategories []string
	CoverageType      CoverageType
	CoverageSet       []string
	Active            bool
	AcceptingNewWork  bool
	ExternalUserID    string
	TotalAssigned     int64
	LastAssigned      *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
