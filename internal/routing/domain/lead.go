// Package domain provides core business types and rules for the routing
// bounded context.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// LeadStatus is the local lifecycle state of a lead.
type LeadStatus string

const (
	LeadStatusUnassigned        LeadStatus = "unassigned"
	LeadStatusPendingAssignment LeadStatus = "pending_assignment"
	LeadStatusAssigned          LeadStatus = "assigned"
	LeadStatusFailed            LeadStatus = "failed"
)

var knownLeadStatuses = map[LeadStatus]struct{}{
	LeadStatusUnassigned:        {},
	LeadStatusPendingAssignment: {},
	LeadStatusAssigned:          {},
	LeadStatusFailed:            {},
}

// IsKnownLeadStatus reports whether the status is one of the lifecycle states.
func IsKnownLeadStatus(status LeadStatus) bool {
	_, ok := knownLeadStatuses[status]
	return ok
}

// Location is the geographic anchor of a lead used for coverage evaluation.
type Location struct {
	Zip    string
	County string
	State  string
}

// Lead is an inbound service request awaiting (or holding) a vendor assignment.
// Leads are created by the ingestion collaborator; this core only advances
// their status and assignment fields.
type Lead struct {
	ID                uuid.UUID
	CanonicalCategory string
	SpecificService   string
	Location          Location
	ContactName       string
	ContactEmail      string
	ContactPhone      string
	Details           string
	Status            LeadStatus
	AssignedVendorID  *uuid.UUID
	ExternalRef       string
	EstimatedValue    float64
	Priority          float64
	UnassignedReason  *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
