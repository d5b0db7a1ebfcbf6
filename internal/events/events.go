// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadrouter/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Routing Domain Events
// =============================================================================

// LeadAssigned is published when a lead has been reserved for a vendor and
// the external system of record confirmed the ownership change. Notification
// collaborators subscribe to this to contact the vendor.
type LeadAssigned struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	VendorID uuid.UUID `json:"vendorId"`
	Category string    `json:"category"`
}

func (e LeadAssigned) EventName() string { return "routing.lead.assigned" }

// LeadUnroutable is published when a lead has no eligible vendor. This is an
// expected outcome, not an error; the lead stays unassigned for reconciliation.
type LeadUnroutable struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	Category string    `json:"category"`
	Reason   string    `json:"reason"`
}

func (e LeadUnroutable) EventName() string { return "routing.lead.unroutable" }

// AssignmentSyncFailed is published when the external ownership sync exhausted
// its retries. The local reservation is retained; reconciliation retries later.
type AssignmentSyncFailed struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	VendorID uuid.UUID `json:"vendorId"`
	Attempts int       `json:"attempts"`
}

func (e AssignmentSyncFailed) EventName() string { return "routing.assignment.sync_failed" }

// ReconciliationCompleted is published after a bulk reconciliation run.
type ReconciliationCompleted struct {
	BaseEvent
	TotalConsidered int `json:"totalConsidered"`
	Succeeded       int `json:"succeeded"`
	Failed          int `json:"failed"`
}

func (e ReconciliationCompleted) EventName() string { return "routing.reconciliation.completed" }
