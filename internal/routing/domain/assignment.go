package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus tracks synchronization of an assignment to the external
// system of record.
type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncConfirmed SyncStatus = "confirmed"
	SyncFailed    SyncStatus = "failed"
)

// Assignment records the reservation of a lead for a vendor. It is created in
// the same transaction as the vendor fairness-counter increment, before any
// external call, so a crash mid-sync leaves a recoverable pending record.
// Reservations are never cancelled, only retried.
type Assignment struct {
	LeadID       uuid.UUID
	VendorID     uuid.UUID
	AssignedAt   time.Time
	SyncStatus   SyncStatus
	AttemptCount int
}
