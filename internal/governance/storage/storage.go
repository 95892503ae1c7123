// Package storage defines persistence contracts for governance records.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/plumehq/plume/internal/governance/domain"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// SlotStore persists slot records. Writes replace the whole slot record;
// slots are single-writer so no field-level merging is needed.
type SlotStore interface {
	PutSlot(ctx context.Context, slot domain.Slot) error
	GetSlot(ctx context.Context, id string) (domain.Slot, error)
	ListSlotIDs(ctx context.Context) ([]string, error)
	// DeleteSlot removes a slot and cascades to its published content
	// records. Destroying a slot is an explicit operator action.
	DeleteSlot(ctx context.Context, id string) error
}

// ContentRecord is a published piece of content tied to a slot topic.
type ContentRecord struct {
	ID          string
	SlotID      string
	TopicTitle  string
	Body        string
	Corrected   bool
	PublishedAt time.Time
}

// ContentStore persists published content records.
type ContentStore interface {
	PutContent(ctx context.Context, record ContentRecord) error
	ListContentBySlot(ctx context.Context, slotID string) ([]ContentRecord, error)
}

// TelemetryEvent records a governance outcome for operational review.
type TelemetryEvent struct {
	SlotID    string
	Kind      string
	Detail    map[string]string
	Timestamp time.Time
}

// Telemetry event kinds emitted by the orchestrator.
const (
	EventPublishCommitted   = "publish_committed"
	EventViolationCorrected = "violation_corrected"
	EventViolationRejected  = "violation_rejected"
	EventTrustStepAdvanced  = "trust_step_advanced"
	EventDailyGateBlocked   = "daily_gate_blocked"
	EventSlotReset          = "slot_reset"
)

// TelemetryStore persists governance telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
	ListTelemetryEvents(ctx context.Context, slotID string, limit int) ([]TelemetryEvent, error)
}

// Store is the full governance persistence surface.
type Store interface {
	SlotStore
	ContentStore
	TelemetryStore
}
