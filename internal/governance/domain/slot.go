package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/plumehq/plume/internal/platform/id"
)

// DateLayout is the date-only layout used for the daily gate.
const DateLayout = "2006-01-02"

// ActionStatus tracks where a slot is inside a publish action.
type ActionStatus int

const (
	// ActionIdle means no publish action is in flight.
	ActionIdle ActionStatus = iota
	// ActionGenerating means content generation is in progress.
	ActionGenerating
	// ActionRiskCheck means compliance evaluation is in progress.
	ActionRiskCheck
	// ActionScheduling means the publish is being scheduled.
	ActionScheduling
	// ActionCompleted means the most recent action finished.
	ActionCompleted
)

func (s ActionStatus) String() string {
	switch s {
	case ActionIdle:
		return "IDLE"
	case ActionGenerating:
		return "GENERATING"
	case ActionRiskCheck:
		return "RISK_CHECK"
	case ActionScheduling:
		return "SCHEDULING"
	case ActionCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrEmptySlotID indicates a missing slot identifier.
	ErrEmptySlotID = errors.New("slot id is required")
	// ErrEmptyTenantID indicates a missing tenant identifier.
	ErrEmptyTenantID = errors.New("tenant id is required")
)

// Cursor points at the next unpublished topic in a slot's plan.
type Cursor struct {
	Cluster int
	Topic   int
}

// Slot is a tenant's independent content channel. It owns its topic plan,
// trust counters, and trust step. Each slot is single-writer.
type Slot struct {
	ID       string
	TenantID string
	Timezone string // IANA name; empty means UTC

	Clusters []TopicCluster
	Cursor   Cursor

	Counters TrustCounters
	Step     TrustStep

	ActionStatus   ActionStatus
	LastActionDate string // date-only, tenant-local

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSlotInput describes the metadata needed to create a slot.
type NewSlotInput struct {
	TenantID string
	Timezone string
}

// NewSlot creates a slot with an empty topic plan at trust step 1.
// Clusters are installed later by the planning step via PlanTopics.
func NewSlot(input NewSlotInput, now func() time.Time, idGenerator func() (string, error)) (Slot, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	tenantID := strings.TrimSpace(input.TenantID)
	if tenantID == "" {
		return Slot{}, ErrEmptyTenantID
	}

	slotID, err := idGenerator()
	if err != nil {
		return Slot{}, fmt.Errorf("generate slot id: %w", err)
	}

	createdAt := now().UTC()
	return Slot{
		ID:           slotID,
		TenantID:     tenantID,
		Timezone:     strings.TrimSpace(input.Timezone),
		Step:         Step1,
		Counters:     TrustCounters{AccountStatus: StatusNormal},
		ActionStatus: ActionIdle,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}, nil
}

// PlanTopics installs a validated topic plan and rewinds the cursor.
func (s *Slot) PlanTopics(clusters []TopicCluster) error {
	if len(clusters) == 0 {
		return ErrEmptyCluster
	}
	for i, cluster := range clusters {
		if err := cluster.Validate(); err != nil {
			return fmt.Errorf("cluster %d: %w", i, err)
		}
	}
	s.Clusters = clusters
	s.Cursor = Cursor{}
	return nil
}

// DayKey formats now as a tenant-local calendar date for the daily gate.
// Unknown timezones fall back to UTC rather than failing the action.
func (s Slot) DayKey(now time.Time) string {
	loc := time.UTC
	if s.Timezone != "" {
		if parsed, err := time.LoadLocation(s.Timezone); err == nil {
			loc = parsed
		}
	}
	return now.In(loc).Format(DateLayout)
}

// TopicAt returns the topic at the cursor position, if it exists.
func (s Slot) TopicAt(cursor Cursor) (Topic, bool) {
	if cursor.Cluster < 0 || cursor.Cluster >= len(s.Clusters) {
		return Topic{}, false
	}
	cluster := s.Clusters[cursor.Cluster]
	if cursor.Topic < 0 || cursor.Topic >= len(cluster.Topics) {
		return Topic{}, false
	}
	return cluster.Topics[cursor.Topic], true
}
