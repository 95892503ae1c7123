// Package plan advances a slot's ordered topic plan.
//
// The tracker operates on a slot already held under the orchestrator's
// per-slot lock; none of these functions synchronize on their own.
package plan

import (
	"errors"
	"strings"
	"time"

	"github.com/plumehq/plume/internal/governance/domain"
)

var (
	// ErrSlotExhausted indicates every topic in the plan has been published.
	// The plan does not recycle; publishing resumes only after a reset or a
	// new plan is installed.
	ErrSlotExhausted = errors.New("topic plan is exhausted")
	// ErrResetUnconfirmed indicates a reset without explicit confirmation.
	ErrResetUnconfirmed = errors.New("slot reset requires confirmation")
	// ErrNoPlan indicates the slot has no topic plan installed yet.
	ErrNoPlan = errors.New("slot has no topic plan")
)

// ResetConfirmation carries the explicit upstream acknowledgement a reset
// requires. Resets are irreversible.
type ResetConfirmation struct {
	AcknowledgedBy string
}

// NextTopic returns the topic at the cursor, skipping forward past any
// already-published topics. It never returns a published topic.
func NextTopic(slot *domain.Slot) (domain.Topic, error) {
	if len(slot.Clusters) == 0 {
		return domain.Topic{}, ErrNoPlan
	}
	cursor, ok := nextUnpublished(slot, slot.Cursor)
	if !ok {
		return domain.Topic{}, ErrSlotExhausted
	}
	slot.Cursor = cursor
	topic, _ := slot.TopicAt(cursor)
	return topic, nil
}

// Advance marks the current topic published and moves the cursor to the
// next unpublished topic: first within the cluster, then to the next
// cluster. When no unpublished topic remains, the cursor parks past the
// end and subsequent NextTopic calls report exhaustion. The plan is never
// silently recycled.
func Advance(slot *domain.Slot, now time.Time) error {
	if len(slot.Clusters) == 0 {
		return ErrNoPlan
	}
	cursor, ok := nextUnpublished(slot, slot.Cursor)
	if !ok {
		return ErrSlotExhausted
	}

	topic := &slot.Clusters[cursor.Cluster].Topics[cursor.Topic]
	topic.Published = true
	topic.PublishedAt = now.UTC()

	if next, ok := nextUnpublished(slot, cursor); ok {
		slot.Cursor = next
	} else {
		// Park one past the last cluster to make exhaustion explicit.
		slot.Cursor = domain.Cursor{Cluster: len(slot.Clusters)}
	}
	return nil
}

// Reset unpublishes every topic and rewinds the cursor to the start.
// The confirmation must name who acknowledged the reset.
func Reset(slot *domain.Slot, confirm ResetConfirmation) error {
	if strings.TrimSpace(confirm.AcknowledgedBy) == "" {
		return ErrResetUnconfirmed
	}
	for i := range slot.Clusters {
		for j := range slot.Clusters[i].Topics {
			slot.Clusters[i].Topics[j].Published = false
			slot.Clusters[i].Topics[j].PublishedAt = time.Time{}
		}
	}
	slot.Cursor = domain.Cursor{}
	return nil
}

// GateOpen reports whether the slot may start a new action today. A slot
// gets one successful action per tenant-local calendar day unless the
// caller holds an elevated bypass.
func GateOpen(slot *domain.Slot, today string, bypass bool) bool {
	if bypass {
		return true
	}
	return slot.LastActionDate != today
}

// nextUnpublished finds the first unpublished topic at or after from,
// scanning the rest of the cluster and then the following clusters.
func nextUnpublished(slot *domain.Slot, from domain.Cursor) (domain.Cursor, bool) {
	if from.Cluster < 0 {
		from = domain.Cursor{}
	}
	for ci := from.Cluster; ci < len(slot.Clusters); ci++ {
		start := 0
		if ci == from.Cluster {
			start = from.Topic
			if start < 0 {
				start = 0
			}
		}
		for ti := start; ti < len(slot.Clusters[ci].Topics); ti++ {
			if !slot.Clusters[ci].Topics[ti].Published {
				return domain.Cursor{Cluster: ci, Topic: ti}, true
			}
		}
	}
	return domain.Cursor{}, false
}
