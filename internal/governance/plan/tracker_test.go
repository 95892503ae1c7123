package plan

import (
	"errors"
	"testing"
	"time"

	"github.com/plumehq/plume/internal/governance/domain"
)

func planSlot(t *testing.T) domain.Slot {
	t.Helper()
	slot, err := domain.NewSlot(domain.NewSlotInput{TenantID: "tenant-1"}, nil, nil)
	if err != nil {
		t.Fatalf("create slot: %v", err)
	}
	err = slot.PlanTopics([]domain.TopicCluster{
		{
			Category: "rehab",
			Topics: []domain.Topic{
				{Day: 1, Kind: domain.KindPillar, Title: "pillar a"},
				{Day: 2, Kind: domain.KindSatellite, Title: "satellite a1"},
			},
		},
		{
			Category: "nutrition",
			Topics: []domain.Topic{
				{Day: 1, Kind: domain.KindPillar, Title: "pillar b"},
			},
		},
	})
	if err != nil {
		t.Fatalf("plan topics: %v", err)
	}
	return slot
}

func TestNextTopicFollowsPlanOrder(t *testing.T) {
	slot := planSlot(t)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	want := []string{"pillar a", "satellite a1", "pillar b"}
	for _, title := range want {
		topic, err := NextTopic(&slot)
		if err != nil {
			t.Fatalf("next topic: %v", err)
		}
		if topic.Title != title {
			t.Fatalf("expected %q, got %q", title, topic.Title)
		}
		if err := Advance(&slot, now); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	if _, err := NextTopic(&slot); !errors.Is(err, ErrSlotExhausted) {
		t.Fatalf("expected exhaustion after last topic, got %v", err)
	}
	if err := Advance(&slot, now); !errors.Is(err, ErrSlotExhausted) {
		t.Fatalf("expected exhausted advance to fail, got %v", err)
	}
}

func TestAdvanceParksCursorPastEnd(t *testing.T) {
	slot := planSlot(t)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if err := Advance(&slot, now); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
	}

	if slot.Cursor.Cluster != len(slot.Clusters) {
		t.Fatalf("expected parked cursor, got %+v", slot.Cursor)
	}
	for _, cluster := range slot.Clusters {
		for _, topic := range cluster.Topics {
			if !topic.Published {
				t.Fatalf("expected all topics published, %q is not", topic.Title)
			}
			if topic.PublishedAt.IsZero() {
				t.Fatalf("expected publish time on %q", topic.Title)
			}
		}
	}
}

func TestNextTopicSkipsPublishedTopics(t *testing.T) {
	slot := planSlot(t)
	// Mark the first topic published out of band; the cursor still points at it.
	slot.Clusters[0].Topics[0].Published = true

	topic, err := NextTopic(&slot)
	if err != nil {
		t.Fatalf("next topic: %v", err)
	}
	if topic.Title != "satellite a1" {
		t.Fatalf("expected published topic skipped, got %q", topic.Title)
	}
	if slot.Cursor != (domain.Cursor{Cluster: 0, Topic: 1}) {
		t.Fatalf("expected healed cursor, got %+v", slot.Cursor)
	}
}

func TestNextTopicWithoutPlan(t *testing.T) {
	slot := domain.Slot{}
	if _, err := NextTopic(&slot); !errors.Is(err, ErrNoPlan) {
		t.Fatalf("expected ErrNoPlan, got %v", err)
	}
	if err := Advance(&slot, time.Now()); !errors.Is(err, ErrNoPlan) {
		t.Fatalf("expected ErrNoPlan, got %v", err)
	}
}

func TestResetRequiresAcknowledgement(t *testing.T) {
	slot := planSlot(t)
	now := time.Now()
	for i := 0; i < 3; i++ {
		if err := Advance(&slot, now); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	if err := Reset(&slot, ResetConfirmation{}); !errors.Is(err, ErrResetUnconfirmed) {
		t.Fatalf("expected ErrResetUnconfirmed, got %v", err)
	}
	if err := Reset(&slot, ResetConfirmation{AcknowledgedBy: "  "}); !errors.Is(err, ErrResetUnconfirmed) {
		t.Fatalf("expected blank acknowledgement to fail, got %v", err)
	}

	if err := Reset(&slot, ResetConfirmation{AcknowledgedBy: "operator-7"}); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if slot.Cursor != (domain.Cursor{}) {
		t.Fatalf("expected rewound cursor, got %+v", slot.Cursor)
	}
	topic, err := NextTopic(&slot)
	if err != nil {
		t.Fatalf("next topic after reset: %v", err)
	}
	if topic.Title != "pillar a" {
		t.Fatalf("expected plan restart, got %q", topic.Title)
	}
	if topic.Published || !topic.PublishedAt.IsZero() {
		t.Fatalf("expected publish marks cleared, got %+v", topic)
	}
}

func TestGateOpen(t *testing.T) {
	slot := domain.Slot{LastActionDate: "2026-06-01"}

	if GateOpen(&slot, "2026-06-01", false) {
		t.Fatalf("expected gate closed on same day")
	}
	if !GateOpen(&slot, "2026-06-02", false) {
		t.Fatalf("expected gate open on next day")
	}
	if !GateOpen(&slot, "2026-06-01", true) {
		t.Fatalf("expected bypass to open the gate")
	}
	if !GateOpen(&domain.Slot{}, "2026-06-01", false) {
		t.Fatalf("expected gate open for a slot with no action history")
	}
}
