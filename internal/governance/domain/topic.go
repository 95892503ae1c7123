package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TopicKind distinguishes the lead topic of a cluster from its supporting topics.
type TopicKind int

const (
	// KindUnspecified represents an invalid topic kind value.
	KindUnspecified TopicKind = iota
	// KindPillar is the lead topic anchoring a cluster.
	KindPillar
	// KindSatellite is a supporting topic within a cluster.
	KindSatellite
)

func (k TopicKind) String() string {
	switch k {
	case KindPillar:
		return "PILLAR"
	case KindSatellite:
		return "SATELLITE"
	default:
		return "UNSPECIFIED"
	}
}

// ParseTopicKind parses a topic kind name. Matching is case-insensitive.
func ParseTopicKind(value string) (TopicKind, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "PILLAR":
		return KindPillar, nil
	case "SATELLITE":
		return KindSatellite, nil
	default:
		return KindUnspecified, fmt.Errorf("unknown topic kind %q", value)
	}
}

var (
	// ErrEmptyClusterCategory indicates a cluster without a category label.
	ErrEmptyClusterCategory = errors.New("cluster category is required")
	// ErrEmptyCluster indicates a cluster with no topics.
	ErrEmptyCluster = errors.New("cluster must contain at least one topic")
	// ErrClusterPillarFirst indicates a cluster whose first topic is not the pillar.
	ErrClusterPillarFirst = errors.New("cluster must start with exactly one pillar topic")
	// ErrEmptyTopicTitle indicates a topic without a title.
	ErrEmptyTopicTitle = errors.New("topic title is required")
)

// Topic is a single planned content item.
type Topic struct {
	Day         int
	Kind        TopicKind
	Title       string
	Published   bool
	PublishedAt time.Time
}

// TopicCluster groups one pillar topic and its satellites under a category.
type TopicCluster struct {
	Category string
	Topics   []Topic
}

// Validate checks the pillar-first cluster shape.
func (c TopicCluster) Validate() error {
	if strings.TrimSpace(c.Category) == "" {
		return ErrEmptyClusterCategory
	}
	if len(c.Topics) == 0 {
		return ErrEmptyCluster
	}
	for i, topic := range c.Topics {
		if strings.TrimSpace(topic.Title) == "" {
			return fmt.Errorf("topic %d: %w", i, ErrEmptyTopicTitle)
		}
		if i == 0 && topic.Kind != KindPillar {
			return ErrClusterPillarFirst
		}
		if i > 0 && topic.Kind != KindSatellite {
			return ErrClusterPillarFirst
		}
	}
	return nil
}
