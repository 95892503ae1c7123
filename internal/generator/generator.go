// Package generator produces draft content for planned topics.
//
// Generation is an external collaborator of the governance core: the
// orchestrator only sees finished drafts, and retry or backoff policy for
// the backing API belongs to the caller.
package generator

import (
	"context"

	"github.com/plumehq/plume/internal/governance/domain"
)

// TopicRequest describes the draft to produce.
type TopicRequest struct {
	Topic    domain.Topic
	Category string
	// Persona is the tenant's brand voice instruction block.
	Persona string
	// Locale selects the output language, e.g. "ko-KR".
	Locale string
}

// Draft is a generated piece of content before governance review.
type Draft struct {
	Title string
	Body  string
}

// Generator produces a draft for a planned topic.
type Generator interface {
	Generate(ctx context.Context, req TopicRequest) (Draft, error)
}
