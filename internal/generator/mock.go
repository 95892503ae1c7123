package generator

import "context"

// Mock is a Generator returning canned drafts; used by tests and demo mode.
type Mock struct {
	// GenerateFunc overrides the default canned response when set.
	GenerateFunc func(ctx context.Context, req TopicRequest) (Draft, error)
	// Calls records every request received.
	Calls []TopicRequest
}

// Generate implements Generator.
func (m *Mock) Generate(ctx context.Context, req TopicRequest) (Draft, error) {
	m.Calls = append(m.Calls, req)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return Draft{Title: req.Topic.Title, Body: "draft body for " + req.Topic.Title}, nil
}
