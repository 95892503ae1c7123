package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/plumehq/plume/internal/governance/domain"
)

func TestMockRecordsCalls(t *testing.T) {
	mock := &Mock{}

	draft, err := mock.Generate(context.Background(), TopicRequest{
		Topic:    domain.Topic{Kind: domain.KindPillar, Title: "회복 가이드"},
		Category: "recovery",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if draft.Title != "회복 가이드" || draft.Body == "" {
		t.Errorf("draft = %+v", draft)
	}
	if len(mock.Calls) != 1 || mock.Calls[0].Category != "recovery" {
		t.Errorf("Calls = %+v", mock.Calls)
	}
}

func TestMockOverride(t *testing.T) {
	wantErr := errors.New("upstream down")
	mock := &Mock{
		GenerateFunc: func(ctx context.Context, req TopicRequest) (Draft, error) {
			return Draft{}, wantErr
		},
	}

	_, err := mock.Generate(context.Background(), TopicRequest{})
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want override error", err)
	}
	if len(mock.Calls) != 1 {
		t.Errorf("Calls = %d, want 1 even on error", len(mock.Calls))
	}
}

func TestNewOpenAIValidatesConfig(t *testing.T) {
	if _, err := NewOpenAI(OpenAIConfig{Model: "gpt-4o-mini"}); err == nil {
		t.Error("expected error for missing api key")
	}
	if _, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test"}); err == nil {
		t.Error("expected error for missing model")
	}
	if _, err := NewOpenAI(OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}); err != nil {
		t.Errorf("NewOpenAI: %v", err)
	}
}

func TestPrompts(t *testing.T) {
	req := TopicRequest{
		Topic:    domain.Topic{Kind: domain.KindSatellite, Title: "재활 스트레칭"},
		Category: "recovery",
		Persona:  "따뜻하고 차분한 상담 톤",
		Locale:   "ko-KR",
	}

	system := systemPrompt(req)
	if !strings.Contains(system, "ko-KR") {
		t.Errorf("system prompt missing locale: %q", system)
	}
	if !strings.Contains(system, req.Persona) {
		t.Errorf("system prompt missing persona: %q", system)
	}

	user := userPrompt(req)
	if !strings.Contains(user, "satellite") {
		t.Errorf("user prompt missing topic kind: %q", user)
	}
	if !strings.Contains(user, `"재활 스트레칭"`) {
		t.Errorf("user prompt missing title: %q", user)
	}
	if !strings.Contains(user, `"recovery"`) {
		t.Errorf("user prompt missing category: %q", user)
	}

	// Persona and category are optional.
	bare := systemPrompt(TopicRequest{Topic: domain.Topic{Title: "x"}})
	if strings.Contains(bare, "Brand voice") {
		t.Errorf("bare system prompt should omit persona block: %q", bare)
	}
}
