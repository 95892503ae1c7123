package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIConfig configures the OpenAI-backed generator.
type OpenAIConfig struct {
	APIKey  string `env:"PLUME_OPENAI_API_KEY"`
	BaseURL string `env:"PLUME_OPENAI_BASE_URL"`
	Model   string `env:"PLUME_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
}

// OpenAI implements Generator using the official openai-go SDK
// (chat completions).
type OpenAI struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAI creates a generator from config.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openai model is required")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{model: cfg.Model, opts: opts}, nil
}

// Generate implements Generator.
func (g *OpenAI) Generate(ctx context.Context, req TopicRequest) (Draft, error) {
	client := openai.NewClient(g.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(req)),
			openai.UserMessage(userPrompt(req)),
		},
	})
	if err != nil {
		return Draft{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Draft{}, errors.New("openai: empty choices")
	}

	body := strings.TrimSpace(resp.Choices[0].Message.Content)
	return Draft{Title: req.Topic.Title, Body: body}, nil
}

func systemPrompt(req TopicRequest) string {
	var b strings.Builder
	b.WriteString("You write blog content for a content-marketing platform.")
	if req.Locale != "" {
		fmt.Fprintf(&b, " Write in the %s locale.", req.Locale)
	}
	if req.Persona != "" {
		b.WriteString("\n\nBrand voice:\n")
		b.WriteString(req.Persona)
	}
	return b.String()
}

func userPrompt(req TopicRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s post titled %q", strings.ToLower(req.Topic.Kind.String()), req.Topic.Title)
	if req.Category != "" {
		fmt.Fprintf(&b, " for the %q topic cluster", req.Category)
	}
	b.WriteString(". Return only the post body.")
	return b.String()
}
