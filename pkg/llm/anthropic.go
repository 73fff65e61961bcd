package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "claude-sonnet-4-20250514"

// Direct calls the Messages API with the official SDK.
type Direct struct {
	client anthropic.Client
}

// NewDirect returns a Direct client authenticated with apiKey. Extra options
// (for example option.WithBaseURL in tests) are applied after the key.
func NewDirect(apiKey string, opts ...option.RequestOption) *Direct {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Direct{client: anthropic.NewClient(opts...)}
}

func (d *Direct) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	msg, err := d.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("llm: messages: %w", err)
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
