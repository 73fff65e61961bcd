// Package llm sends single-turn prompts to a hosted language model, either
// through an adhdo relay or directly with a user supplied key.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// MaxTokens bounds every completion.
const MaxTokens = 1024

var (
	// ErrNoCredential means neither a relay nor an API key is available.
	ErrNoCredential = errors.New("llm: no credential configured")

	// ErrNoJSON means a reply held no JSON object or array.
	ErrNoJSON = errors.New("llm: reply holds no JSON")
)

// Request is one system + user prompt pair.
type Request struct {
	Model  string `json:"model,omitempty"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
}

// Completer returns the model's text reply for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Chain tries the relay first and falls back to the direct client when the
// relay fails. Either side may be nil.
type Chain struct {
	Relay  Completer
	Direct Completer
	Logger *slog.Logger
}

// New builds a Chain from a relay URL and a user key. It returns
// ErrNoCredential when both are empty.
func New(relayURL, apiKey string) (*Chain, error) {
	c := &Chain{}
	if relayURL != "" {
		c.Relay = &RelayClient{URL: relayURL}
	}
	if apiKey != "" {
		c.Direct = NewDirect(apiKey)
	}
	if c.Relay == nil && c.Direct == nil {
		return nil, ErrNoCredential
	}
	return c, nil
}

func (c *Chain) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Chain) Complete(ctx context.Context, req Request) (string, error) {
	if c.Relay == nil && c.Direct == nil {
		return "", ErrNoCredential
	}
	if c.Relay != nil {
		out, err := c.Relay.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		if c.Direct == nil {
			return "", err
		}
		c.logger().Debug("llm: relay failed, calling provider directly", "err", err)
	}
	return c.Direct.Complete(ctx, req)
}

// ExtractObject returns the substring from the first '{' to the last '}'.
func ExtractObject(reply string) (string, error) {
	return extract(reply, "{", "}")
}

// ExtractArray returns the substring from the first '[' to the last ']'.
func ExtractArray(reply string) (string, error) {
	return extract(reply, "[", "]")
}

func extract(reply, open, close string) (string, error) {
	start := strings.Index(reply, open)
	end := strings.LastIndex(reply, close)
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: want %s...%s", ErrNoJSON, open, close)
	}
	return reply[start : end+1], nil
}
