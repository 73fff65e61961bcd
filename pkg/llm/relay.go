package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// RelayTimeout bounds a relay round trip when the caller's context has no
// deadline.
const RelayTimeout = 60 * time.Second

// relayReply is the relay's response body: exactly one of the fields is set.
type relayReply struct {
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RelayClient posts requests to an adhdo relay endpoint.
type RelayClient struct {
	URL  string
	HTTP *http.Client
}

func (r *RelayClient) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, RelayTimeout)
		defer cancel()
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: relay request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := r.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: relay: %w", err)
	}
	defer resp.Body.Close()

	var reply relayReply
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&reply); err != nil {
		return "", fmt.Errorf("llm: relay %s: decode: %w", resp.Status, err)
	}
	if reply.Error != "" {
		return "", fmt.Errorf("llm: relay %s: %s", resp.Status, reply.Error)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("llm: relay %s", resp.Status)
	}
	return reply.Content, nil
}

// RelayHandler serves POST {model, system, prompt} and answers {content} or
// {error}. A nil upstream means no server side key is configured.
type RelayHandler struct {
	Upstream Completer
	Logger   *slog.Logger
}

func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeReply(w, http.StatusMethodNotAllowed, relayReply{Error: "method not allowed"})
		return
	}
	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeReply(w, http.StatusBadRequest, relayReply{Error: "invalid request body"})
		return
	}
	if h.Upstream == nil {
		writeReply(w, http.StatusInternalServerError, relayReply{Error: "API key not configured"})
		return
	}
	if req.Model == "" {
		req.Model = DefaultModel
	}
	out, err := h.Upstream.Complete(r.Context(), req)
	if err != nil {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("llm: relay upstream", "err", err)
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			writeReply(w, http.StatusBadRequest, relayReply{Error: apiErr.Error()})
			return
		}
		writeReply(w, http.StatusInternalServerError, relayReply{Error: "Failed to call Claude API"})
		return
	}
	writeReply(w, http.StatusOK, relayReply{Content: out})
}

func writeReply(w http.ResponseWriter, status int, v relayReply) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
