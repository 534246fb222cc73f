// Package embedding turns query text into vectors via OpenAI-compatible
// /embeddings endpoints, tolerating the response-shape drift between
// providers (Ollama, vLLM, OpenAI proper).
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/lexrag/lexrag/errors"
	"github.com/lexrag/lexrag/pkg/logging"
)

// Cache stores computed vectors keyed by input text. Get returns (nil, nil)
// on a miss. Cache failures are logged and ignored; the upstream call is
// always the fallback.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, error)
	Set(ctx context.Context, key string, vector []float32) error
}

// Embedder calls a single embedding endpoint.
type Embedder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	cache   Cache
	logger  *slog.Logger
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithCache attaches a vector cache.
func WithCache(cache Cache) Option {
	return func(e *Embedder) { e.cache = cache }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Embedder) { e.client = client }
}

// New builds an Embedder for the given endpoint.
func New(baseURL, apiKey, model string, opts ...Option) *Embedder {
	e := &Embedder{
		baseURL: strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		model:   model,
		client:  http.DefaultClient,
		logger:  logging.WithComponent("embedding"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// Embed converts text to a vector. Newlines are flattened to spaces before
// the call; embedding models treat line breaks as token noise.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	normalized := strings.ReplaceAll(text, "\n", " ")

	if e.cache != nil {
		if vec, err := e.cache.Get(ctx, normalized); err != nil {
			e.logger.Warn("cache get failed", "error", err)
		} else if vec != nil {
			return vec, nil
		}
	}

	vec, err := e.fetch(ctx, normalized)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, normalized, vec); err != nil {
			e.logger.Warn("cache set failed", "error", err)
		}
	}
	return vec, nil
}

func (e *Embedder) fetch(ctx context.Context, input string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("embedding: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request: %v: %w", err, apperrors.ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding: status %d: %w", resp.StatusCode, apperrors.ErrUpstreamStatus)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read response: %v: %w", err, apperrors.ErrTransport)
	}
	return decodeVector(raw)
}

// decodeVector accepts both the OpenAI layout {"data":[{"embedding":[...]}]}
// and the bare {"embedding":[...]} layout some local servers emit.
// Non-numeric elements coerce to 0.
func decodeVector(raw []byte) ([]float32, error) {
	arr := gjson.GetBytes(raw, "data.0.embedding")
	if !arr.Exists() {
		arr = gjson.GetBytes(raw, "embedding")
	}
	if !arr.IsArray() {
		return nil, fmt.Errorf("embedding: no vector in response: %w", apperrors.ErrDecode)
	}
	elems := arr.Array()
	vec := make([]float32, len(elems))
	for i, el := range elems {
		if el.Type == gjson.Number {
			vec[i] = float32(el.Float())
		}
	}
	return vec, nil
}
