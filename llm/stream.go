package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/lexrag/lexrag/errors"
)

const streamDone = "[DONE]"

type streamRequest struct {
	Model       string          `json:"model"`
	Messages    []streamMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	Stream      bool            `json:"stream"`
}

type streamMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompleteStream issues a streaming chat completion and yields content
// deltas as they arrive. Local inference servers disagree on the event
// payload shape, so each data line is probed for both the standard delta
// path and the whole-message fallback; lines matching neither are skipped.
// The sequence is single-use: it terminates after the server's [DONE]
// marker or on the first transport error.
func (c *Client) CompleteStream(ctx context.Context, system, user string, temperature float64) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		messages := make([]streamMessage, 0, 2)
		if system != "" {
			messages = append(messages, streamMessage{Role: "system", Content: system})
		}
		messages = append(messages, streamMessage{Role: "user", Content: user})

		body, err := json.Marshal(streamRequest{
			Model:       c.endpoint.Model,
			Messages:    messages,
			Temperature: temperature,
			Stream:      true,
		})
		if err != nil {
			yield("", fmt.Errorf("llm: encode stream request: %w", err))
			return
		}

		url := strings.TrimSuffix(c.endpoint.normalizedBaseURL(), "/") + "/chat/completions"
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			yield("", fmt.Errorf("llm: build stream request: %w", err))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		if c.endpoint.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.endpoint.APIKey)
		}

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			yield("", fmt.Errorf("llm: stream request: %v: %w", err, apperrors.ErrTransport))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			yield("", fmt.Errorf("llm: stream status %d: %w", resp.StatusCode, apperrors.ErrUpstreamStatus))
			return
		}

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == streamDone {
				return
			}
			if !gjson.Valid(payload) {
				continue
			}
			content := gjson.Get(payload, "choices.0.delta.content")
			if !content.Exists() {
				content = gjson.Get(payload, "message.content")
			}
			if !content.Exists() || content.String() == "" {
				continue
			}
			if !yield(content.String(), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", fmt.Errorf("llm: stream read: %v: %w", err, apperrors.ErrTransport))
		}
	}
}
