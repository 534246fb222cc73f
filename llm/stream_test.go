package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/lexrag/lexrag/errors"
)

func collectStream(t *testing.T, c *Client, system, user string, temp float64) ([]string, error) {
	t.Helper()
	var chunks []string
	for chunk, err := range c.CompleteStream(context.Background(), system, user, temp) {
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func TestCompleteStreamDeltaFormat(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"根据\"}}]}\n\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"民法典\"}}]}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	c := NewClient(Endpoint{BaseURL: srv.URL + "/v1", APIKey: "k", Model: "qwen3"})
	chunks, err := collectStream(t, c, "系统指令", "问题", 0.4)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(chunks) != 2 || chunks[0] != "根据" || chunks[1] != "民法典" {
		t.Errorf("chunks = %v", chunks)
	}

	if captured["stream"] != true {
		t.Errorf("stream flag = %v", captured["stream"])
	}
	if temp, _ := captured["temperature"].(float64); temp != 0.4 {
		t.Errorf("temperature = %v", captured["temperature"])
	}
	msgs := captured["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages = %v", msgs)
	}
	if msgs[0].(map[string]any)["role"] != "system" {
		t.Errorf("first role = %v", msgs[0])
	}
}

func TestCompleteStreamMessageFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"message\":{\"content\":\"答案\"}}\n\n"))
		w.Write([]byte("data: [DONE]\n\n"))
	}))
	defer srv.Close()

	c := NewClient(Endpoint{BaseURL: srv.URL + "/v1", Model: "qwen3"})
	chunks, err := collectStream(t, c, "", "问题", 0.3)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "答案" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestCompleteStreamSkipsMalformedLines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(": keepalive comment\n"))
		w.Write([]byte("data: {not valid json\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{}}]}\n"))
		w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n"))
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer srv.Close()

	c := NewClient(Endpoint{BaseURL: srv.URL + "/v1", Model: "qwen3"})
	chunks, err := collectStream(t, c, "", "q", 0.3)
	if err != nil {
		t.Fatalf("stream: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != "ok" {
		t.Errorf("chunks = %v", chunks)
	}
}

func TestCompleteStreamUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Endpoint{BaseURL: srv.URL + "/v1", Model: "qwen3"})
	_, err := collectStream(t, c, "", "q", 0.3)
	if !errors.Is(err, apperrors.ErrUpstreamStatus) {
		t.Errorf("err = %v, want ErrUpstreamStatus", err)
	}
}

func TestCompleteStreamTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(Endpoint{BaseURL: srv.URL + "/v1", Model: "qwen3"})
	_, err := collectStream(t, c, "", "q", 0.3)
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Errorf("err = %v, want ErrTransport", err)
	}
}

func TestCompleteStreamEarlyBreak(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 100; i++ {
			w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"x\"}}]}\n"))
		}
		w.Write([]byte("data: [DONE]\n"))
	}))
	defer srv.Close()

	c := NewClient(Endpoint{BaseURL: srv.URL + "/v1", Model: "qwen3"})
	count := 0
	for _, err := range c.CompleteStream(context.Background(), "", "q", 0.3) {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("count = %d", count)
	}
}
