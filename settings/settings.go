// Package settings persists user-tunable configuration as a JSON document
// and hands out immutable snapshots to the rest of the system.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lexrag/lexrag/pkg/logging"
)

// Settings holds every user-tunable knob. Fields absent from the persisted
// document keep their zero value, so defaults are applied at load time.
type Settings struct {
	SearchTopK       int    `json:"search_top_k"`
	DisplayDensity   string `json:"display_density"`
	EmbeddingBaseURL string `json:"embedding_base_url"`
	EmbeddingAPIKey  string `json:"embedding_api_key"`
	EmbeddingModel   string `json:"embedding_model"`
	CustomDataPath   string `json:"custom_data_path"`
	EnableAIChat     bool   `json:"enable_ai_chat"`
	ChatBaseURL      string `json:"chat_base_url"`
	ChatAPIKey       string `json:"chat_api_key"`
	ChatModel        string `json:"chat_model"`
	ChatTopK         int    `json:"chat_top_k"`
	MaxAgentLoops    int    `json:"max_agent_loops"`
}

// Default returns the out-of-the-box configuration, pointed at a local
// Ollama endpoint.
func Default() Settings {
	return Settings{
		SearchTopK:       50,
		DisplayDensity:   "comfortable",
		EmbeddingBaseURL: "http://localhost:11434/v1",
		EmbeddingAPIKey:  "ollama",
		EmbeddingModel:   "embeddinggemma:300m",
		EnableAIChat:     false,
		ChatBaseURL:      "http://localhost:11434/v1",
		ChatAPIKey:       "ollama",
		ChatModel:        "qwen3",
		ChatTopK:         5,
		MaxAgentLoops:    5,
	}
}

// EffectiveDataDir returns the custom data directory when it is set and
// exists on disk, otherwise fallback.
func (s Settings) EffectiveDataDir(fallback string) string {
	custom := strings.TrimSpace(s.CustomDataPath)
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom
		}
	}
	return fallback
}

// Store guards a Settings value for concurrent readers and writers and keeps
// it in sync with a JSON file on disk.
type Store struct {
	mu      sync.RWMutex
	current Settings
	path    string
}

// Load reads settings from path. A missing or unparseable file yields
// defaults; unknown fields in the document are ignored, known fields
// override defaults. Only real I/O failures surface as errors.
func Load(path string) (*Store, error) {
	st := &Store{current: Default(), path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return st, nil
		}
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &st.current); err != nil {
		logging.WithComponent("settings").Warn("settings file unparseable, using defaults", "path", path, "error", err)
		st.current = Default()
	}
	return st, nil
}

// Snapshot returns a copy of the current settings. Mutating the copy has no
// effect on the store.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update replaces the stored settings and persists them to disk.
func (s *Store) Update(next Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("settings: create dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("settings: write %s: %w", s.path, err)
	}
	s.current = next
	return nil
}
