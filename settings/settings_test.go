package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := st.Snapshot()
	if got != Default() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestLoadCorruptFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := st.Snapshot(); got != Default() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestLoadPartialDocumentKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	doc := `{"search_top_k": 10, "chat_model": "deepseek-r1", "unknown_field": true}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := st.Snapshot()
	if got.SearchTopK != 10 {
		t.Errorf("SearchTopK = %d, want 10", got.SearchTopK)
	}
	if got.ChatModel != "deepseek-r1" {
		t.Errorf("ChatModel = %q, want deepseek-r1", got.ChatModel)
	}
	if got.EmbeddingModel != Default().EmbeddingModel {
		t.Errorf("EmbeddingModel = %q, want default", got.EmbeddingModel)
	}
	if got.MaxAgentLoops != 5 {
		t.Errorf("MaxAgentLoops = %d, want 5", got.MaxAgentLoops)
	}
}

func TestUpdatePersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	st, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	next := st.Snapshot()
	next.EnableAIChat = true
	next.MaxAgentLoops = 8
	if err := st.Update(next); err != nil {
		t.Fatalf("Update: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := reloaded.Snapshot()
	if !got.EnableAIChat || got.MaxAgentLoops != 8 {
		t.Errorf("reloaded = %+v", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	st := &Store{current: Default()}
	snap := st.Snapshot()
	snap.ChatModel = "mutated"
	if st.Snapshot().ChatModel == "mutated" {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestEffectiveDataDir(t *testing.T) {
	s := Settings{}
	if got := s.EffectiveDataDir("/fallback"); got != "/fallback" {
		t.Errorf("got %q", got)
	}

	// A custom path that does not exist is ignored.
	s.CustomDataPath = filepath.Join(t.TempDir(), "missing")
	if got := s.EffectiveDataDir("/fallback"); got != "/fallback" {
		t.Errorf("got %q", got)
	}

	existing := t.TempDir()
	s.CustomDataPath = existing
	if got := s.EffectiveDataDir("/fallback"); got != existing {
		t.Errorf("got %q, want %q", got, existing)
	}

	s.CustomDataPath = "   "
	if got := s.EffectiveDataDir("/fallback"); got != "/fallback" {
		t.Errorf("got %q", got)
	}
}
