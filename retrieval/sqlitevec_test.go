package retrieval

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/lexrag/lexrag/errors"
)

func TestOpenSQLiteIndexMissingFile(t *testing.T) {
	_, err := OpenSQLiteIndex(t.TempDir())
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteIndexSearchOrdersByDistance(t *testing.T) {
	dir := t.TempDir()
	idx, err := CreateSQLiteIndex(dir)
	if err != nil {
		t.Fatalf("CreateSQLiteIndex: %v", err)
	}
	defer idx.Close()

	ctx := context.Background()
	vectors := map[string][]float32{
		"far":    {10, 10},
		"near":   {1, 1},
		"exact":  {0, 0},
		"medium": {3, 0},
	}
	for id, vec := range vectors {
		if err := idx.Add(ctx, id, vec); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}

	hits, err := idx.Search(ctx, []float32{0, 0}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("len = %d", len(hits))
	}
	want := []string{"exact", "near", "medium"}
	for i := range want {
		if hits[i].ChunkID != want[i] {
			t.Errorf("hits[%d] = %s, want %s", i, hits[i].ChunkID, want[i])
		}
	}
	if hits[0].Distance != 0 {
		t.Errorf("exact distance = %v", hits[0].Distance)
	}
	if hits[1].Distance <= hits[0].Distance || hits[2].Distance <= hits[1].Distance {
		t.Errorf("distances not ascending: %v", hits)
	}
}

func TestSQLiteIndexReopen(t *testing.T) {
	dir := t.TempDir()
	idx, err := CreateSQLiteIndex(dir)
	if err != nil {
		t.Fatalf("CreateSQLiteIndex: %v", err)
	}
	if err := idx.Add(context.Background(), "only", []float32{1, 2, 3}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	idx.Close()

	reopened, err := OpenSQLiteIndex(dir)
	if err != nil {
		t.Fatalf("OpenSQLiteIndex: %v", err)
	}
	defer reopened.Close()

	hits, err := reopened.Search(context.Background(), []float32{1, 2, 3}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].ChunkID != "only" || hits[0].Distance != 0 {
		t.Errorf("hits = %v", hits)
	}
}
