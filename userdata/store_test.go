package userdata

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "user_data.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddFavoriteUpsertMovesFolder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.CreateFolder(ctx, "劳动法"); err != nil {
		t.Fatalf("CreateFolder: %v", err)
	}
	folders, err := s.Folders(ctx)
	if err != nil || len(folders) != 1 {
		t.Fatalf("Folders: %v %v", folders, err)
	}
	folderID := folders[0].ID

	fav := Favorite{LawID: "c1", LawName: "中华人民共和国劳动合同法", ArticleNumber: "第十条", Content: "书面形式"}
	if err := s.AddFavorite(ctx, fav); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}

	// Re-adding with a folder moves it instead of duplicating.
	fav.FolderID = &folderID
	if err := s.AddFavorite(ctx, fav); err != nil {
		t.Fatalf("AddFavorite upsert: %v", err)
	}

	favorites, err := s.Favorites(ctx)
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(favorites) != 1 {
		t.Fatalf("favorites = %v", favorites)
	}
	if favorites[0].FolderID == nil || *favorites[0].FolderID != folderID {
		t.Errorf("folder id = %v", favorites[0].FolderID)
	}
}

func TestIsFavoriteAndRemove(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.AddFavorite(ctx, Favorite{LawID: "c1", LawName: "民法典"}); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if ok, _ := s.IsFavorite(ctx, "c1"); !ok {
		t.Error("c1 should be favorite")
	}
	if ok, _ := s.IsFavorite(ctx, "c2"); ok {
		t.Error("c2 should not be favorite")
	}
	if err := s.RemoveFavorite(ctx, "c1"); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if ok, _ := s.IsFavorite(ctx, "c1"); ok {
		t.Error("c1 still favorite after removal")
	}
}

func TestMoveFavoriteToRoot(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	if err := s.CreateFolder(ctx, "刑法"); err != nil {
		t.Fatal(err)
	}
	folders, _ := s.Folders(ctx)
	id := folders[0].ID

	if err := s.AddFavorite(ctx, Favorite{LawID: "c1", FolderID: &id}); err != nil {
		t.Fatal(err)
	}
	if err := s.MoveFavorite(ctx, "c1", nil); err != nil {
		t.Fatalf("MoveFavorite: %v", err)
	}
	favorites, _ := s.Favorites(ctx)
	if favorites[0].FolderID != nil {
		t.Errorf("folder id = %v, want nil", favorites[0].FolderID)
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.CreateFolder(ctx, "folder")
	folders, _ := s.Folders(ctx)
	id := folders[0].ID

	s.AddFavorite(ctx, Favorite{LawID: "in-folder", FolderID: &id})
	s.AddFavorite(ctx, Favorite{LawID: "at-root"})

	if err := s.DeleteFolder(ctx, id); err != nil {
		t.Fatalf("DeleteFolder: %v", err)
	}

	favorites, _ := s.Favorites(ctx)
	if len(favorites) != 1 || favorites[0].LawID != "at-root" {
		t.Errorf("favorites = %v", favorites)
	}
	if folders, _ := s.Folders(ctx); len(folders) != 0 {
		t.Errorf("folders = %v", folders)
	}
}

func TestHistoryDedupAndTrim(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.AddHistory(ctx, "诉讼时效")
	s.AddHistory(ctx, "诉讼时效")
	history, err := s.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history = %v", history)
	}

	for i := 0; i < historyLimit+10; i++ {
		if err := s.AddHistory(ctx, fmt.Sprintf("查询%d", i)); err != nil {
			t.Fatalf("AddHistory: %v", err)
		}
	}
	history, _ = s.History(ctx)
	if len(history) != historyLimit {
		t.Errorf("len = %d, want %d", len(history), historyLimit)
	}
}

func TestClearHistory(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	s.AddHistory(ctx, "q1")
	s.AddHistory(ctx, "q2")
	if err := s.ClearHistory(ctx); err != nil {
		t.Fatalf("ClearHistory: %v", err)
	}
	if history, _ := s.History(ctx); len(history) != 0 {
		t.Errorf("history = %v", history)
	}
}

func TestOpenMigratesLegacySchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_data.db")

	legacy, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = legacy.Exec(`CREATE TABLE favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		law_id TEXT UNIQUE,
		law_name TEXT,
		article_number TEXT,
		content TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		tags TEXT
	)`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := legacy.Exec(`INSERT INTO favorites (law_id, law_name) VALUES ('old', '旧法')`); err != nil {
		t.Fatal(err)
	}
	legacy.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open legacy db: %v", err)
	}
	defer s.Close()

	favorites, err := s.Favorites(context.Background())
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].LawID != "old" || favorites[0].FolderID != nil {
		t.Errorf("favorites = %v", favorites)
	}
}
