// Package userdata persists per-user state: favorites, favorite folders and
// search history, in a standalone SQLite database.
package userdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const historyLimit = 50

// Favorite is one bookmarked statute fragment.
type Favorite struct {
	ID            int64  `json:"id"`
	LawID         string `json:"law_id"`
	LawName       string `json:"law_name"`
	ArticleNumber string `json:"article_number"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
	Tags          string `json:"tags"`
	FolderID      *int64 `json:"folder_id"`
}

// Folder groups favorites.
type Folder struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// Store wraps the user database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the user database at path and applies the schema.
// Databases created before folders existed get the folder_id column added.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("userdata: open %s: %w", path, err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS favorite_folders (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS favorites (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		law_id TEXT UNIQUE,
		law_name TEXT,
		article_number TEXT,
		content TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		tags TEXT
	);
	CREATE TABLE IF NOT EXISTS search_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT UNIQUE,
		timestamp INTEGER
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("userdata: bootstrap schema: %w", err)
	}

	if err := migrateFolderColumn(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func migrateFolderColumn(db *sql.DB) error {
	rows, err := db.Query(`PRAGMA table_info(favorites)`)
	if err != nil {
		return fmt.Errorf("userdata: inspect favorites: %w", err)
	}
	defer rows.Close()

	hasFolderID := false
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("userdata: scan column info: %w", err)
		}
		if name == "folder_id" {
			hasFolderID = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("userdata: inspect favorites: %w", err)
	}
	if hasFolderID {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE favorites ADD COLUMN folder_id INTEGER`); err != nil {
		return fmt.Errorf("userdata: add folder_id column: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// AddFavorite bookmarks a fragment. Re-adding an existing favorite only
// moves it to the given folder.
func (s *Store) AddFavorite(ctx context.Context, f Favorite) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorites (law_id, law_name, article_number, content, folder_id)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(law_id) DO UPDATE SET folder_id = excluded.folder_id`,
		f.LawID, f.LawName, f.ArticleNumber, f.Content, f.FolderID)
	if err != nil {
		return fmt.Errorf("userdata: add favorite: %w", err)
	}
	return nil
}

// MoveFavorite reassigns a favorite's folder; nil moves it to the root.
func (s *Store) MoveFavorite(ctx context.Context, lawID string, folderID *int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE favorites SET folder_id = ? WHERE law_id = ?`, folderID, lawID)
	if err != nil {
		return fmt.Errorf("userdata: move favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes a favorite by law ID.
func (s *Store) RemoveFavorite(ctx context.Context, lawID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE law_id = ?`, lawID)
	if err != nil {
		return fmt.Errorf("userdata: remove favorite: %w", err)
	}
	return nil
}

// Favorites lists every favorite, newest first.
func (s *Store) Favorites(ctx context.Context) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, law_id, law_name, article_number, content, created_at, tags, folder_id
		 FROM favorites ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("userdata: list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []Favorite
	for rows.Next() {
		var f Favorite
		var tags sql.NullString
		var folderID sql.NullInt64
		if err := rows.Scan(&f.ID, &f.LawID, &f.LawName, &f.ArticleNumber, &f.Content, &f.CreatedAt, &tags, &folderID); err != nil {
			return nil, fmt.Errorf("userdata: scan favorite: %w", err)
		}
		f.Tags = tags.String
		if folderID.Valid {
			f.FolderID = &folderID.Int64
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userdata: list favorites: %w", err)
	}
	return favorites, nil
}

// IsFavorite reports whether a law ID is bookmarked.
func (s *Store) IsFavorite(ctx context.Context, lawID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM favorites WHERE law_id = ?`, lawID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("userdata: check favorite: %w", err)
	}
	return count > 0, nil
}

// CreateFolder adds a favorites folder.
func (s *Store) CreateFolder(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO favorite_folders (name) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("userdata: create folder: %w", err)
	}
	return nil
}

// Folders lists folders in creation order.
func (s *Store) Folders(ctx context.Context) ([]Folder, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM favorite_folders ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("userdata: list folders: %w", err)
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("userdata: scan folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userdata: list folders: %w", err)
	}
	return folders, nil
}

// DeleteFolder removes a folder together with the favorites filed in it.
func (s *Store) DeleteFolder(ctx context.Context, folderID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE folder_id = ?`, folderID); err != nil {
		return fmt.Errorf("userdata: delete folder favorites: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM favorite_folders WHERE id = ?`, folderID); err != nil {
		return fmt.Errorf("userdata: delete folder: %w", err)
	}
	return nil
}

// AddHistory records a search query, deduplicated by text, keeping only the
// most recent entries.
func (s *Store) AddHistory(ctx context.Context, query string) error {
	if _, err := s.db.ExecContext(ctx,
		`REPLACE INTO search_history (query, timestamp) VALUES (?, ?)`,
		query, time.Now().Unix()); err != nil {
		return fmt.Errorf("userdata: add history: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM search_history WHERE id NOT IN
		 (SELECT id FROM search_history ORDER BY timestamp DESC LIMIT ?)`,
		historyLimit); err != nil {
		return fmt.Errorf("userdata: trim history: %w", err)
	}
	return nil
}

// History lists queries, newest first.
func (s *Store) History(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT query FROM search_history ORDER BY timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("userdata: list history: %w", err)
	}
	defer rows.Close()

	var history []string
	for rows.Next() {
		var q string
		if err := rows.Scan(&q); err != nil {
			return nil, fmt.Errorf("userdata: scan history: %w", err)
		}
		history = append(history, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("userdata: list history: %w", err)
	}
	return history, nil
}

// ClearHistory deletes every history entry.
func (s *Store) ClearHistory(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM search_history`); err != nil {
		return fmt.Errorf("userdata: clear history: %w", err)
	}
	return nil
}
