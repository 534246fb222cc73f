package retrieval

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/lexrag/lexrag/errors"
	"github.com/lexrag/lexrag/statute"
)

const metadataFile = "content.db"

// MetadataStore serves statute metadata, article snippets and law full
// texts from the relational content database.
type MetadataStore struct {
	db *sql.DB
}

// OpenMetadataStore opens content.db under dir. A missing file is ErrNotFound.
func OpenMetadataStore(dir string) (*MetadataStore, error) {
	path := filepath.Join(dir, metadataFile)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("retrieval: metadata store %s: %w", path, apperrors.ErrNotFound)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("retrieval: open metadata store: %w", err)
	}
	return &MetadataStore{db: db}, nil
}

// CreateMetadataStore creates a fresh content database under dir,
// bootstrapping the schema. Used by ingestion tooling and test fixtures.
func CreateMetadataStore(dir string) (*MetadataStore, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("retrieval: create metadata store: %w", err)
	}
	const schema = `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		law_name TEXT NOT NULL,
		category TEXT,
		region TEXT,
		publish_date TEXT,
		part TEXT,
		chapter TEXT,
		article_number TEXT
	);
	CREATE TABLE IF NOT EXISTS full_texts (
		law_name TEXT PRIMARY KEY,
		region TEXT,
		category TEXT,
		full_text TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("retrieval: bootstrap metadata store: %w", err)
	}
	return &MetadataStore{db: db}, nil
}

// DB exposes the handle for ingestion tooling and tests.
func (m *MetadataStore) DB() *sql.DB { return m.db }

// Close releases the underlying database handle.
func (m *MetadataStore) Close() error { return m.db.Close() }

// FetchByIDs loads fragments for the given chunk IDs in a single IN query.
// IDs with no metadata row are simply absent from the result; index/content
// skew must not fail the whole search.
func (m *MetadataStore) FetchByIDs(ctx context.Context, ids []string) (map[string]statute.Fragment, error) {
	if len(ids) == 0 {
		return map[string]statute.Fragment{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT id, content, law_name, category, region, publish_date, part, chapter, article_number
		FROM chunks WHERE id IN (%s)`, placeholders)
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("retrieval: fetch chunks: %v: %w", err, apperrors.ErrLookup)
	}
	defer rows.Close()

	out := make(map[string]statute.Fragment, len(ids))
	for rows.Next() {
		var f statute.Fragment
		var category, region, publishDate, part, chapter, articleNumber sql.NullString
		if err := rows.Scan(&f.ID, &f.Content, &f.LawName, &category, &region, &publishDate, &part, &chapter, &articleNumber); err != nil {
			return nil, fmt.Errorf("retrieval: scan chunk: %v: %w", err, apperrors.ErrLookup)
		}
		f.Category = category.String
		f.Region = region.String
		f.PublishDate = publishDate.String
		f.Part = part.String
		f.Chapter = chapter.String
		f.ArticleNumber = articleNumber.String
		f.SourceFile = f.LawName + ".txt"
		out[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("retrieval: fetch chunks rows: %v: %w", err, apperrors.ErrLookup)
	}
	return out, nil
}

// SearchByName suggests law names matching the pattern, national statutes
// before local regulations, shorter names first within a category.
func (m *MetadataStore) SearchByName(ctx context.Context, pattern string, limit int) ([]statute.NameSuggestion, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT DISTINCT law_name, region, category FROM full_texts WHERE law_name LIKE ? LIMIT 200`,
		"%"+pattern+"%")
	if err != nil {
		return nil, fmt.Errorf("retrieval: name search: %v: %w", err, apperrors.ErrLookup)
	}
	defer rows.Close()

	var suggestions []statute.NameSuggestion
	for rows.Next() {
		var s statute.NameSuggestion
		var region, category sql.NullString
		if err := rows.Scan(&s.Name, &region, &category); err != nil {
			return nil, fmt.Errorf("retrieval: scan suggestion: %v: %w", err, apperrors.ErrLookup)
		}
		s.Region = region.String
		s.Category = category.String
		suggestions = append(suggestions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("retrieval: name search rows: %v: %w", err, apperrors.ErrLookup)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		pi, pj := statute.CategoryPriority(suggestions[i].Category), statute.CategoryPriority(suggestions[j].Category)
		if pi != pj {
			return pi < pj
		}
		return len(suggestions[i].Name) < len(suggestions[j].Name)
	})
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

// ArticleSnippet returns the text of one article. A miss returns a
// user-facing message rather than an error; the caller shows it verbatim.
func (m *MetadataStore) ArticleSnippet(ctx context.Context, lawName, articleNumber string) (string, error) {
	var content string
	err := m.db.QueryRowContext(ctx,
		`SELECT content FROM chunks WHERE law_name LIKE ? AND article_number = ? LIMIT 1`,
		"%"+lawName+"%", articleNumber).Scan(&content)
	if err == sql.ErrNoRows {
		return fmt.Sprintf("未找到《%s》的%s", lawName, articleNumber), nil
	}
	if err != nil {
		return "", fmt.Errorf("retrieval: article snippet: %v: %w", err, apperrors.ErrLookup)
	}
	return content, nil
}

// FullText returns the complete text of one law by exact name. Callers may
// pass a fragment's SourceFile; the .txt suffix is stripped.
func (m *MetadataStore) FullText(ctx context.Context, lawName string) (string, error) {
	lawName = strings.TrimSuffix(lawName, ".txt")
	var text string
	err := m.db.QueryRowContext(ctx,
		`SELECT full_text FROM full_texts WHERE law_name = ?`, lawName).Scan(&text)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("未找到该法条全文: %w", apperrors.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("retrieval: full text: %v: %w", err, apperrors.ErrLookup)
	}
	return text, nil
}

// CheckDataDir reports whether dir contains both database files.
func CheckDataDir(dir string) bool {
	for _, name := range []string{vectorIndexFile, metadataFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}
