package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lexrag/lexrag/pkg/logging"
	"github.com/lexrag/lexrag/statute"
)

const (
	defaultTopK     = 50
	overFetchFactor = 3
)

// QueryEmbedder converts query text into the index's embedding space.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// FragmentSource joins chunk IDs back to statute metadata.
type FragmentSource interface {
	FetchByIDs(ctx context.Context, ids []string) (map[string]statute.Fragment, error)
}

// Retriever runs the full hybrid search: embed, vector lookup, metadata
// join, region filter, truncate.
type Retriever struct {
	embedder QueryEmbedder
	index    VectorIndex
	meta     FragmentSource
	logger   *slog.Logger
}

// NewRetriever wires the three stages together.
func NewRetriever(embedder QueryEmbedder, index VectorIndex, meta FragmentSource) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		meta:     meta,
		logger:   logging.WithComponent("retrieval"),
	}
}

// Retrieve returns up to topK fragments for the query, ordered by ascending
// vector distance. topK <= 0 falls back to the default. The index is
// over-fetched so that rows dropped by the join or the region filter do not
// starve the result.
//
// Local regulations (地方法规) survive only when regionFilter is non-empty
// and occurs in the fragment's region; national material always passes.
func (r *Retriever) Retrieve(ctx context.Context, query, regionFilter string, topK int) ([]statute.Fragment, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, vector, topK*overFetchFactor)
	if err != nil {
		return nil, fmt.Errorf("retrieval: index search: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}
	fragments, err := r.meta.FetchByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(fragments) < len(hits) {
		r.logger.Debug("index/content skew", "hits", len(hits), "joined", len(fragments))
	}

	results := make([]statute.Fragment, 0, topK)
	for _, h := range hits {
		f, ok := fragments[h.ChunkID]
		if !ok {
			continue
		}
		f.Distance = h.Distance
		if f.Category == statute.CategoryLocalRegulation {
			if regionFilter == "" || !strings.Contains(f.Region, regionFilter) {
				continue
			}
		}
		results = append(results, f)
		if len(results) == topK {
			break
		}
	}
	return results, nil
}
