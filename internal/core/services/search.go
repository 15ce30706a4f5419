package services

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/knowbase/internal/core/domain"
	"github.com/custodia-labs/knowbase/internal/core/ports/driven"
	"github.com/custodia-labs/knowbase/internal/core/ports/driving"
	"github.com/custodia-labs/knowbase/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	// maxSnippets bounds the excerpts returned per hit.
	maxSnippets = 3

	// snippetRadius is the context kept on each side of a match, in characters.
	snippetRadius = 60
)

// SearchService ranks catalog matches for free-text queries.
type SearchService struct {
	catalog driven.Catalog
}

// NewSearchService creates a new search service.
func NewSearchService(catalog driven.Catalog) *SearchService {
	return &SearchService{catalog: catalog}
}

// Search returns files matching query, best first. A catalog failure
// yields an empty result. The score is the number of matching metadata
// fields plus the number of matching chunks. Ties go to the most recent upload, then to the file id.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchHit, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q, category: %q, limit: %d", query, opts.Category, opts.Limit)

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidQuery
	}

	matches, err := s.catalog.SearchText(ctx, query, opts.Category)
	if err != nil {
		// Only a blank query is reported to the caller.
		logger.Error("Search %q failed: %v", query, err)
		return []domain.SearchHit{}, nil
	}
	logger.Debug("Catalog returned %d matching files", len(matches))

	terms := strings.Fields(strings.ToLower(query))
	hits := make([]domain.SearchHit, 0, len(matches))
	for i := range matches {
		hits = append(hits, toHit(&matches[i], terms))
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.File.UploadDate.Equal(b.File.UploadDate) {
			return a.File.UploadDate.After(b.File.UploadDate)
		}
		return a.File.ID < b.File.ID
	})

	if opts.Limit > 0 && len(hits) > opts.Limit {
		hits = hits[:opts.Limit]
	}

	logger.Info("Search %q: %d results", query, len(hits))
	return hits, nil
}

func toHit(m *domain.TextMatch, terms []string) domain.SearchHit {
	hit := domain.SearchHit{
		File:          m.File.Summary(),
		Score:         len(m.Fields) + len(m.ChunkIndices),
		MatchedFields: append([]string{}, m.Fields...),
		ChunkIndices:  append([]int{}, m.ChunkIndices...),
		Snippets:      []string{},
	}
	for _, text := range m.ChunkTexts {
		if len(hit.Snippets) == maxSnippets {
			break
		}
		hit.Snippets = append(hit.Snippets, snippet(text, terms))
	}
	return hit
}

// snippet returns a whitespace-collapsed excerpt around the earliest
// occurrence of any term in text.
func snippet(text string, terms []string) string {
	folded := strings.ToLower(text)
	pos, length := -1, 0
	for _, term := range terms {
		if i := strings.Index(folded, term); i >= 0 && (pos < 0 || i < pos) {
			pos, length = i, len(term)
		}
	}

	runes := []rune(text)
	start, end := 0, 0
	if pos >= 0 {
		// ToLower maps rune for rune, so rune positions carry over.
		start = utf8.RuneCountInString(folded[:pos])
		end = start + utf8.RuneCountInString(folded[pos:pos+length])
	}

	from := max(0, start-snippetRadius)
	to := min(len(runes), end+snippetRadius)

	excerpt := strings.Join(strings.Fields(string(runes[from:to])), " ")
	if from > 0 {
		excerpt = "…" + excerpt
	}
	if to < len(runes) {
		excerpt += "…"
	}
	return excerpt
}
