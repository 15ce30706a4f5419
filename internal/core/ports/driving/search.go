package driving

import (
	"context"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search ranks files matching query.
	// Returns domain.ErrInvalidQuery for a blank query and an empty,
	// non-nil slice when nothing matches.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchHit, error)
}
