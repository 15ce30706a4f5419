package driven

import (
	"context"

	"github.com/custodia-labs/knowbase/internal/core/domain"
)

// DirectoryWatcher reports file changes in a directory.
type DirectoryWatcher interface {
	// Watch starts watching dir. The channel is closed when ctx is done.
	// Returns domain.ErrInvalidInput when dir is missing or not a directory.
	Watch(ctx context.Context, dir string) (<-chan domain.FileEvent, error)
}
