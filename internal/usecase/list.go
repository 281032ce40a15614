package usecase

import (
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"arcutil/internal/adapter/fs"
	"arcutil/internal/domain"
	"arcutil/internal/port"
)

// ListUseCase walks one or more roots and filters what it finds.
type ListUseCase struct {
	walker port.Walker
	filter *fs.Filter
	logger *slog.Logger
}

// NewListUseCase creates a new list use case. A nil filter keeps every entry.
func NewListUseCase(walker port.Walker, filter *fs.Filter, logger *slog.Logger) *ListUseCase {
	return &ListUseCase{
		walker: walker,
		filter: filter,
		logger: logger,
	}
}

// RootEntries holds the walk result of a single root.
type RootEntries struct {
	Root    string
	Entries []domain.WalkEntry
}

// List walks every root. Each root is an independent walk and the walks run
// concurrently; results come back in the order of roots. If any walk fails
// the whole call fails. Relative paths are computed against base, or against
// each root when base is empty.
func (u *ListUseCase) List(roots []string, base string) ([]RootEntries, error) {
	results := make([]RootEntries, len(roots))

	var g errgroup.Group
	for i, root := range roots {
		g.Go(func() error {
			entries, err := u.walker.Walk(root, base)
			if err != nil {
				return fmt.Errorf("failed to walk %s: %w", root, err)
			}
			u.logger.Debug("walked root", "root", root, "entries", len(entries))

			if u.filter != nil {
				entries = u.filter.Apply(entries)
			}
			results[i] = RootEntries{Root: root, Entries: entries}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
