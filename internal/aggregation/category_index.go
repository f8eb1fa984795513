package aggregation

import (
	"context"
	"sync"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultLookupConcurrency bounds the number of category lookups in flight per build.
const DefaultLookupConcurrency = 8

// CategoryIndex maps a category identifier to its record.
type CategoryIndex map[uuid.UUID]*domain.Category

// IndexOptions tunes BuildCategoryIndex.
type IndexOptions struct {
	// Concurrency caps parallel lookups; zero or negative uses DefaultLookupConcurrency.
	Concurrency int
	// Seed holds categories already known; their ids are not looked up again.
	Seed CategoryIndex
}

// DistinctCategoryIDs returns each referenced category id once, in first-seen order.
func DistinctCategoryIDs(transactions []*domain.Transaction) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	ids := make([]uuid.UUID, 0)
	for _, tx := range transactions {
		if tx == nil || !tx.HasCategory() {
			continue
		}
		id := *tx.CategoryID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// BuildCategoryIndex resolves every distinct category referenced by transactions.
// Each id is looked up at most once; lookups run concurrently and are joined
// before returning. A failed lookup leaves its id out of the index and records
// the error in the failures map without affecting the other ids.
//
// If ctx is cancelled, pending lookups are abandoned and ctx.Err() is returned
// together with whatever resolved so far; callers must not apply that partial index.
func BuildCategoryIndex(ctx context.Context, transactions []*domain.Transaction, lookup domain.CategoryLookup) (CategoryIndex, map[uuid.UUID]error, error) {
	return BuildCategoryIndexWithOptions(ctx, transactions, lookup, IndexOptions{})
}

// BuildCategoryIndexWithOptions is BuildCategoryIndex with explicit options.
func BuildCategoryIndexWithOptions(ctx context.Context, transactions []*domain.Transaction, lookup domain.CategoryLookup, opts IndexOptions) (CategoryIndex, map[uuid.UUID]error, error) {
	index := make(CategoryIndex)
	failures := make(map[uuid.UUID]error)

	pending := make([]uuid.UUID, 0)
	for _, id := range DistinctCategoryIDs(transactions) {
		if known, ok := opts.Seed[id]; ok && known != nil {
			index[id] = known
			continue
		}
		pending = append(pending, id)
	}
	if len(pending) == 0 {
		return index, failures, nil
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultLookupConcurrency
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(limit)

	for _, id := range pending {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			category, err := lookup(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				failures[id] = err
			case category == nil:
				failures[id] = domain.ErrCategoryNotFound
			default:
				index[id] = category
			}
			// Lookup failures are per id; never cancel the siblings.
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return index, failures, err
	}
	return index, failures, nil
}
