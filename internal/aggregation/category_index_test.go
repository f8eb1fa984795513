package aggregation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLookup struct {
	mu         sync.Mutex
	calls      map[uuid.UUID]int
	categories map[uuid.UUID]*domain.Category
	failures   map[uuid.UUID]error
	inFlight   int32
	maxFlight  int32
	delay      time.Duration
}

func newCountingLookup() *countingLookup {
	return &countingLookup{
		calls:      make(map[uuid.UUID]int),
		categories: make(map[uuid.UUID]*domain.Category),
		failures:   make(map[uuid.UUID]error),
	}
}

func (c *countingLookup) add(id uuid.UUID, name string) {
	c.categories[id] = &domain.Category{ID: id, Name: name, Type: domain.TransactionTypeExpense}
}

func (c *countingLookup) lookup(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	n := atomic.AddInt32(&c.inFlight, 1)
	defer atomic.AddInt32(&c.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&c.maxFlight)
		if n <= peak || atomic.CompareAndSwapInt32(&c.maxFlight, peak, n) {
			break
		}
	}

	c.mu.Lock()
	c.calls[id]++
	category, ok := c.categories[id]
	failure := c.failures[id]
	c.mu.Unlock()

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if failure != nil {
		return nil, failure
	}
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (c *countingLookup) callCount(id uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[id]
}

func (c *countingLookup) totalCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, n := range c.calls {
		total += n
	}
	return total
}

func TestDistinctCategoryIDs(t *testing.T) {
	txs := []*domain.Transaction{
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryB)),
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", nil),
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryA)),
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryB)),
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(uuid.Nil)),
	}

	assert.Equal(t, []uuid.UUID{categoryB, categoryA}, DistinctCategoryIDs(txs))
	assert.Empty(t, DistinctCategoryIDs(nil))
}

func TestBuildCategoryIndex_CompleteAndDeduplicated(t *testing.T) {
	lookup := newCountingLookup()
	lookup.add(categoryA, "Groceries")
	lookup.add(categoryB, "Salary")

	txs := []*domain.Transaction{
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryA)),
		newTx("2024-03-02", domain.TransactionTypeIncome, "1", ptr(categoryB)),
		newTx("2024-03-03", domain.TransactionTypeExpense, "1", ptr(categoryA)),
		newTx("2024-03-04", domain.TransactionTypeExpense, "1", nil),
		newTx("2024-03-05", domain.TransactionTypeExpense, "1", ptr(categoryA)),
	}

	index, failures, err := BuildCategoryIndex(context.Background(), txs, lookup.lookup)
	require.NoError(t, err)
	assert.Empty(t, failures)

	require.Len(t, index, 2)
	assert.Equal(t, "Groceries", index[categoryA].Name)
	assert.Equal(t, "Salary", index[categoryB].Name)

	assert.Equal(t, 1, lookup.callCount(categoryA))
	assert.Equal(t, 1, lookup.callCount(categoryB))
	assert.Equal(t, 2, lookup.totalCalls())
}

func TestBuildCategoryIndex_NoCategories(t *testing.T) {
	lookup := newCountingLookup()
	txs := []*domain.Transaction{
		newTx("2024-03-04", domain.TransactionTypeExpense, "1", nil),
	}

	index, failures, err := BuildCategoryIndex(context.Background(), txs, lookup.lookup)
	require.NoError(t, err)
	assert.Empty(t, index)
	assert.Empty(t, failures)
	assert.Zero(t, lookup.totalCalls())
}

func TestBuildCategoryIndex_PartialFailure(t *testing.T) {
	lookup := newCountingLookup()
	lookup.add(categoryA, "Groceries")
	lookup.add(categoryC, "Rent")
	storeFailure := domain.NewStoreError("get category", errors.New("connection reset"))
	lookup.failures[categoryB] = storeFailure
	missing := uuid.New()

	txs := []*domain.Transaction{
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryA)),
		newTx("2024-03-02", domain.TransactionTypeIncome, "1", ptr(categoryB)),
		newTx("2024-03-03", domain.TransactionTypeExpense, "1", ptr(categoryC)),
		newTx("2024-03-04", domain.TransactionTypeExpense, "1", ptr(missing)),
	}

	index, failures, err := BuildCategoryIndex(context.Background(), txs, lookup.lookup)
	require.NoError(t, err)

	assert.Len(t, index, 2)
	assert.Contains(t, index, categoryA)
	assert.Contains(t, index, categoryC)
	assert.NotContains(t, index, categoryB)

	require.Len(t, failures, 2)
	assert.True(t, errors.Is(failures[categoryB], domain.ErrStore))
	assert.True(t, errors.Is(failures[missing], domain.ErrNotFound))
}

func TestBuildCategoryIndex_NilCategoryIsNotFound(t *testing.T) {
	txs := []*domain.Transaction{
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryA)),
	}
	lookup := func(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
		return nil, nil
	}

	index, failures, err := BuildCategoryIndex(context.Background(), txs, lookup)
	require.NoError(t, err)
	assert.Empty(t, index)
	assert.ErrorIs(t, failures[categoryA], domain.ErrCategoryNotFound)
}

func TestBuildCategoryIndex_ConcurrencyLimit(t *testing.T) {
	lookup := newCountingLookup()
	lookup.delay = 10 * time.Millisecond

	txs := make([]*domain.Transaction, 0, 20)
	for i := 0; i < 20; i++ {
		id := uuid.New()
		lookup.add(id, "c")
		txs = append(txs, newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(id)))
	}

	index, failures, err := BuildCategoryIndexWithOptions(context.Background(), txs, lookup.lookup, IndexOptions{Concurrency: 3})
	require.NoError(t, err)
	assert.Len(t, index, 20)
	assert.Empty(t, failures)
	assert.LessOrEqual(t, atomic.LoadInt32(&lookup.maxFlight), int32(3))
	assert.Greater(t, atomic.LoadInt32(&lookup.maxFlight), int32(1), "lookups should overlap")
}

func TestBuildCategoryIndex_LookupsRunInParallel(t *testing.T) {
	const n = 4
	var started int32
	allStarted := make(chan struct{})

	lookup := func(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
		if atomic.AddInt32(&started, 1) == n {
			close(allStarted)
		}
		// Each lookup waits for the others; a serial builder never gets past the first
		select {
		case <-allStarted:
			return &domain.Category{ID: id, Name: "c"}, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("lookups were serialized")
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	txs := make([]*domain.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(uuid.New())))
	}

	index, failures, err := BuildCategoryIndexWithOptions(context.Background(), txs, lookup, IndexOptions{Concurrency: n})
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Len(t, index, n)
}

func TestBuildCategoryIndex_SeedSkipsLookup(t *testing.T) {
	lookup := newCountingLookup()
	lookup.add(categoryB, "Salary")
	seeded := &domain.Category{ID: categoryA, Name: "Cached"}

	txs := []*domain.Transaction{
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryA)),
		newTx("2024-03-02", domain.TransactionTypeIncome, "1", ptr(categoryB)),
	}

	index, _, err := BuildCategoryIndexWithOptions(context.Background(), txs, lookup.lookup, IndexOptions{
		Seed: CategoryIndex{categoryA: seeded},
	})
	require.NoError(t, err)
	assert.Same(t, seeded, index[categoryA])
	assert.Zero(t, lookup.callCount(categoryA))
	assert.Equal(t, 1, lookup.callCount(categoryB))
}

func TestBuildCategoryIndex_Cancelled(t *testing.T) {
	lookup := newCountingLookup()
	lookup.delay = time.Second
	lookup.add(categoryA, "Groceries")
	lookup.add(categoryB, "Salary")

	txs := []*domain.Transaction{
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryA)),
		newTx("2024-03-02", domain.TransactionTypeIncome, "1", ptr(categoryB)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, _, err := BuildCategoryIndex(ctx, txs, lookup.lookup)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestBuildCategoryIndex_AlreadyCancelled(t *testing.T) {
	lookup := newCountingLookup()
	lookup.add(categoryA, "Groceries")
	txs := []*domain.Transaction{
		newTx("2024-03-01", domain.TransactionTypeExpense, "1", ptr(categoryA)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := BuildCategoryIndex(ctx, txs, lookup.lookup)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, lookup.totalCalls())
}
