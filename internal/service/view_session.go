package service

import (
	"context"
	"errors"
	"sync"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/aggregation"
	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrViewSuperseded is returned by a request whose result was discarded for a newer one
	ErrViewSuperseded = domain.ErrSuperseded
	// ErrViewClosed is returned once the session has been closed
	ErrViewClosed = errors.New("view session closed")
)

// ViewSession owns one user's live monthly view: the fetched snapshot, the
// selected month and filter, and the last result. Newer requests always win;
// older in-flight work is cancelled and its result discarded.
//
// onUpdate runs with the session lock held and must not call back into the session.
type ViewSession struct {
	service  *MonthlyViewService
	userID   uuid.UUID
	onUpdate func(*MonthlyViewResult)
	logger   zerolog.Logger

	mu          sync.Mutex
	month       domain.MonthSelector
	filter      domain.CategoryFilterSet
	snapshot    []*domain.Transaction
	hasSnapshot bool
	known       aggregation.CategoryIndex
	fetchGen    uint64
	viewGen     uint64
	cancelFetch context.CancelFunc
	cancelView  context.CancelFunc
	current     *MonthlyViewResult
	closed      bool
}

type composeJob struct {
	gen      uint64
	ctx      context.Context
	cancel   context.CancelFunc
	snapshot []*domain.Transaction
	month    domain.MonthSelector
	filter   domain.CategoryFilterSet
	seed     aggregation.CategoryIndex
}

func newViewSession(service *MonthlyViewService, userID uuid.UUID, onUpdate func(*MonthlyViewResult)) *ViewSession {
	return &ViewSession{
		service:  service,
		userID:   userID,
		onUpdate: onUpdate,
		logger:   log.With().Str("component", "view_session").Str("user_id", userID.String()).Logger(),
	}
}

// Open selects month and filter and computes the view from a fresh snapshot
func (s *ViewSession) Open(ctx context.Context, month domain.MonthSelector, filter domain.CategoryFilterSet) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrViewClosed
	}
	s.month = month
	s.filter = filter
	s.invalidateViewLocked()
	s.mu.Unlock()

	return s.Reload(ctx)
}

// Step moves the selected month by delta and recomputes from the current snapshot
func (s *ViewSession) Step(ctx context.Context, delta int) error {
	return s.update(ctx, func() {
		s.month = s.month.Step(delta)
	})
}

// Toggle adds or removes a category from the filter and recomputes
func (s *ViewSession) Toggle(ctx context.Context, categoryID uuid.UUID) error {
	return s.update(ctx, func() {
		s.filter = s.filter.Toggle(categoryID)
	})
}

// SetFilter replaces the filter and recomputes
func (s *ViewSession) SetFilter(ctx context.Context, filter domain.CategoryFilterSet) error {
	return s.update(ctx, func() {
		s.filter = filter
	})
}

func (s *ViewSession) update(ctx context.Context, change func()) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrViewClosed
	}
	change()
	if !s.hasSnapshot {
		s.mu.Unlock()
		return s.Reload(ctx)
	}
	job := s.beginComposeLocked(ctx)
	s.mu.Unlock()

	return s.runCompose(job)
}

// Reload fetches a new snapshot and recomputes. A fetch that completes after a
// newer one was started is dropped.
func (s *ViewSession) Reload(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrViewClosed
	}
	s.fetchGen++
	gen := s.fetchGen
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancelFetch = cancel
	s.mu.Unlock()
	defer cancel()

	snapshot, err := s.service.Snapshot(fetchCtx, s.userID)

	s.mu.Lock()
	if s.closed || gen != s.fetchGen {
		s.mu.Unlock()
		s.logger.Debug().Uint64("generation", gen).Msg("Dropping superseded snapshot")
		return ErrViewSuperseded
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.snapshot = snapshot
	s.hasSnapshot = true
	s.known = nil
	job := s.beginComposeLocked(ctx)
	s.mu.Unlock()

	return s.runCompose(job)
}

// invalidateViewLocked cancels the in-flight build and makes its result stale
func (s *ViewSession) invalidateViewLocked() {
	s.viewGen++
	if s.cancelView != nil {
		s.cancelView()
		s.cancelView = nil
	}
}

func (s *ViewSession) beginComposeLocked(parent context.Context) composeJob {
	s.invalidateViewLocked()
	ctx, cancel := context.WithCancel(parent)
	s.cancelView = cancel
	return composeJob{
		gen:      s.viewGen,
		ctx:      ctx,
		cancel:   cancel,
		snapshot: s.snapshot,
		month:    s.month,
		filter:   s.filter,
		seed:     s.known,
	}
}

func (s *ViewSession) runCompose(job composeJob) error {
	defer job.cancel()

	result, err := s.service.Compose(job.ctx, s.userID, job.snapshot, job.month, job.filter, job.seed)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || job.gen != s.viewGen {
		s.logger.Debug().Uint64("generation", job.gen).Str("month", job.month.String()).Msg("Dropping superseded view")
		return ErrViewSuperseded
	}
	if err != nil {
		return err
	}

	known := make(aggregation.CategoryIndex, len(job.seed)+len(result.Categories))
	for id, c := range job.seed {
		known[id] = c
	}
	for id, c := range result.Categories {
		known[id] = c
	}
	s.known = known
	s.current = result

	if s.onUpdate != nil {
		s.onUpdate(result)
	}
	return nil
}

// Current returns the last applied result, nil before the first one
func (s *ViewSession) Current() *MonthlyViewResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Selection returns the selected month and filter
func (s *ViewSession) Selection() (domain.MonthSelector, domain.CategoryFilterSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.month, s.filter
}

// Close cancels all in-flight work; later requests fail with ErrViewClosed
func (s *ViewSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	if s.cancelView != nil {
		s.cancelView()
	}
}
