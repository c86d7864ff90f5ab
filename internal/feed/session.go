package feed

import (
	"context"
	"time"

	"gigboard/feed-service/internal/model"
)

// DefaultPageSize is the number of records fetched per page unless
// configured otherwise.
const DefaultPageSize = 25

// Cursor marks a position within the created_at-descending job ordering.
// Pages resume strictly after it.
//
// Known gap: created_at is not guaranteed unique, so concurrent inserts with
// identical timestamps can cause a record to be skipped or repeated across a
// page boundary. The session's id-dedup absorbs repeats; skips remain
// possible until a stable secondary cursor key is added.
type Cursor struct {
	CreatedAt time.Time
}

// Pager retrieves one page of jobs ordered by creation time descending.
// A nil cursor requests the first page.
type Pager interface {
	Page(ctx context.Context, after *Cursor, limit int) ([]model.Job, error)
}

// Session accumulates pages for one browsing session ("load more"
// semantics). New unique items append at the end in arrival order — they are
// not re-sorted into chronological position, so a page fetched after
// upstream inserts can produce a non-monotonic concatenation. That is the
// expected behavior, not a defect.
//
// A Session is owned by a single logical task and is not safe for concurrent
// use. The generation counter is a stale-response guard: a Reset issued
// while an earlier load is still in flight bumps the generation, and the
// superseded load discards its result instead of clobbering the newer state.
type Session struct {
	store    Pager
	pageSize int

	items   []model.Job
	seen    map[string]bool
	cursor  *Cursor
	hasMore bool
	gen     uint64
}

// NewSession returns an empty Session reading pageSize-record pages from
// store.
func NewSession(store Pager, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Session{
		store:    store,
		pageSize: pageSize,
		seen:     make(map[string]bool),
		hasMore:  true,
	}
}

// Items returns the accumulated jobs in load order.
func (s *Session) Items() []model.Job { return s.items }

// HasMore reports whether another page may exist.
func (s *Session) HasMore() bool { return s.hasMore }

// Reset clears all accumulated state and loads page one from scratch,
// replacing rather than merging. Resetting is idempotent in effect.
func (s *Session) Reset(ctx context.Context) error {
	s.gen++
	gen := s.gen

	page, err := s.store.Page(ctx, nil, s.pageSize)
	if err != nil {
		return err
	}
	if gen != s.gen {
		return nil // superseded by a newer request
	}

	s.items = s.items[:0]
	s.seen = make(map[string]bool)
	s.cursor = nil
	s.hasMore = true
	s.apply(page)
	return nil
}

// LoadMore fetches the next page and merges it into the accumulated set.
// It is a no-op once the store has signalled the end of the result set.
func (s *Session) LoadMore(ctx context.Context) error {
	if !s.hasMore {
		return nil
	}
	gen := s.gen

	page, err := s.store.Page(ctx, s.cursor, s.pageSize)
	if err != nil {
		return err
	}
	if gen != s.gen {
		return nil
	}

	s.apply(page)
	return nil
}

// apply appends the page's unique items and advances the cursor. The cursor
// tracks the last record of the raw page (pre-dedup); a short page means no
// more pages.
func (s *Session) apply(page []model.Job) {
	for _, j := range page {
		if s.seen[j.ID] {
			continue
		}
		s.seen[j.ID] = true
		s.items = append(s.items, j)
	}

	if len(page) < s.pageSize {
		s.cursor = nil
		s.hasMore = false
		return
	}
	s.cursor = &Cursor{CreatedAt: page[len(page)-1].CreatedAt}
	s.hasMore = true
}
