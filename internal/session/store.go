package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/srich3/portfolio/internal/content"
	"github.com/srich3/portfolio/internal/viewstate"
	"go.uber.org/zap"
)

// DefaultLimit caps the number of live pages. Creating a page past the cap
// tears down the least recently used one.
const DefaultLimit = 10_000

var ErrNotFound = errors.New("session not found")

type Store struct {
	// mu makes lookups and sweeps atomic with respect to each other.
	mu        sync.Mutex
	pages     *lru.Cache[string, *Page]
	site      *content.Site
	scheduler viewstate.Scheduler
	ttl       time.Duration
	limit     int
	now       func() time.Time
	logger    *zap.Logger
}

type Option func(*Store)

// WithScheduler sets the scheduler used by contact form timers.
func WithScheduler(scheduler viewstate.Scheduler) Option {
	return func(s *Store) { s.scheduler = scheduler }
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithLimit sets the maximum number of live pages. Values below 1 keep DefaultLimit.
func WithLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func NewStore(site *content.Site, ttl time.Duration, opts ...Option) (*Store, error) {
	store := &Store{
		site:      site,
		scheduler: viewstate.WallClock(),
		ttl:       ttl,
		limit:     DefaultLimit,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}

	pages, err := lru.NewWithEvict(store.limit, store.evicted)
	if err != nil {
		return nil, err
	}
	store.pages = pages

	return store, nil
}

func (s *Store) evicted(id string, page *Page) {
	page.Close()
	s.logger.Debug("Page session closed", zap.String("session", id))
}

// Create mounts a fresh page with default selections.
func (s *Store) Create() (*Page, error) {
	page, err := NewPage(uuid.NewString(), s.site, s.scheduler, s.now())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pages.Add(page.ID, page)
	s.mu.Unlock()

	s.logger.Debug("Page session created", zap.String("session", page.ID))

	return page, nil
}

// Get returns a live page and marks it as seen.
func (s *Store) Get(id string) (*Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, found := s.pages.Get(id)
	if !found {
		return nil, ErrNotFound
	}
	page.touch(s.now())

	return page, nil
}

// Remove tears down the page with id and reports whether it was live.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pages.Remove(id)
}

func (s *Store) Len() int {
	return s.pages.Len()
}

// Sweep tears down pages idle for longer than the ttl and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	expired := 0
	for _, id := range s.pages.Keys() {
		page, found := s.pages.Peek(id)
		if found && page.idleSince(now) > s.ttl {
			s.pages.Remove(id)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug("Expired page sessions", zap.Int("count", expired))
	}

	return expired
}

// Run sweeps on every interval until ctx is done, then closes all pages.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Close()

			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages.Purge()
}
