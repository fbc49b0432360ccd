package session

import (
	"strings"
	"sync"
	"time"

	"genstudio/internal/metrics"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultMaxSessions = 1024
	DefaultSessionTTL  = 30 * time.Minute
)

// Store keeps one Controller per browser session in memory. Sessions expire
// after ttl without access and the least recently used ones are dropped past
// maxSessions. Nothing outlives the process.
type Store struct {
	mu      sync.Mutex
	cache   *expirable.LRU[string, *Controller]
	factory func() *Controller
	metrics *metrics.Metrics
}

func NewStore(maxSessions int, ttl time.Duration, factory func() *Controller, m *metrics.Metrics) *Store {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &Store{factory: factory, metrics: m}
	s.cache = expirable.NewLRU[string, *Controller](maxSessions, func(string, *Controller) {
		s.metrics.SessionClosed()
	}, ttl)
	return s
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Get returns the controller for id and refreshes its expiry.
func (s *Store) Get(id string) (*Controller, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.cache.Get(id)
	if ok {
		s.cache.Add(id, c)
	}
	return c, ok
}

// GetOrCreate returns the controller for id, creating it when absent.
func (s *Store) GetOrCreate(id string) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cache.Get(id); ok {
		s.cache.Add(id, c)
		return c
	}
	c := s.factory()
	s.cache.Add(id, c)
	s.metrics.SessionOpened()
	return c
}

func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(id)
}

func (s *Store) Len() int {
	return s.cache.Len()
}
