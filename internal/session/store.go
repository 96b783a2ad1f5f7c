package session

import (
	"log"
	"sync"

	"shopsphere-web/internal/models"
	"shopsphere-web/pkg/cache"
)

// Store keeps one SearchState per browser session. State lives in Redis
// when available so restarts keep sessions; otherwise it falls back to
// process memory.
//
// Store also hands out per-session locks. Two racing requests from the
// same browser (a slow search still in flight while the user fires a
// second one) must serialize their load-mutate-save cycles or the
// sequence-number guard has nothing reliable to compare against.
type Store struct {
	cache *cache.RedisCache

	mu    sync.Mutex
	mem   map[string]*models.SearchState
	locks map[string]*sync.Mutex
}

func NewStore(c *cache.RedisCache) *Store {
	return &Store{
		cache: c,
		mem:   make(map[string]*models.SearchState),
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the session's mutex and returns the unlock func.
func (s *Store) Lock(sessionID string) func() {
	s.mu.Lock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Get returns the session's state, creating a fresh idle one when the
// session is new or its state expired. The caller always receives its
// own copy: the Redis path decodes a fresh value, and the memory path
// copies, so a view built after the session lock is released never
// aliases state another request is mutating.
func (s *Store) Get(sessionID string) *models.SearchState {
	if s.cache.IsAvailable() {
		state, err := s.cache.GetSessionState(sessionID)
		if err != nil {
			log.Printf("Failed to load session %s from redis: %v", sessionID, err)
		} else if state != nil {
			return state
		}
	}

	s.mu.Lock()
	state, ok := s.mem[sessionID]
	s.mu.Unlock()
	if ok {
		copied := *state
		return &copied
	}
	return models.NewSearchState()
}

// Save persists the session's state.
func (s *Store) Save(sessionID string, state *models.SearchState) {
	if s.cache.IsAvailable() {
		if err := s.cache.SetSessionState(sessionID, state); err != nil {
			log.Printf("Failed to save session %s to redis: %v", sessionID, err)
		} else {
			return
		}
	}

	s.mu.Lock()
	s.mem[sessionID] = state
	s.mu.Unlock()
}

// Delete discards the session's state entirely. The session's mutex
// stays in the lock map: evicting it while another request holds it
// would let Lock mint a second mutex for the same session. The map
// grows like the per-IP limiter map in main, one small entry per
// session ever seen.
func (s *Store) Delete(sessionID string) {
	if s.cache.IsAvailable() {
		if err := s.cache.DeleteSessionState(sessionID); err != nil {
			log.Printf("Failed to delete session %s from redis: %v", sessionID, err)
		}
	}

	s.mu.Lock()
	delete(s.mem, sessionID)
	s.mu.Unlock()
}
