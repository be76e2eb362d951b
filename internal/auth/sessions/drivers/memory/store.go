// Package memory is an in-process session store with an injectable clock.
// It backs tests and single-instance development runs; it gives no
// cross-instance guarantees.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessionauth/internal/auth/domain"
	"github.com/aussiebroadwan/sessionauth/internal/auth/sessions"
)

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	sessions  map[string]entry
	blacklist map[string]time.Time

	// failure, when set, is returned from every call wrapped in
	// sessions.ErrUnavailable.
	failure error
}

// New returns an empty store. A nil now uses time.Now.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:       now,
		sessions:  make(map[string]entry),
		blacklist: make(map[string]time.Time),
	}
}

// SetFailure makes every subsequent call fail as if the store were
// unreachable. Pass nil to recover.
func (s *Store) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", sessions.ErrUnavailable, err)
	}
	if s.failure != nil {
		return fmt.Errorf("%w: %w", sessions.ErrUnavailable, s.failure)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, rec domain.Session, ttl time.Duration) error {
	if ttl <= 0 {
		return sessions.ErrInvalidTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	s.sessions[rec.Key] = entry{session: rec, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return domain.Session{}, err
	}

	e, ok := s.sessions[key]
	if !ok {
		return domain.Session{}, sessions.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.sessions, key)
		return domain.Session{}, sessions.ErrNotFound
	}
	return e.session, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	delete(s.sessions, key)
	return nil
}

func (s *Store) Blacklist(ctx context.Context, nonce string, ttl time.Duration) error {
	if ttl <= 0 {
		return sessions.ErrInvalidTTL
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return err
	}

	s.blacklist[nonce] = s.now().Add(ttl)
	return nil
}

func (s *Store) IsBlacklisted(ctx context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return false, err
	}

	exp, ok := s.blacklist[nonce]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.blacklist, nonce)
		return false, nil
	}
	return true, nil
}

// Len returns the number of live session records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := s.now()
	for _, e := range s.sessions {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.check(ctx)
}

func (s *Store) Close() error { return nil }

// Sweep drops expired sessions and blacklist entries and returns how many
// were removed.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(ctx); err != nil {
		return 0, err
	}

	now := s.now()
	removed := 0
	for k, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, k)
			removed++
		}
	}
	for n, exp := range s.blacklist {
		if !now.Before(exp) {
			delete(s.blacklist, n)
			removed++
		}
	}
	return removed, nil
}
