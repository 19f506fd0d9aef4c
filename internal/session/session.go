// Package session owns the console's authenticated-session state.
//
// The Store is the single writer of the Session value: every login,
// logout and expiry goes through SetUser, which derives the dependent
// fields atomically, persists the result through the securestore, and
// then notifies subscribers. Every other component reads the session —
// via Current or a subscription — and never mutates it.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/luodachuixg/nola-console/internal/model"
	"github.com/luodachuixg/nola-console/internal/securestore"
)

// DefaultKey is the securestore key the session blob is persisted under.
const DefaultKey = "session"

// Session is the authenticated-session snapshot. Invariant:
// IsLogin == (User != nil), and Token is non-empty iff User is present.
type Session struct {
	User    *model.User `json:"user,omitempty"`
	Token   string      `json:"token,omitempty"`
	IsLogin bool        `json:"isLogin"`
}

// Store holds the current Session and notifies subscribers on every
// SetUser call. It hydrates once from the securestore at construction;
// a missing or unreadable blob starts the store empty.
type Store struct {
	kv  securestore.Store
	key string

	// mu guards the session value and the subscriber map. setMu
	// serializes SetUser end to end so subscribers observe token
	// changes in the order they happened.
	mu    sync.RWMutex
	setMu sync.Mutex

	session Session
	subs    map[int]func(Session)
	nextSub int
}

// New hydrates a Store from the given securestore key.
func New(kv securestore.Store, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{kv: kv, key: key, subs: make(map[int]func(Session))}
	s.hydrate()
	return s
}

func (s *Store) hydrate() {
	raw, err := s.kv.Get(s.key)
	if err != nil || raw == "" {
		return
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		slog.Warn("session: discarding unparsable persisted session", "error", err)
		return
	}
	// Re-derive instead of trusting the blob, so the invariant holds
	// even if the persisted form predates a schema change.
	s.session = derive(sess.User)
}

// Current returns the session as of the last completed SetUser.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// SetUser replaces the session wholesale. A nil user is the canonical
// logout. The persistence write completes before SetUser returns, and
// subscribers are notified (in subscription order) before returning.
func (s *Store) SetUser(user *model.User) error {
	s.setMu.Lock()
	defer s.setMu.Unlock()

	sess := derive(user)

	s.mu.Lock()
	s.session = sess
	subs := make([]func(Session), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	persistErr := s.persist(sess)

	for _, fn := range subs {
		fn(sess)
	}
	return persistErr
}

// Subscribe registers fn to run on every SetUser. The returned cancel
// removes the subscription. Callbacks run on the SetUser caller's
// goroutine, serialized across all mutations.
func (s *Store) Subscribe(fn func(Session)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) persist(sess Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := s.kv.Put(s.key, string(data)); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}
	return nil
}

func derive(user *model.User) Session {
	if user == nil {
		return Session{}
	}
	return Session{User: user, Token: user.Token, IsLogin: true}
}
