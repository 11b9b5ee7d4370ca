// Package session tracks who is signed in on one tab and whether that
// identity is the admin.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/recipe-share/backend/internal/auth"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
)

// Source is where sessions come from; *auth.Client implements it.
type Source interface {
	GetSession(ctx context.Context) (*auth.Session, error)
	OnAuthStateChange(ctx context.Context) (*auth.Subscription, error)
}

// State is the identity view the rest of the app reads
type State struct {
	UserID   string `json:"user_id,omitempty"`
	Email    string `json:"email,omitempty"`
	LoggedIn bool   `json:"logged_in"`
	IsAdmin  bool   `json:"is_admin"`
}

// IsAdmin compares verbatim; an empty user never matches.
func IsAdmin(userID, adminID string) bool {
	return userID != "" && userID == adminID
}

func stateFrom(sess *auth.Session, adminID string) State {
	if sess == nil {
		return State{}
	}
	return State{
		UserID:   sess.UserID,
		Email:    sess.Email,
		LoggedIn: true,
		IsAdmin:  IsAdmin(sess.UserID, adminID),
	}
}

// Manager holds the session state of one tab. Only its event loop writes
// the state.
type Manager struct {
	source  Source
	adminID string

	mu       sync.RWMutex
	state    State
	pushed   bool
	watchers map[chan State]struct{}

	sub       *auth.Subscription
	done      chan struct{}
	closeOnce sync.Once
}

// NewManager creates a manager; call Start before reading state.
func NewManager(source Source, adminID string) *Manager {
	return &Manager{
		source:   source,
		adminID:  adminID,
		watchers: make(map[chan State]struct{}),
		done:     make(chan struct{}),
	}
}

// Start subscribes to state changes and then loads the current session.
// Subscribing first means no change between the two calls is lost. The
// subscription outlives ctx; it ends with Close.
func (m *Manager) Start(ctx context.Context) error {
	sub, err := m.source.OnAuthStateChange(context.Background())
	if err != nil {
		return fmt.Errorf("subscribe to session changes: %w", err)
	}
	m.sub = sub

	// The loop must run before GetSession: a refresh inside it publishes an
	// event and waits for this subscriber.
	go m.loop(sub)

	sess, err := m.source.GetSession(ctx)
	if err != nil {
		m.Close()
		return fmt.Errorf("load current session: %w", err)
	}
	m.applyInitial(stateFrom(sess, m.adminID))
	return nil
}

func (m *Manager) loop(sub *auth.Subscription) {
	for {
		select {
		case change, ok := <-sub.C:
			if !ok {
				return
			}
			logger.Log.WithField("event", change.Event).Debug("session state changed")
			m.mu.Lock()
			m.pushed = true
			m.set(stateFrom(change.Session, m.adminID))
			m.mu.Unlock()
		case <-m.done:
			return
		}
	}
}

// applyInitial keeps a pushed state, which is never older than the initial read.
func (m *Manager) applyInitial(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pushed {
		m.set(s)
	}
}

// set requires m.mu
func (m *Manager) set(s State) {
	m.state = s
	for ch := range m.watchers {
		// Latest state wins: drop a stale pending value.
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Resolve derives the state for sess with this manager's admin id, without
// touching the tracked state.
func (m *Manager) Resolve(sess *auth.Session) State {
	return stateFrom(sess, m.adminID)
}

// State returns a snapshot of the current state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Watch returns a channel that receives the current state and every later
// change until cancel is called or the manager is closed. Slow readers only
// see the most recent state.
func (m *Manager) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.mu.Lock()
	select {
	case <-m.done:
		m.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	m.watchers[ch] = struct{}{}
	ch <- m.state
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			if _, ok := m.watchers[ch]; ok {
				delete(m.watchers, ch)
				close(ch)
			}
			m.mu.Unlock()
		})
	}
	return ch, cancel
}

// Close releases the subscription and closes every watcher. It is safe to
// call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.done)
		if m.sub != nil {
			m.sub.Unsubscribe()
		}

		m.mu.Lock()
		for ch := range m.watchers {
			delete(m.watchers, ch)
			close(ch)
		}
		m.mu.Unlock()
	})
}
