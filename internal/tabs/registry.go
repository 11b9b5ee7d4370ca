// Package tabs keeps the in-memory state of each browser: its auth client
// and the session manager following it.
package tabs

import (
	"context"
	"fmt"

	"github.com/anonto42/recipe-share/backend/internal/auth"
	"github.com/anonto42/recipe-share/backend/internal/session"
	"github.com/anonto42/recipe-share/backend/pkg/logger"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

// Tab is one browser's state
type Tab struct {
	ID      string
	Auth    *auth.Client
	Session *session.Manager
}

func (t *Tab) close() {
	t.Session.Close()
	if err := t.Auth.Close(); err != nil {
		logger.Log.WithError(err).WithField("tab", t.ID).Warn("close auth client")
	}
}

// Registry is a bounded set of tabs. The least recently used tab is torn
// down when a new one does not fit.
type Registry struct {
	cache   *lru.Cache
	service *auth.Service
	adminID string
}

// NewRegistry creates a registry holding at most size tabs
func NewRegistry(size int, service *auth.Service, adminID string) (*Registry, error) {
	cache, err := lru.NewWithEvict(size, func(key interface{}, value interface{}) {
		tab := value.(*Tab)
		logger.Log.WithField("tab", tab.ID).Debug("tab evicted")
		tab.close()
	})
	if err != nil {
		return nil, fmt.Errorf("create tab cache: %w", err)
	}
	return &Registry{cache: cache, service: service, adminID: adminID}, nil
}

// Open creates a signed-out tab with a fresh id
func (r *Registry) Open(ctx context.Context) (*Tab, error) {
	client := auth.NewClient(r.service)
	manager := session.NewManager(client, r.adminID)
	if err := manager.Start(ctx); err != nil {
		client.Close()
		return nil, err
	}

	tab := &Tab{ID: uuid.NewString(), Auth: client, Session: manager}
	r.cache.Add(tab.ID, tab)
	return tab, nil
}

// Get looks a tab up and marks it recently used
func (r *Registry) Get(id string) (*Tab, bool) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Tab), true
}

// Remove tears one tab down
func (r *Registry) Remove(id string) {
	r.cache.Remove(id)
}

// Len is the number of live tabs
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge tears every tab down
func (r *Registry) Purge() {
	r.cache.Purge()
}
