// Package mission – session.go wires the store, dispatcher, mutator, and
// refresher around one backend connection for one UI session.
package mission

import (
	"context"
	"log/slog"
)

// Session bundles the live-state core for one dashboard instance.
type Session struct {
	Store     *Store
	Mutator   *Mutator
	Refresher *Refresher

	dispatcher *Dispatcher
	logger     *slog.Logger
}

// NewSession creates an unstarted session for the given workspace.
func NewSession(backend Backend, workspaceID string, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	store := NewStore(workspaceID, logger)
	return &Session{
		Store:      store,
		Mutator:    NewMutator(store, backend, logger),
		Refresher:  NewRefresher(store, backend, logger),
		dispatcher: NewDispatcher(store, backend, logger),
		logger:     logger.With("component", "session"),
	}
}

// Start performs the initial bulk load and establishes the event
// subscriptions. Subscriptions come up first so no event is missed between
// load and subscribe; the replace-style load then supersedes anything the
// streams delivered in the gap.
func (s *Session) Start(ctx context.Context) error {
	if err := s.dispatcher.Start(ctx); err != nil {
		return err
	}
	s.Refresher.LoadAll(ctx)
	return nil
}

// Stop tears down the subscriptions and drains in-flight commands.
func (s *Session) Stop() {
	s.dispatcher.Stop()
	s.Mutator.Wait()
}

// Feed composes the unified timeline from the store's current snapshots,
// resolving agent display names from the role collection.
func (s *Session) Feed(filter FeedType, agentFilter string) []FeedItem {
	items := ComposeFeed(s.Store.Activities(), s.Store.RecentHeartbeatEvents(), filter, agentFilter)
	for i := range items {
		if items[i].AgentID == "" {
			continue
		}
		if role, ok := s.Store.AgentRole(items[i].AgentID); ok {
			items[i].AgentName = role.Name
		}
	}
	return items
}

// Board projects the task collection onto the five mission columns.
func (s *Session) Board() map[MissionColumn][]Task {
	return s.Store.ColumnTasks()
}
