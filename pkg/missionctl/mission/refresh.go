// Package mission – refresh.go performs bulk loads: initial load, workspace
// switch, and manual refresh. Loads replace the relevant collections rather
// than merging into them; a load whose workspace is no longer active by the
// time it resolves is discarded. Load failures leave the collection
// unchanged and are logged, never surfaced as a blocking error.
package mission

import (
	"context"
	"log/slog"
)

// defaultLoadLimit is the per-collection page size for bulk loads.
const defaultLoadLimit = 100

// Refresher coordinates full and partial reloads of the store.
type Refresher struct {
	store   *Store
	backend Backend
	logger  *slog.Logger
}

// NewRefresher creates a refresher bound to a store and backend.
func NewRefresher(store *Store, backend Backend, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		store:   store,
		backend: backend,
		logger:  logger.With("component", "refresher"),
	}
}

// LoadAll reloads every collection for the active workspace. Each slice
// loads independently: one failing fetch does not block the others.
func (r *Refresher) LoadAll(ctx context.Context) {
	workspace := r.store.ActiveWorkspace()

	r.loadAgents(ctx)
	r.loadTasks(ctx, workspace)
	r.loadActivities(ctx, workspace)
	r.loadMentions(ctx, workspace)
	r.loadHeartbeats(ctx)
}

// Refresh is the manual-refresh entry point; identical to LoadAll but kept
// separate so callers read naturally.
func (r *Refresher) Refresh(ctx context.Context) {
	r.LoadAll(ctx)
}

// SwitchWorkspace changes the active workspace and reloads the
// workspace-scoped collections. In-flight loads for the previous workspace
// become irrelevant: every load re-checks the active workspace at
// resolution time and discards itself on mismatch.
func (r *Refresher) SwitchWorkspace(ctx context.Context, workspaceID string) {
	r.store.SetActiveWorkspace(workspaceID)
	r.store.ReplaceTasks(nil)
	r.store.ReplaceActivities(nil)
	r.store.ReplaceMentions(nil)
	r.LoadAll(ctx)
}

// stillActive reports whether the workspace the load was issued for is still
// selected. Read from the store at resolution time, not captured at call
// time.
func (r *Refresher) stillActive(workspace string) bool {
	return r.store.ActiveWorkspace() == workspace
}

func (r *Refresher) loadAgents(ctx context.Context) {
	agents, err := r.backend.AgentRoles(ctx, false)
	if err != nil {
		r.logger.Warn("agent roles load failed", "error", err)
		return
	}
	r.store.ReplaceAgents(agents)
}

func (r *Refresher) loadTasks(ctx context.Context, workspace string) {
	tasks, err := r.backend.ListTasks(ctx)
	if err != nil {
		r.logger.Warn("tasks load failed", "error", err)
		return
	}
	if !r.stillActive(workspace) {
		r.logger.Debug("tasks load discarded, workspace changed", "workspace", workspace)
		return
	}

	// The core only holds tasks for the active workspace.
	scoped := tasks[:0]
	for _, t := range tasks {
		if t.WorkspaceID == workspace {
			scoped = append(scoped, t)
		}
	}
	r.store.ReplaceTasks(scoped)
	r.store.SortTasksByCreated()
}

func (r *Refresher) loadActivities(ctx context.Context, workspace string) {
	activities, err := r.backend.ListActivities(ctx, ActivityQuery{
		WorkspaceID: workspace,
		Limit:       MaxActivities,
	})
	if err != nil {
		r.logger.Warn("activities load failed", "error", err)
		return
	}
	if !r.stillActive(workspace) {
		r.logger.Debug("activities load discarded, workspace changed", "workspace", workspace)
		return
	}
	r.store.ReplaceActivities(activities)
}

func (r *Refresher) loadMentions(ctx context.Context, workspace string) {
	mentions, err := r.backend.ListMentions(ctx, MentionQuery{
		WorkspaceID: workspace,
		Limit:       defaultLoadLimit,
	})
	if err != nil {
		r.logger.Warn("mentions load failed", "error", err)
		return
	}
	if !r.stillActive(workspace) {
		r.logger.Debug("mentions load discarded, workspace changed", "workspace", workspace)
		return
	}
	r.store.ReplaceMentions(mentions)
}

func (r *Refresher) loadHeartbeats(ctx context.Context) {
	infos, err := r.backend.HeartbeatStatus(ctx)
	if err != nil {
		r.logger.Warn("heartbeat status load failed", "error", err)
		return
	}
	r.store.ReplaceHeartbeats(infos)
}
