// Package mission – mutator.go executes user-initiated actions: the store is
// updated synchronously so the UI reflects the change instantly, then the
// backend command is fired asynchronously. Command rejections are logged and
// never rolled back — the optimistic state persists until a subsequent
// authoritative event or refresh overwrites it. Chosen trade-off: incoming
// events from the same action normally arrive and correct any divergence.
package mission

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// commandTimeout bounds a fire-and-forget backend command.
const commandTimeout = 15 * time.Second

// Mutator applies optimistic local mutations ahead of backend confirmation.
type Mutator struct {
	store   *Store
	backend Backend
	logger  *slog.Logger

	// wg tracks in-flight commands so tests and teardown can drain them.
	wg sync.WaitGroup
}

// NewMutator creates a mutator bound to a store and backend.
func NewMutator(store *Store, backend Backend, logger *slog.Logger) *Mutator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mutator{
		store:   store,
		backend: backend,
		logger:  logger.With("component", "mutator"),
	}
}

// MoveTask drags a task into a mission column. The store is patched with the
// column's canonical board value immediately.
func (m *Mutator) MoveTask(taskID string, column MissionColumn) {
	board := ColumnToBoardColumn(column)
	m.store.SetTaskBoardColumn(taskID, board)

	m.dispatch("move_task", taskID, func(ctx context.Context) error {
		return m.backend.MoveTask(ctx, taskID, board)
	})
}

// AssignTask (re)assigns a task to an agent role; agentRoleID == "" clears
// the assignment.
func (m *Mutator) AssignTask(taskID, agentRoleID string) {
	m.store.SetTaskAssignee(taskID, agentRoleID)

	m.dispatch("assign_task", taskID, func(ctx context.Context) error {
		return m.backend.AssignTask(ctx, taskID, agentRoleID)
	})
}

// TriggerHeartbeat requests an immediate heartbeat run for an agent. The
// local status flips to running right away; the heartbeat stream delivers
// the authoritative transitions.
func (m *Mutator) TriggerHeartbeat(agentRoleID string) {
	m.store.SetHeartbeatRunning(agentRoleID)

	m.dispatch("trigger_heartbeat", agentRoleID, func(ctx context.Context) error {
		return m.backend.TriggerHeartbeat(ctx, agentRoleID)
	})
}

// PostComment creates a user comment activity. The optimistic record carries
// a locally generated id; if the backend echoes the creation back through
// the activity stream with the same id it deduplicates, otherwise both
// remain until the next refresh.
func (m *Mutator) PostComment(taskID, text string) {
	a := Activity{
		ID:           uuid.New().String()[:8],
		WorkspaceID:  m.store.ActiveWorkspace(),
		TaskID:       taskID,
		ActorType:    ActorUser,
		ActivityType: "comment",
		Title:        text,
		CreatedAt:    time.Now(),
	}
	m.store.PrependActivity(a)

	m.dispatch("post_comment", a.ID, func(ctx context.Context) error {
		return m.backend.CreateActivity(ctx, ActivityDraft{
			WorkspaceID: a.WorkspaceID,
			TaskID:      taskID,
			ActorType:   ActorUser,
			Title:       text,
		})
	})
}

// dispatch fires a backend command without awaiting it for UI purposes.
func (m *Mutator) dispatch(action, target string, cmd func(context.Context) error) {
	cid := uuid.New().String()[:8]
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := cmd(ctx); err != nil {
			// No rollback: stale optimistic state diverges until the next
			// authoritative event or manual refresh.
			m.logger.Warn("command rejected",
				"action", action, "target", target, "cid", cid, "error", err)
		}
	}()
}

// Wait blocks until all in-flight commands have settled.
func (m *Mutator) Wait() {
	m.wg.Wait()
}
