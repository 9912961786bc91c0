// Package mission – backend.go declares the consumed backend contract. The
// transport behind it is opaque; the concrete implementation in this repo is
// the WebSocket gateway client, but anything satisfying Backend works.
package mission

import "context"

// Unsubscribe tears down a subscription. Must be invoked exactly once; the
// dispatcher guards its own teardown with sync.Once.
type Unsubscribe func()

// ActivityQuery filters a bulk activity load.
type ActivityQuery struct {
	WorkspaceID string `json:"workspace_id"`
	Limit       int    `json:"limit,omitempty"`
}

// MentionQuery filters a bulk mention load.
type MentionQuery struct {
	WorkspaceID string `json:"workspace_id"`
	Limit       int    `json:"limit,omitempty"`
}

// ActivityDraft is the payload for a user-created activity (comment).
type ActivityDraft struct {
	WorkspaceID string    `json:"workspace_id"`
	TaskID      string    `json:"task_id,omitempty"`
	AgentRoleID string    `json:"agent_role_id,omitempty"`
	ActorType   ActorType `json:"actor_type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
}

// Backend is the orchestrator-side contract the core consumes: bulk queries
// for the refresher, fire-and-forget commands for the mutator, and the five
// event subscription entry points for the dispatcher.
//
// Command responses are not required for UI correctness; callers log errors
// and move on.
type Backend interface {
	// Bulk queries.
	ListTasks(ctx context.Context) ([]Task, error)
	GetTask(ctx context.Context, taskID string) (*Task, error)
	ListActivities(ctx context.Context, q ActivityQuery) ([]Activity, error)
	ListMentions(ctx context.Context, q MentionQuery) ([]Mention, error)
	HeartbeatStatus(ctx context.Context) ([]HeartbeatStatusInfo, error)
	AgentRoles(ctx context.Context, includeInactive bool) ([]AgentRole, error)

	// Commands.
	MoveTask(ctx context.Context, taskID string, column BoardColumn) error
	// AssignTask with agentRoleID == "" clears the assignment.
	AssignTask(ctx context.Context, taskID, agentRoleID string) error
	TriggerHeartbeat(ctx context.Context, agentRoleID string) error
	CreateActivity(ctx context.Context, draft ActivityDraft) error

	// Subscriptions. Each handler is called from the transport's delivery
	// goroutine in per-stream arrival order.
	SubscribeHeartbeat(h func(HeartbeatEvent)) (Unsubscribe, error)
	SubscribeActivity(h func(ActivityEvent)) (Unsubscribe, error)
	SubscribeMentions(h func(MentionEvent)) (Unsubscribe, error)
	SubscribeTasks(h func(TaskEvent)) (Unsubscribe, error)
	SubscribeTaskBoard(h func(TaskBoardEvent)) (Unsubscribe, error)
}
