// Package mission – types.go defines the entity model for the Mission Control
// live-state core: agent roles, tasks, activities, mentions, and per-agent
// heartbeat status. These are the canonical client-side shapes kept in sync
// with the backend orchestrator by the dispatcher and refresher.
package mission

import (
	"time"
)

// ─── Agent Roles ───

// AgentRole represents a configured agent identity. Roles are created and
// edited by an external editor; the core only reads them and merges updates
// by id.
type AgentRole struct {
	// ID is the unique role identifier.
	ID string `json:"id"`

	// Name is the human-readable role name (e.g., "Researcher").
	Name string `json:"name"`

	// Icon is the emoji or icon key shown on the board.
	Icon string `json:"icon,omitempty"`

	// Color is the accent color for this role.
	Color string `json:"color,omitempty"`

	// IsActive indicates if the role is currently enabled.
	IsActive bool `json:"is_active"`

	// HeartbeatEnabled indicates if periodic heartbeats run for this role.
	HeartbeatEnabled bool `json:"heartbeat_enabled"`

	// HeartbeatInterval is the configured heartbeat period.
	HeartbeatInterval time.Duration `json:"heartbeat_interval,omitempty"`

	// HeartbeatStagger offsets this role's heartbeat from the others.
	HeartbeatStagger time.Duration `json:"heartbeat_stagger,omitempty"`
}

// ─── Heartbeat Status ───

// HeartbeatState is the event-driven run state of an agent's heartbeat.
type HeartbeatState string

const (
	HeartbeatRunning  HeartbeatState = "running"
	HeartbeatSleeping HeartbeatState = "sleeping"
	HeartbeatError    HeartbeatState = "error"
)

// HeartbeatStatusInfo is the per-agent heartbeat record. It is mutated
// exclusively by heartbeat events, never polled.
type HeartbeatStatusInfo struct {
	// AgentRoleID is the role this status belongs to (1:1).
	AgentRoleID string `json:"agent_role_id"`

	// HeartbeatEnabled mirrors the role's heartbeat configuration.
	HeartbeatEnabled bool `json:"heartbeat_enabled"`

	// Status is the current run state.
	Status HeartbeatState `json:"status"`

	// LastHeartbeatAt is when the last heartbeat finished. Only terminal
	// event types (completed, no_work, work_found) advance it.
	LastHeartbeatAt *time.Time `json:"last_heartbeat_at,omitempty"`

	// NextHeartbeatAt is when the next heartbeat is expected.
	NextHeartbeatAt *time.Time `json:"next_heartbeat_at,omitempty"`
}

// ─── Tasks ───

// TaskStatus is the broad task lifecycle state.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskQueued    TaskStatus = "queued"
	TaskPlanning  TaskStatus = "planning"
	TaskExecuting TaskStatus = "executing"
	TaskBlocked   TaskStatus = "blocked"
	TaskPaused    TaskStatus = "paused"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// BoardColumn is the backend-native workflow stage on a task. It is coarser
// than TaskStatus and may lag or disagree with it.
type BoardColumn string

const (
	BoardBacklog    BoardColumn = "backlog"
	BoardTodo       BoardColumn = "todo"
	BoardInProgress BoardColumn = "in_progress"
	BoardReview     BoardColumn = "review"
	BoardDone       BoardColumn = "done"

	// BoardAssigned and BoardInbox are legacy values some backends still
	// emit; they project onto the mission column of the same name.
	BoardAssigned BoardColumn = "assigned"
	BoardInbox    BoardColumn = "inbox"
)

// Task is a unit of agent work. A task belongs to exactly one workspace; the
// core only ever holds tasks for the currently selected workspace.
type Task struct {
	// ID is the unique task identifier.
	ID string `json:"id"`

	// WorkspaceID is the workspace this task belongs to.
	WorkspaceID string `json:"workspace_id"`

	// Title is the short task description.
	Title string `json:"title"`

	// Prompt is the full instruction given to the agent.
	Prompt string `json:"prompt,omitempty"`

	// Status is the lifecycle state.
	Status TaskStatus `json:"status"`

	// BoardColumn is the workflow stage ("" = not placed on the board yet).
	BoardColumn BoardColumn `json:"board_column,omitempty"`

	// AssignedAgentRoleID is the assigned role ("" = unassigned). Weak
	// reference: lookup only, no ownership.
	AssignedAgentRoleID string `json:"assigned_agent_role_id,omitempty"`

	// Priority is the task priority (1-5, 1=highest, 0=unset).
	Priority int `json:"priority,omitempty"`

	// Labels are arbitrary tags for organization.
	Labels []string `json:"labels,omitempty"`

	// DueDate is the optional deadline.
	DueDate *time.Time `json:"due_date,omitempty"`

	// EstimatedMinutes is the optional effort estimate.
	EstimatedMinutes int `json:"estimated_minutes,omitempty"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the task was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// ─── Activities ───

// ActorType identifies who performed an activity.
type ActorType string

const (
	ActorAgent  ActorType = "agent"
	ActorUser   ActorType = "user"
	ActorSystem ActorType = "system"
)

// Activity is an entry in the workspace activity feed. Immutable once
// created except for the IsRead/IsPinned flags and deletion.
type Activity struct {
	// ID is the unique activity identifier.
	ID string `json:"id"`

	// WorkspaceID is the workspace this activity belongs to.
	WorkspaceID string `json:"workspace_id"`

	// TaskID is the related task (optional).
	TaskID string `json:"task_id,omitempty"`

	// AgentRoleID is the role that performed the activity (optional).
	AgentRoleID string `json:"agent_role_id,omitempty"`

	// ActorType is who performed the activity.
	ActorType ActorType `json:"actor_type"`

	// ActivityType categorizes the activity (comment, status_change, ...).
	ActivityType string `json:"activity_type"`

	// Title is the short human-readable summary.
	Title string `json:"title"`

	// Description is the optional detail text.
	Description string `json:"description,omitempty"`

	// IsRead indicates if the activity has been read.
	IsRead bool `json:"is_read"`

	// IsPinned indicates if the activity is pinned.
	IsPinned bool `json:"is_pinned"`

	// CreatedAt is when the activity occurred.
	CreatedAt time.Time `json:"created_at"`
}

// ─── Mentions ───

// MentionStatus is the handling state of a mention. Transitions are expected
// to move forward only; the core merges whatever the backend delivers and
// does not enforce monotonicity itself.
type MentionStatus string

const (
	MentionPending      MentionStatus = "pending"
	MentionAcknowledged MentionStatus = "acknowledged"
	MentionCompleted    MentionStatus = "completed"
	MentionDismissed    MentionStatus = "dismissed"
)

// Mention is a request for attention directed at the user or an agent.
type Mention struct {
	// ID is the unique mention identifier.
	ID string `json:"id"`

	// WorkspaceID is the workspace this mention belongs to.
	WorkspaceID string `json:"workspace_id"`

	// TaskID is the related task (optional).
	TaskID string `json:"task_id,omitempty"`

	// AgentRoleID is the role that raised the mention (optional).
	AgentRoleID string `json:"agent_role_id,omitempty"`

	// Status is the handling state.
	Status MentionStatus `json:"status"`

	// Content is the mention text.
	Content string `json:"content"`

	// CreatedAt is when the mention was raised.
	CreatedAt time.Time `json:"created_at"`
}

// mentionRank orders mention statuses for the forward-only expectation.
// Used for diagnostics only; merges are never rejected on rank.
func mentionRank(s MentionStatus) int {
	switch s {
	case MentionPending:
		return 0
	case MentionAcknowledged:
		return 1
	case MentionCompleted, MentionDismissed:
		return 2
	default:
		return -1
	}
}
