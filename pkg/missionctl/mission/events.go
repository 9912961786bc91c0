// Package mission – events.go defines the five transient event types the
// backend emits. Events are not stored; each carries enough information to
// update exactly one entity class.
package mission

import "time"

// ─── Heartbeat Events ───

// HeartbeatEventType identifies a heartbeat lifecycle event.
type HeartbeatEventType string

const (
	HeartbeatStarted   HeartbeatEventType = "started"
	HeartbeatCompleted HeartbeatEventType = "completed"
	HeartbeatNoWork    HeartbeatEventType = "no_work"
	HeartbeatWorkFound HeartbeatEventType = "work_found"
	HeartbeatFailed    HeartbeatEventType = "error"
)

// HeartbeatEvent reports a heartbeat run transition for one agent role.
type HeartbeatEvent struct {
	Type        HeartbeatEventType `json:"type"`
	AgentRoleID string             `json:"agent_role_id"`
	AgentName   string             `json:"agent_name,omitempty"`
	Message     string             `json:"message,omitempty"`
	NextRunAt   *time.Time         `json:"next_run_at,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

// sameAs reports whether two events describe the same heartbeat transition.
// Compared by value: a redelivered event decoded from the wire carries a
// fresh NextRunAt pointer, so plain struct equality would miss it.
func (e HeartbeatEvent) sameAs(o HeartbeatEvent) bool {
	if e.Type != o.Type || e.AgentRoleID != o.AgentRoleID || !e.Timestamp.Equal(o.Timestamp) {
		return false
	}
	if (e.NextRunAt == nil) != (o.NextRunAt == nil) {
		return false
	}
	return e.NextRunAt == nil || e.NextRunAt.Equal(*o.NextRunAt)
}

// terminal reports whether the event type ends a heartbeat run. Only
// terminal events advance LastHeartbeatAt.
func (t HeartbeatEventType) terminal() bool {
	return t == HeartbeatCompleted || t == HeartbeatNoWork || t == HeartbeatWorkFound
}

// stateFor derives the heartbeat run state from the event type.
func (t HeartbeatEventType) stateFor() HeartbeatState {
	switch t {
	case HeartbeatStarted:
		return HeartbeatRunning
	case HeartbeatFailed:
		return HeartbeatError
	default:
		return HeartbeatSleeping
	}
}

// ─── Activity Events ───

// ActivityEventType identifies an activity stream event.
type ActivityEventType string

const (
	ActivityCreated ActivityEventType = "created"
	ActivityRead    ActivityEventType = "read"
	ActivityPinned  ActivityEventType = "pinned"
	ActivityAllRead ActivityEventType = "all_read"
	ActivityDeleted ActivityEventType = "deleted"
)

// ActivityEvent carries an activity feed change. Created events carry the
// full record; flag flips and deletes reference it by id.
type ActivityEvent struct {
	Type        ActivityEventType `json:"type"`
	WorkspaceID string            `json:"workspace_id"`
	ActivityID  string            `json:"activity_id,omitempty"`
	Activity    *Activity         `json:"activity,omitempty"`
	IsRead      bool              `json:"is_read,omitempty"`
	IsPinned    bool              `json:"is_pinned,omitempty"`
}

// ─── Mention Events ───

// MentionEventType identifies a mention stream event.
type MentionEventType string

const (
	MentionCreated MentionEventType = "created"
	MentionUpdated MentionEventType = "updated"
)

// MentionEvent carries a full mention record. Created prepends; every other
// type replaces the record by id.
type MentionEvent struct {
	Type        MentionEventType `json:"type"`
	WorkspaceID string           `json:"workspace_id"`
	Mention     Mention          `json:"mention"`
}

// ─── Task Events ───

// TaskEventType identifies a task lifecycle event.
type TaskEventType string

const (
	TaskEventCreated   TaskEventType = "task_created"
	TaskEventQueued    TaskEventType = "task_queued"
	TaskEventPlanning  TaskEventType = "task_planning"
	TaskEventStarted   TaskEventType = "task_started"
	TaskEventBlocked   TaskEventType = "task_blocked"
	TaskEventPaused    TaskEventType = "task_paused"
	TaskEventResumed   TaskEventType = "task_resumed"
	TaskEventCompleted TaskEventType = "task_completed"
	TaskEventFailed    TaskEventType = "task_failed"
	TaskEventCancelled TaskEventType = "task_cancelled"
	TaskEventStatus    TaskEventType = "task_status"
)

// taskEventStatus maps lifecycle event types onto the status they imply.
// task_created and task_status are handled separately by the dispatcher.
var taskEventStatus = map[TaskEventType]TaskStatus{
	TaskEventQueued:    TaskQueued,
	TaskEventPlanning:  TaskPlanning,
	TaskEventStarted:   TaskExecuting,
	TaskEventBlocked:   TaskBlocked,
	TaskEventPaused:    TaskPaused,
	TaskEventResumed:   TaskExecuting,
	TaskEventCompleted: TaskCompleted,
	TaskEventFailed:    TaskFailed,
	TaskEventCancelled: TaskCancelled,
}

// TaskEvent reports a task lifecycle transition. Fields never present on the
// event (board column, labels, ...) are left untouched on merge.
type TaskEvent struct {
	Type        TaskEventType `json:"type"`
	TaskID      string        `json:"task_id"`
	WorkspaceID string        `json:"workspace_id,omitempty"`
	// Status is only meaningful for task_status events.
	Status TaskStatus `json:"status,omitempty"`
}

// ─── Task Board Events ───

// TaskBoardEventType identifies a board-level field change.
type TaskBoardEventType string

const (
	BoardMoved           TaskBoardEventType = "moved"
	BoardPriorityChanged TaskBoardEventType = "priority_changed"
	BoardLabelAdded      TaskBoardEventType = "label_added"
	BoardLabelRemoved    TaskBoardEventType = "label_removed"
	BoardDueDateChanged  TaskBoardEventType = "due_date_changed"
	BoardEstimateChanged TaskBoardEventType = "estimate_changed"
)

// TaskBoardEvent is a field-level patch on one task. Events for unknown task
// ids are no-ops.
type TaskBoardEvent struct {
	Type             TaskBoardEventType `json:"type"`
	TaskID           string             `json:"task_id"`
	Column           BoardColumn        `json:"column,omitempty"`
	Priority         int                `json:"priority,omitempty"`
	Label            string             `json:"label,omitempty"`
	DueDate          *time.Time         `json:"due_date,omitempty"`
	EstimatedMinutes int                `json:"estimated_minutes,omitempty"`
}
