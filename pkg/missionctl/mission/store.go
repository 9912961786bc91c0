// Package mission – store.go implements the Entity Store: the in-memory
// authoritative client-side model of agents, tasks, activities, mentions,
// and heartbeat statuses. Bulk loads replace whole collections; event merges
// patch them incrementally. Reads hand out copied snapshots so view
// derivation never observes a half-applied merge.
package mission

import (
	"log/slog"
	"sort"
	"sync"
)

const (
	// MaxActivities bounds the activity collection to the most recent
	// entries; older activities fall off on prepend.
	MaxActivities = 200

	// MaxHeartbeatEvents bounds the recent-heartbeat list retained for the
	// feed composer.
	MaxHeartbeatEvents = 100
)

// Store holds the canonical entity collections for one UI session. All
// methods are safe for concurrent use; merges are atomic with respect to
// snapshot reads.
type Store struct {
	mu sync.RWMutex

	workspace  string
	agents     []AgentRole
	tasks      map[string]Task
	taskOrder  []string
	activities []Activity
	mentions   []Mention
	heartbeats map[string]HeartbeatStatusInfo

	// hbEvents is the bounded recent-heartbeat list, newest first.
	hbEvents []HeartbeatEvent

	logger *slog.Logger
}

// NewStore creates an empty store for the given active workspace.
func NewStore(workspaceID string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		workspace:  workspaceID,
		tasks:      make(map[string]Task),
		heartbeats: make(map[string]HeartbeatStatusInfo),
		logger:     logger.With("component", "store"),
	}
}

// ─── Workspace ───

// ActiveWorkspace returns the currently selected workspace id. Subscription
// handlers and in-flight loads read this at resolution time, never a value
// captured earlier.
func (s *Store) ActiveWorkspace() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspace
}

// SetActiveWorkspace switches the active workspace. The caller (refresher)
// is responsible for replacing the workspace-scoped collections afterwards.
func (s *Store) SetActiveWorkspace(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspace = workspaceID
}

// ─── Bulk replace (refresh semantics: full replace of the id set) ───

// ReplaceAgents swaps the agent role collection.
func (s *Store) ReplaceAgents(agents []AgentRole) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.agents = append([]AgentRole(nil), agents...)
}

// ReplaceTasks swaps the task collection.
func (s *Store) ReplaceTasks(tasks []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]Task, len(tasks))
	s.taskOrder = s.taskOrder[:0]
	for _, t := range tasks {
		if _, dup := s.tasks[t.ID]; dup {
			continue
		}
		s.tasks[t.ID] = t
		s.taskOrder = append(s.taskOrder, t.ID)
	}
}

// ReplaceActivities swaps the activity collection, keeping the bound.
func (s *Store) ReplaceActivities(activities []Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append([]Activity(nil), activities...)
	if len(s.activities) > MaxActivities {
		s.activities = s.activities[:MaxActivities]
	}
}

// ReplaceMentions swaps the mention collection.
func (s *Store) ReplaceMentions(mentions []Mention) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mentions = append([]Mention(nil), mentions...)
}

// ReplaceHeartbeats swaps the heartbeat status collection.
func (s *Store) ReplaceHeartbeats(infos []HeartbeatStatusInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats = make(map[string]HeartbeatStatusInfo, len(infos))
	for _, hb := range infos {
		s.heartbeats[hb.AgentRoleID] = hb
	}
}

// ─── Snapshot reads ───

// Agents returns a copy of the agent role collection.
func (s *Store) Agents() []AgentRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AgentRole(nil), s.agents...)
}

// AgentRole looks up a role by id.
func (s *Store) AgentRole(id string) (AgentRole, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.agents {
		if a.ID == id {
			return a, true
		}
	}
	return AgentRole{}, false
}

// Tasks returns the task collection in insertion order.
func (s *Store) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		if t, ok := s.tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Task looks up a task by id.
func (s *Store) Task(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	return t, ok
}

// HasTask reports whether the task id is known locally.
func (s *Store) HasTask(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tasks[id]
	return ok
}

// Activities returns a copy of the activity collection, newest first.
func (s *Store) Activities() []Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Activity(nil), s.activities...)
}

// Mentions returns a copy of the mention collection, newest first.
func (s *Store) Mentions() []Mention {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Mention(nil), s.mentions...)
}

// Heartbeats returns a copy of the per-agent heartbeat statuses.
func (s *Store) Heartbeats() map[string]HeartbeatStatusInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]HeartbeatStatusInfo, len(s.heartbeats))
	for k, v := range s.heartbeats {
		out[k] = v
	}
	return out
}

// RecentHeartbeatEvents returns a copy of the bounded recent-heartbeat list,
// newest first.
func (s *Store) RecentHeartbeatEvents() []HeartbeatEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]HeartbeatEvent(nil), s.hbEvents...)
}

// ColumnTasks projects the task collection onto the mission columns.
func (s *Store) ColumnTasks() map[MissionColumn][]Task {
	tasks := s.Tasks()
	out := make(map[MissionColumn][]Task, len(Columns))
	for _, t := range tasks {
		col := MapToColumn(t)
		out[col] = append(out[col], t)
	}
	return out
}

// ─── Event merges ───

// ApplyHeartbeat upserts the per-agent heartbeat status and records the
// event for the feed. Idempotent: re-applying the same event is a no-op in
// effect because status and timestamps derive from the event itself.
func (s *Store) ApplyHeartbeat(ev HeartbeatEvent) {
	if ev.AgentRoleID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	hb, ok := s.heartbeats[ev.AgentRoleID]
	if !ok {
		hb = HeartbeatStatusInfo{AgentRoleID: ev.AgentRoleID, HeartbeatEnabled: true}
	}
	hb.Status = ev.Type.stateFor()
	if ev.Type.terminal() {
		ts := ev.Timestamp
		hb.LastHeartbeatAt = &ts
	}
	if ev.NextRunAt != nil {
		next := *ev.NextRunAt
		hb.NextHeartbeatAt = &next
	}
	s.heartbeats[ev.AgentRoleID] = hb

	// Record for the feed, suppressing exact duplicates at the head so a
	// redelivered event does not double up.
	if len(s.hbEvents) > 0 && s.hbEvents[0].sameAs(ev) {
		return
	}
	s.hbEvents = append([]HeartbeatEvent{ev}, s.hbEvents...)
	if len(s.hbEvents) > MaxHeartbeatEvents {
		s.hbEvents = s.hbEvents[:MaxHeartbeatEvents]
	}
}

// ApplyActivity merges an activity stream event. Created events are gated on
// the active workspace and bounded; read/pinned flips apply by id regardless
// of workspace; all_read is workspace-filtered; deleted removes by id.
func (s *Store) ApplyActivity(ev ActivityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Type {
	case ActivityCreated:
		if ev.Activity == nil || ev.Activity.WorkspaceID != s.workspace {
			return
		}
		for _, a := range s.activities {
			if a.ID == ev.Activity.ID {
				return // already merged
			}
		}
		s.activities = append([]Activity{*ev.Activity}, s.activities...)
		if len(s.activities) > MaxActivities {
			s.activities = s.activities[:MaxActivities]
		}

	case ActivityRead:
		for i := range s.activities {
			if s.activities[i].ID == ev.ActivityID {
				s.activities[i].IsRead = ev.IsRead
				return
			}
		}

	case ActivityPinned:
		for i := range s.activities {
			if s.activities[i].ID == ev.ActivityID {
				s.activities[i].IsPinned = ev.IsPinned
				return
			}
		}

	case ActivityAllRead:
		if ev.WorkspaceID != s.workspace {
			return
		}
		for i := range s.activities {
			if s.activities[i].WorkspaceID == ev.WorkspaceID {
				s.activities[i].IsRead = true
			}
		}

	case ActivityDeleted:
		for i := range s.activities {
			if s.activities[i].ID == ev.ActivityID {
				s.activities = append(s.activities[:i:i], s.activities[i+1:]...)
				return
			}
		}
	}
}

// ApplyMention merges a mention stream event. Events for other workspaces
// are ignored entirely; created prepends, everything else replaces the full
// record by id.
func (s *Store) ApplyMention(ev MentionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ev.WorkspaceID != s.workspace {
		return
	}

	if ev.Type == MentionCreated {
		for _, m := range s.mentions {
			if m.ID == ev.Mention.ID {
				return
			}
		}
		s.mentions = append([]Mention{ev.Mention}, s.mentions...)
		return
	}

	for i := range s.mentions {
		if s.mentions[i].ID == ev.Mention.ID {
			if mentionRank(ev.Mention.Status) < mentionRank(s.mentions[i].Status) {
				// Backwards transition: merged as delivered, monotonicity
				// is the backend's concern.
				s.logger.Debug("mention status moved backwards",
					"mention", ev.Mention.ID,
					"from", s.mentions[i].Status,
					"to", ev.Mention.Status,
				)
			}
			s.mentions[i] = ev.Mention
			return
		}
	}
}

// ApplyTaskStatus patches a known task's status. Unknown ids are no-ops.
func (s *Store) ApplyTaskStatus(taskID string, status TaskStatus) {
	if status == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return
	}
	t.Status = status
	s.tasks[taskID] = t
}

// InsertTaskIfCurrent inserts a freshly fetched task only if its workspace
// is still the active one at resolution time. Returns false when discarded.
func (s *Store) InsertTaskIfCurrent(t Task) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.WorkspaceID != s.workspace {
		return false
	}
	if _, ok := s.tasks[t.ID]; ok {
		return true // already present; keep the merged copy
	}
	s.tasks[t.ID] = t
	s.taskOrder = append(s.taskOrder, t.ID)
	return true
}

// ApplyTaskBoard patches one board-level field on a task. Unknown ids are
// no-ops and never create a task.
func (s *Store) ApplyTaskBoard(ev TaskBoardEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[ev.TaskID]
	if !ok {
		return
	}

	switch ev.Type {
	case BoardMoved:
		t.BoardColumn = ev.Column
	case BoardPriorityChanged:
		t.Priority = ev.Priority
	case BoardLabelAdded:
		for _, l := range t.Labels {
			if l == ev.Label {
				s.tasks[ev.TaskID] = t
				return
			}
		}
		t.Labels = append(append([]string(nil), t.Labels...), ev.Label)
	case BoardLabelRemoved:
		labels := make([]string, 0, len(t.Labels))
		for _, l := range t.Labels {
			if l != ev.Label {
				labels = append(labels, l)
			}
		}
		t.Labels = labels
	case BoardDueDateChanged:
		t.DueDate = ev.DueDate
	case BoardEstimateChanged:
		t.EstimatedMinutes = ev.EstimatedMinutes
	default:
		return
	}

	s.tasks[ev.TaskID] = t
}

// ─── Optimistic writes (mutator) ───

// SetTaskBoardColumn optimistically moves a task on the board.
func (s *Store) SetTaskBoardColumn(taskID string, column BoardColumn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return
	}
	t.BoardColumn = column
	s.tasks[taskID] = t
}

// SetTaskAssignee optimistically (re)assigns a task ("" clears).
func (s *Store) SetTaskAssignee(taskID, agentRoleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return
	}
	t.AssignedAgentRoleID = agentRoleID
	s.tasks[taskID] = t
}

// SetHeartbeatRunning optimistically flips an agent's heartbeat to running.
func (s *Store) SetHeartbeatRunning(agentRoleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hb, ok := s.heartbeats[agentRoleID]
	if !ok {
		hb = HeartbeatStatusInfo{AgentRoleID: agentRoleID, HeartbeatEnabled: true}
	}
	hb.Status = HeartbeatRunning
	s.heartbeats[agentRoleID] = hb
}

// PrependActivity optimistically inserts a locally created activity.
func (s *Store) PrependActivity(a Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.activities {
		if existing.ID == a.ID {
			return
		}
	}
	s.activities = append([]Activity{a}, s.activities...)
	if len(s.activities) > MaxActivities {
		s.activities = s.activities[:MaxActivities]
	}
}

// SortTasksByCreated re-sorts the task iteration order by creation time,
// oldest first. Used after bulk loads so the board renders deterministically.
func (s *Store) SortTasksByCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.taskOrder, func(i, j int) bool {
		a, b := s.tasks[s.taskOrder[i]], s.tasks[s.taskOrder[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}
