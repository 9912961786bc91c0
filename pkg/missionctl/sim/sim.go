// Package sim is a demo backend for developing the dashboard without a live
// orchestrator: an in-memory workspace with seeded agents and tasks, cron
// driven synthetic heartbeat runs, and scripted task progression. Every
// mutation is echoed onto the event streams through the broadcaster, so a
// connected dashboard behaves exactly as against the real thing.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/jholhewres/missionctl/pkg/missionctl/gateway"
	"github.com/jholhewres/missionctl/pkg/missionctl/mission"
)

// Broadcaster pushes an event onto a named stream. Satisfied by
// *gateway.Server.
type Broadcaster interface {
	Broadcast(stream string, payload any)
}

// Simulator is an in-memory orchestrator stand-in.
type Simulator struct {
	mu sync.Mutex

	workspace  string
	agents     []mission.AgentRole
	tasks      map[string]*mission.Task
	taskOrder  []string
	activities []mission.Activity
	mentions   []mission.Mention
	heartbeats map[string]*mission.HeartbeatStatusInfo

	broadcast Broadcaster
	cron      *cron.Cron
	logger    *slog.Logger
}

var _ gateway.BackendAPI = (*Simulator)(nil)

// New creates a seeded simulator for one demo workspace.
func New(workspaceID string, b Broadcaster, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Simulator{
		workspace:  workspaceID,
		tasks:      make(map[string]*mission.Task),
		heartbeats: make(map[string]*mission.HeartbeatStatusInfo),
		broadcast:  b,
		cron:       cron.New(),
		logger:     logger.With("component", "sim"),
	}
	s.seed()
	return s
}

// SetBroadcaster wires the event sink. Must be called before Start; needed
// because the gateway server and the simulator reference each other.
func (s *Simulator) SetBroadcaster(b Broadcaster) {
	s.broadcast = b
}

// seed populates the demo workspace.
func (s *Simulator) seed() {
	now := time.Now()

	s.agents = []mission.AgentRole{
		{ID: "researcher", Name: "Researcher", Icon: "🔎", Color: "#4f8ef7", IsActive: true,
			HeartbeatEnabled: true, HeartbeatInterval: 45 * time.Second},
		{ID: "builder", Name: "Builder", Icon: "🔧", Color: "#f7a84f", IsActive: true,
			HeartbeatEnabled: true, HeartbeatInterval: 60 * time.Second, HeartbeatStagger: 20 * time.Second},
		{ID: "reviewer", Name: "Reviewer", Icon: "🧐", Color: "#7bc47b", IsActive: true,
			HeartbeatEnabled: false},
	}

	seedTasks := []mission.Task{
		{ID: "tsk-001", Title: "Survey connector protocols", Status: mission.TaskPending,
			BoardColumn: mission.BoardBacklog, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "tsk-002", Title: "Draft rollout plan", Status: mission.TaskQueued,
			BoardColumn: mission.BoardTodo, AssignedAgentRoleID: "researcher",
			Priority: 2, Labels: []string{"planning"}, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "tsk-003", Title: "Wire the staging pipeline", Status: mission.TaskExecuting,
			BoardColumn: mission.BoardInProgress, AssignedAgentRoleID: "builder",
			Priority: 1, CreatedAt: now.Add(-time.Hour)},
	}
	for i := range seedTasks {
		t := seedTasks[i]
		t.WorkspaceID = s.workspace
		t.UpdatedAt = now
		s.tasks[t.ID] = &t
		s.taskOrder = append(s.taskOrder, t.ID)
	}

	for _, a := range s.agents {
		s.heartbeats[a.ID] = &mission.HeartbeatStatusInfo{
			AgentRoleID:      a.ID,
			HeartbeatEnabled: a.HeartbeatEnabled,
			Status:           mission.HeartbeatSleeping,
		}
	}
}

// Start schedules the synthetic heartbeat runs.
func (s *Simulator) Start() error {
	s.mu.Lock()
	agents := append([]mission.AgentRole(nil), s.agents...)
	s.mu.Unlock()

	for _, a := range agents {
		if !a.HeartbeatEnabled {
			continue
		}
		agentID := a.ID
		interval := a.HeartbeatInterval
		if interval <= 0 {
			interval = time.Minute
		}
		spec := fmt.Sprintf("@every %s", interval)
		stagger := a.HeartbeatStagger
		if _, err := s.cron.AddFunc(spec, func() {
			if stagger > 0 {
				time.Sleep(stagger)
			}
			s.runHeartbeat(agentID)
		}); err != nil {
			return fmt.Errorf("schedule heartbeat for %s: %w", agentID, err)
		}
	}

	s.cron.Start()
	s.logger.Info("simulator started", "agents", len(agents))
	return nil
}

// Stop halts the heartbeat schedule.
func (s *Simulator) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// emit broadcasts one event when a broadcaster is wired.
func (s *Simulator) emit(stream string, payload any) {
	if s.broadcast != nil {
		s.broadcast.Broadcast(stream, payload)
	}
}

// runHeartbeat performs one synthetic heartbeat: started, then either
// work_found (advancing the agent's current task one lifecycle step) or
// no_work.
func (s *Simulator) runHeartbeat(agentID string) {
	now := time.Now()
	s.setHeartbeat(agentID, mission.HeartbeatRunning, nil)
	s.emit(gateway.StreamHeartbeat, mission.HeartbeatEvent{
		Type: mission.HeartbeatStarted, AgentRoleID: agentID, Timestamp: now,
	})

	advanced := s.advanceTaskFor(agentID)

	evType := mission.HeartbeatNoWork
	msg := "nothing to do"
	if advanced != "" {
		evType = mission.HeartbeatWorkFound
		msg = "progressed " + advanced
	}

	done := time.Now()
	s.setHeartbeat(agentID, mission.HeartbeatSleeping, &done)
	s.emit(gateway.StreamHeartbeat, mission.HeartbeatEvent{
		Type: evType, AgentRoleID: agentID, Message: msg, Timestamp: done,
	})
}

// setHeartbeat updates the stored status record.
func (s *Simulator) setHeartbeat(agentID string, state mission.HeartbeatState, last *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hb, ok := s.heartbeats[agentID]
	if !ok {
		hb = &mission.HeartbeatStatusInfo{AgentRoleID: agentID, HeartbeatEnabled: true}
		s.heartbeats[agentID] = hb
	}
	hb.Status = state
	if last != nil {
		hb.LastHeartbeatAt = last
	}
}

// statusStep is the scripted lifecycle progression.
var statusStep = map[mission.TaskStatus]struct {
	next  mission.TaskStatus
	event mission.TaskEventType
}{
	mission.TaskPending:   {mission.TaskQueued, mission.TaskEventQueued},
	mission.TaskQueued:    {mission.TaskPlanning, mission.TaskEventPlanning},
	mission.TaskPlanning:  {mission.TaskExecuting, mission.TaskEventStarted},
	mission.TaskExecuting: {mission.TaskCompleted, mission.TaskEventCompleted},
}

// advanceTaskFor moves the agent's first unfinished task one step and emits
// the matching task, board, and activity events. Returns the task id, or ""
// when the agent had no work.
func (s *Simulator) advanceTaskFor(agentID string) string {
	s.mu.Lock()

	var task *mission.Task
	for _, id := range s.taskOrder {
		t := s.tasks[id]
		if t.AssignedAgentRoleID == agentID {
			if _, ok := statusStep[t.Status]; ok {
				task = t
				break
			}
		}
	}
	if task == nil {
		s.mu.Unlock()
		return ""
	}

	step := statusStep[task.Status]
	task.Status = step.next
	task.UpdatedAt = time.Now()

	taskEv := mission.TaskEvent{Type: step.event, TaskID: task.ID, WorkspaceID: s.workspace}

	var boardEv *mission.TaskBoardEvent
	if step.next == mission.TaskCompleted {
		task.BoardColumn = mission.BoardDone
		boardEv = &mission.TaskBoardEvent{Type: mission.BoardMoved, TaskID: task.ID, Column: mission.BoardDone}
	} else if step.next == mission.TaskExecuting && task.BoardColumn != mission.BoardInProgress {
		task.BoardColumn = mission.BoardInProgress
		boardEv = &mission.TaskBoardEvent{Type: mission.BoardMoved, TaskID: task.ID, Column: mission.BoardInProgress}
	}

	activity := mission.Activity{
		ID:           uuid.New().String()[:8],
		WorkspaceID:  s.workspace,
		TaskID:       task.ID,
		AgentRoleID:  agentID,
		ActorType:    mission.ActorAgent,
		ActivityType: "status_change",
		Title:        fmt.Sprintf("%s → %s", task.Title, step.next),
		CreatedAt:    time.Now(),
	}
	s.activities = append([]mission.Activity{activity}, s.activities...)
	taskID := task.ID
	s.mu.Unlock()

	s.emit(gateway.StreamTask, taskEv)
	if boardEv != nil {
		s.emit(gateway.StreamTaskBoard, *boardEv)
	}
	s.emit(gateway.StreamActivity, mission.ActivityEvent{
		Type: mission.ActivityCreated, WorkspaceID: s.workspace, Activity: &activity,
	})

	return taskID
}

// ─── gateway.BackendAPI ───

func (s *Simulator) ListTasks(context.Context) ([]mission.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mission.Task, 0, len(s.taskOrder))
	for _, id := range s.taskOrder {
		out = append(out, *s.tasks[id])
	}
	return out, nil
}

func (s *Simulator) GetTask(_ context.Context, taskID string) (*mission.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tasks[taskID]; ok {
		dup := *t
		return &dup, nil
	}
	return nil, nil
}

func (s *Simulator) ListActivities(_ context.Context, q mission.ActivityQuery) ([]mission.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	limit := q.Limit
	if limit <= 0 || limit > len(s.activities) {
		limit = len(s.activities)
	}
	return append([]mission.Activity(nil), s.activities[:limit]...), nil
}

func (s *Simulator) ListMentions(_ context.Context, q mission.MentionQuery) ([]mission.Mention, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mission.Mention(nil), s.mentions...), nil
}

func (s *Simulator) HeartbeatStatus(context.Context) ([]mission.HeartbeatStatusInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mission.HeartbeatStatusInfo, 0, len(s.heartbeats))
	for _, hb := range s.heartbeats {
		out = append(out, *hb)
	}
	return out, nil
}

func (s *Simulator) AgentRoles(_ context.Context, includeInactive bool) ([]mission.AgentRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]mission.AgentRole, 0, len(s.agents))
	for _, a := range s.agents {
		if !includeInactive && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *Simulator) MoveTask(_ context.Context, taskID string, column mission.BoardColumn) error {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown task: %s", taskID)
	}
	t.BoardColumn = column
	t.UpdatedAt = time.Now()
	s.mu.Unlock()

	s.emit(gateway.StreamTaskBoard, mission.TaskBoardEvent{
		Type: mission.BoardMoved, TaskID: taskID, Column: column,
	})
	return nil
}

func (s *Simulator) AssignTask(_ context.Context, taskID, agentRoleID string) error {
	s.mu.Lock()
	t, ok := s.tasks[taskID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("unknown task: %s", taskID)
	}
	t.AssignedAgentRoleID = agentRoleID
	t.UpdatedAt = time.Now()
	s.mu.Unlock()
	return nil
}

func (s *Simulator) TriggerHeartbeat(_ context.Context, agentRoleID string) error {
	s.mu.Lock()
	_, ok := s.heartbeats[agentRoleID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown agent role: %s", agentRoleID)
	}
	go s.runHeartbeat(agentRoleID)
	return nil
}

func (s *Simulator) CreateActivity(_ context.Context, draft mission.ActivityDraft) error {
	activity := mission.Activity{
		ID:           uuid.New().String()[:8],
		WorkspaceID:  draft.WorkspaceID,
		TaskID:       draft.TaskID,
		AgentRoleID:  draft.AgentRoleID,
		ActorType:    draft.ActorType,
		ActivityType: "comment",
		Title:        draft.Title,
		Description:  draft.Description,
		CreatedAt:    time.Now(),
	}
	s.mu.Lock()
	s.activities = append([]mission.Activity{activity}, s.activities...)
	s.mu.Unlock()

	s.emit(gateway.StreamActivity, mission.ActivityEvent{
		Type: mission.ActivityCreated, WorkspaceID: draft.WorkspaceID, Activity: &activity,
	})
	return nil
}
