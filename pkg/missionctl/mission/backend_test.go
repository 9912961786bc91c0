package mission

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeBackend is an in-memory Backend for tests. Handlers registered through
// the Subscribe methods can be driven directly via the emit helpers.
type fakeBackend struct {
	mu sync.Mutex

	tasks      []Task
	activities []Activity
	mentions   []Mention
	heartbeats []HeartbeatStatusInfo
	agents     []AgentRole

	listTasksErr  error
	getTaskErr    error
	commandErr    error
	onListTasks   func()
	onGetTask     func()
	commandCalls  []string
	unsubscribes  atomic.Int32
	subscriptions atomic.Int32

	hbHandler      func(HeartbeatEvent)
	actHandler     func(ActivityEvent)
	mentionHandler func(MentionEvent)
	taskHandler    func(TaskEvent)
	boardHandler   func(TaskBoardEvent)
}

func (f *fakeBackend) ListTasks(context.Context) ([]Task, error) {
	f.mu.Lock()
	hook := f.onListTasks
	tasks := append([]Task(nil), f.tasks...)
	err := f.listTasksErr
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return tasks, err
}

func (f *fakeBackend) GetTask(_ context.Context, taskID string) (*Task, error) {
	f.mu.Lock()
	hook := f.onGetTask
	err := f.getTaskErr
	var found *Task
	for i := range f.tasks {
		if f.tasks[i].ID == taskID {
			t := f.tasks[i]
			found = &t
			break
		}
	}
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (f *fakeBackend) ListActivities(context.Context, ActivityQuery) ([]Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Activity(nil), f.activities...), nil
}

func (f *fakeBackend) ListMentions(context.Context, MentionQuery) ([]Mention, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Mention(nil), f.mentions...), nil
}

func (f *fakeBackend) HeartbeatStatus(context.Context) ([]HeartbeatStatusInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]HeartbeatStatusInfo(nil), f.heartbeats...), nil
}

func (f *fakeBackend) AgentRoles(context.Context, bool) ([]AgentRole, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]AgentRole(nil), f.agents...), nil
}

func (f *fakeBackend) recordCommand(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commandCalls = append(f.commandCalls, name)
	return f.commandErr
}

func (f *fakeBackend) MoveTask(_ context.Context, taskID string, column BoardColumn) error {
	return f.recordCommand("move:" + taskID + ":" + string(column))
}

func (f *fakeBackend) AssignTask(_ context.Context, taskID, agentRoleID string) error {
	return f.recordCommand("assign:" + taskID + ":" + agentRoleID)
}

func (f *fakeBackend) TriggerHeartbeat(_ context.Context, agentRoleID string) error {
	return f.recordCommand("heartbeat:" + agentRoleID)
}

func (f *fakeBackend) CreateActivity(_ context.Context, draft ActivityDraft) error {
	return f.recordCommand("activity:" + draft.Title)
}

func (f *fakeBackend) subscribe() Unsubscribe {
	f.subscriptions.Add(1)
	return func() { f.unsubscribes.Add(1) }
}

func (f *fakeBackend) SubscribeHeartbeat(h func(HeartbeatEvent)) (Unsubscribe, error) {
	f.hbHandler = h
	return f.subscribe(), nil
}

func (f *fakeBackend) SubscribeActivity(h func(ActivityEvent)) (Unsubscribe, error) {
	f.actHandler = h
	return f.subscribe(), nil
}

func (f *fakeBackend) SubscribeMentions(h func(MentionEvent)) (Unsubscribe, error) {
	f.mentionHandler = h
	return f.subscribe(), nil
}

func (f *fakeBackend) SubscribeTasks(h func(TaskEvent)) (Unsubscribe, error) {
	f.taskHandler = h
	return f.subscribe(), nil
}

func (f *fakeBackend) SubscribeTaskBoard(h func(TaskBoardEvent)) (Unsubscribe, error) {
	f.boardHandler = h
	return f.subscribe(), nil
}

func (f *fakeBackend) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commandCalls...)
}
