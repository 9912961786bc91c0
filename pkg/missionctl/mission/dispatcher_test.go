package mission

import (
	"context"
	"testing"
	"time"
)

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func startDispatcher(t *testing.T, s *Store, b *fakeBackend) *Dispatcher {
	t.Helper()
	d := NewDispatcher(s, b, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("dispatcher start: %v", err)
	}
	t.Cleanup(d.Stop)
	return d
}

func TestDispatcher_StreamsReachStore(t *testing.T) {
	t.Parallel()

	s := NewStore("W1", nil)
	s.ReplaceTasks([]Task{{ID: "t1", WorkspaceID: "W1", Status: TaskQueued}})
	b := &fakeBackend{}
	startDispatcher(t, s, b)

	b.hbHandler(HeartbeatEvent{Type: HeartbeatStarted, AgentRoleID: "A1", Timestamp: testTime(1)})
	b.actHandler(ActivityEvent{Type: ActivityCreated, WorkspaceID: "W1",
		Activity: &Activity{ID: "a1", WorkspaceID: "W1", Title: "x", CreatedAt: testTime(2)}})
	b.mentionHandler(MentionEvent{Type: MentionCreated, WorkspaceID: "W1",
		Mention: Mention{ID: "m1", WorkspaceID: "W1", Status: MentionPending}})
	b.taskHandler(TaskEvent{Type: TaskEventStarted, TaskID: "t1"})
	b.boardHandler(TaskBoardEvent{Type: BoardMoved, TaskID: "t1", Column: BoardReview})

	waitFor(t, func() bool {
		task, ok := s.Task("t1")
		return ok && task.Status == TaskExecuting && task.BoardColumn == BoardReview &&
			len(s.Activities()) == 1 && len(s.Mentions()) == 1 &&
			s.Heartbeats()["A1"].Status == HeartbeatRunning
	})
}

func TestDispatcher_TaskCreatedFetch(t *testing.T) {
	t.Parallel()

	s := NewStore("W1", nil)
	b := &fakeBackend{
		tasks: []Task{{ID: "t1", WorkspaceID: "W1", Title: "fetched", Status: TaskPending}},
	}
	startDispatcher(t, s, b)

	b.taskHandler(TaskEvent{Type: TaskEventCreated, TaskID: "t1"})

	waitFor(t, func() bool {
		task, ok := s.Task("t1")
		return ok && task.Title == "fetched"
	})
}

func TestDispatcher_TaskCreatedFetch_WorkspaceSwitched(t *testing.T) {
	t.Parallel()

	s := NewStore("W1", nil)
	b := &fakeBackend{
		tasks: []Task{{ID: "t1", WorkspaceID: "W1", Title: "fetched"}},
	}
	// Switch the active workspace while the fetch is in flight; the check
	// happens at resolution time, so the result must be discarded.
	fetched := make(chan struct{})
	b.onGetTask = func() {
		s.SetActiveWorkspace("W2")
		close(fetched)
	}
	startDispatcher(t, s, b)

	b.taskHandler(TaskEvent{Type: TaskEventCreated, TaskID: "t1"})
	<-fetched

	// Give the insert path a moment, then confirm the task stayed absent.
	time.Sleep(50 * time.Millisecond)
	if _, ok := s.Task("t1"); ok {
		t.Error("task inserted although the workspace changed before resolution")
	}
}

func TestDispatcher_TaskCreatedFetch_Failure(t *testing.T) {
	t.Parallel()

	s := NewStore("W1", nil)
	b := &fakeBackend{getTaskErr: context.DeadlineExceeded}
	fetched := make(chan struct{})
	b.onGetTask = func() { close(fetched) }
	d := startDispatcher(t, s, b)

	b.taskHandler(TaskEvent{Type: TaskEventCreated, TaskID: "t1"})
	<-fetched
	d.Stop() // drains the fetch goroutine

	// Logged and dropped: entity absent until the next bulk refresh.
	if _, ok := s.Task("t1"); ok {
		t.Error("task present despite fetch failure")
	}
}

func TestDispatcher_TaskCreated_KnownID(t *testing.T) {
	t.Parallel()

	s := NewStore("W1", nil)
	s.ReplaceTasks([]Task{{ID: "t1", WorkspaceID: "W1", Title: "local"}})
	b := &fakeBackend{
		tasks: []Task{{ID: "t1", WorkspaceID: "W1", Title: "remote"}},
	}
	d := startDispatcher(t, s, b)

	b.taskHandler(TaskEvent{Type: TaskEventCreated, TaskID: "t1"})
	d.Stop()

	// Known id: no fetch, local copy kept.
	task, _ := s.Task("t1")
	if task.Title != "local" {
		t.Errorf("known-id task_created refetched: title = %q", task.Title)
	}
}

func TestDispatcher_StopUnsubscribesOnce(t *testing.T) {
	t.Parallel()

	s := NewStore("W1", nil)
	b := &fakeBackend{}
	d := NewDispatcher(s, b, nil)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := b.subscriptions.Load(); got != 5 {
		t.Fatalf("subscriptions = %d, want 5", got)
	}

	d.Stop()
	d.Stop() // second call must not re-invoke the handles

	if got := b.unsubscribes.Load(); got != 5 {
		t.Errorf("unsubscribes = %d, want exactly 5", got)
	}
}

func TestDispatcher_WorkspaceIsolationViaStream(t *testing.T) {
	t.Parallel()

	s := NewStore("W1", nil)
	b := &fakeBackend{}
	startDispatcher(t, s, b)

	b.actHandler(ActivityEvent{Type: ActivityCreated, WorkspaceID: "W2",
		Activity: &Activity{ID: "a1", WorkspaceID: "W2", CreatedAt: testTime(1)}})
	b.mentionHandler(MentionEvent{Type: MentionCreated, WorkspaceID: "W2",
		Mention: Mention{ID: "m1", WorkspaceID: "W2"}})
	// Marker event to know the queue drained past the W2 events.
	b.actHandler(ActivityEvent{Type: ActivityCreated, WorkspaceID: "W1",
		Activity: &Activity{ID: "marker", WorkspaceID: "W1", CreatedAt: testTime(2)}})

	waitFor(t, func() bool { return len(s.Activities()) == 1 })
	if len(s.Mentions()) != 0 {
		t.Error("mention for workspace W2 merged while W1 active")
	}
	if s.Activities()[0].ID != "marker" {
		t.Error("activity for workspace W2 merged while W1 active")
	}
}
