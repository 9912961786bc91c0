// Package mission – dispatcher.go subscribes to the five backend event
// streams and applies each event to the store. All five streams are fanned
// into one buffered ingestion channel drained by a single consumer
// goroutine, so merges happen strictly in arrival order with no cross-stream
// ordering assumptions.
//
// Subscriptions are established once per session and read current store
// state through the stable *Store handle, never through values captured at
// subscription time. Re-subscribing on state change is an explicit
// anti-goal: event delivery must not be missed during a resubscribe window.
package mission

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	// ingestBuffer sizes the fan-in channel. Full-buffer drops are logged;
	// the next refresh reconciles anything lost.
	ingestBuffer = 512

	// fetchTimeout bounds the fetch-on-demand lookup after a task_created
	// event.
	fetchTimeout = 10 * time.Second
)

// envelope is the typed fan-in message. Exactly one field is set.
type envelope struct {
	heartbeat *HeartbeatEvent
	activity  *ActivityEvent
	mention   *MentionEvent
	task      *TaskEvent
	board     *TaskBoardEvent
}

// Dispatcher owns the five event subscriptions for one session.
type Dispatcher struct {
	store   *Store
	backend Backend
	logger  *slog.Logger

	ingest chan envelope
	unsubs []Unsubscribe

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher bound to a store and backend.
func NewDispatcher(store *Store, backend Backend, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		store:   store,
		backend: backend,
		logger:  logger.With("component", "dispatcher"),
		ingest:  make(chan envelope, ingestBuffer),
		done:    make(chan struct{}),
	}
}

// Start establishes the five subscriptions and launches the consumer. On a
// subscription failure everything already subscribed is torn down and the
// error returned.
func (d *Dispatcher) Start(ctx context.Context) error {
	subs := []struct {
		name string
		sub  func() (Unsubscribe, error)
	}{
		{"heartbeat", func() (Unsubscribe, error) {
			return d.backend.SubscribeHeartbeat(func(ev HeartbeatEvent) {
				d.enqueue("heartbeat", envelope{heartbeat: &ev})
			})
		}},
		{"activity", func() (Unsubscribe, error) {
			return d.backend.SubscribeActivity(func(ev ActivityEvent) {
				d.enqueue("activity", envelope{activity: &ev})
			})
		}},
		{"mention", func() (Unsubscribe, error) {
			return d.backend.SubscribeMentions(func(ev MentionEvent) {
				d.enqueue("mention", envelope{mention: &ev})
			})
		}},
		{"task", func() (Unsubscribe, error) {
			return d.backend.SubscribeTasks(func(ev TaskEvent) {
				d.enqueue("task", envelope{task: &ev})
			})
		}},
		{"task_board", func() (Unsubscribe, error) {
			return d.backend.SubscribeTaskBoard(func(ev TaskBoardEvent) {
				d.enqueue("task_board", envelope{board: &ev})
			})
		}},
	}

	for _, s := range subs {
		unsub, err := s.sub()
		if err != nil {
			d.logger.Error("subscription failed", "stream", s.name, "error", err)
			d.teardown()
			return err
		}
		d.unsubs = append(d.unsubs, unsub)
	}

	d.wg.Add(1)
	go d.consume(ctx)

	d.logger.Info("dispatcher started", "streams", len(d.unsubs))
	return nil
}

// Stop tears down the subscriptions and stops the consumer. Safe to call
// more than once; each unsubscribe handle is invoked exactly once.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.teardown()
		close(d.done)
	})
	d.wg.Wait()
}

func (d *Dispatcher) teardown() {
	for _, unsub := range d.unsubs {
		unsub()
	}
	d.unsubs = nil
}

// enqueue pushes an event onto the ingestion channel without ever blocking
// the transport's delivery goroutine.
func (d *Dispatcher) enqueue(stream string, env envelope) {
	select {
	case d.ingest <- env:
	case <-d.done:
	default:
		d.logger.Warn("ingest buffer full, event dropped", "stream", stream)
	}
}

// consume drains the ingestion channel in arrival order.
func (d *Dispatcher) consume(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case env := <-d.ingest:
			d.apply(ctx, env)
		case <-d.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// apply routes one envelope to its merge rule. Nothing here propagates an
// error: unknown-id merges are no-ops and failed fetches are logged and
// dropped.
func (d *Dispatcher) apply(ctx context.Context, env envelope) {
	switch {
	case env.heartbeat != nil:
		d.store.ApplyHeartbeat(*env.heartbeat)
	case env.activity != nil:
		d.store.ApplyActivity(*env.activity)
	case env.mention != nil:
		d.store.ApplyMention(*env.mention)
	case env.task != nil:
		d.applyTask(ctx, *env.task)
	case env.board != nil:
		d.store.ApplyTaskBoard(*env.board)
	}
}

// applyTask merges a task lifecycle event. task_created for an unknown id
// triggers an async fetch of the full task; everything else is a status
// patch via the fixed lookup table.
func (d *Dispatcher) applyTask(ctx context.Context, ev TaskEvent) {
	switch ev.Type {
	case TaskEventCreated:
		if d.store.HasTask(ev.TaskID) {
			return
		}
		d.wg.Add(1)
		go d.fetchTask(ctx, ev.TaskID)

	case TaskEventStatus:
		d.store.ApplyTaskStatus(ev.TaskID, ev.Status)

	default:
		status, ok := taskEventStatus[ev.Type]
		if !ok {
			d.logger.Debug("unknown task event type", "type", ev.Type, "task", ev.TaskID)
			return
		}
		d.store.ApplyTaskStatus(ev.TaskID, status)
	}
}

// fetchTask loads the full task after a task_created event. The active
// workspace is re-checked inside the store at resolution time; if the user
// switched workspaces while the fetch was in flight the result is discarded.
func (d *Dispatcher) fetchTask(ctx context.Context, taskID string) {
	defer d.wg.Done()

	fctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	task, err := d.backend.GetTask(fctx, taskID)
	if err != nil {
		// The task stays absent until the next bulk refresh.
		d.logger.Warn("task fetch failed", "task", taskID, "error", err)
		return
	}
	if task == nil {
		return
	}
	if !d.store.InsertTaskIfCurrent(*task) {
		d.logger.Debug("fetched task discarded, workspace changed",
			"task", taskID, "workspace", task.WorkspaceID)
	}
}
