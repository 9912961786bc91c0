// Package gateway – client.go implements mission.Backend over one WebSocket
// connection: correlated request/response for queries and commands, and
// demultiplexing of unsolicited events onto the five subscription streams.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jholhewres/missionctl/pkg/missionctl/mission"
)

// Client is a WebSocket-backed mission.Backend.
type Client struct {
	conn    *websocket.Conn
	logger  *slog.Logger
	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]chan wsMessage
	handlers map[string]map[string]func(json.RawMessage)
	closed   bool
	done     chan struct{}
}

var _ mission.Backend = (*Client)(nil)

// Dial connects to a gateway endpoint and starts the read loop.
func Dial(ctx context.Context, url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial gateway: %w", err)
	}

	c := &Client{
		conn:     conn,
		logger:   logger.With("component", "gateway_client"),
		pending:  make(map[string]chan wsMessage),
		handlers: make(map[string]map[string]func(json.RawMessage)),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Close shuts the connection down and fails all pending requests.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()
	return c.conn.Close()
}

// readLoop demultiplexes incoming messages: responses complete pending
// requests, events fan out to stream handlers.
func (c *Client) readLoop() {
	defer c.failPending()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("gateway read error", "error", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("gateway sent invalid JSON", "error", err)
			continue
		}

		switch msg.Type {
		case "res":
			c.mu.Lock()
			ch, ok := c.pending[msg.ID]
			if ok {
				delete(c.pending, msg.ID)
			}
			c.mu.Unlock()
			if ok {
				ch <- msg
			}

		case "event":
			c.mu.Lock()
			hs := make([]func(json.RawMessage), 0, len(c.handlers[msg.Event]))
			for _, h := range c.handlers[msg.Event] {
				hs = append(hs, h)
			}
			c.mu.Unlock()
			for _, h := range hs {
				h(msg.Payload)
			}
		}
	}
}

// failPending unblocks every in-flight request after the connection dies.
func (c *Client) failPending() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, ch := range c.pending {
		delete(c.pending, id)
		close(ch)
	}
}

// request performs one correlated round trip. out may be nil for commands.
func (c *Client) request(ctx context.Context, method string, params, out any) error {
	id := uuid.New().String()[:8]

	msg := wsMessage{Type: "req", ID: id, Method: method}
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		msg.Params = data
	}

	ch := make(chan wsMessage, 1)
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("gateway connection closed")
	}
	c.pending[id] = ch
	c.mu.Unlock()

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, data)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return fmt.Errorf("write request: %w", err)
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return fmt.Errorf("gateway connection closed")
		}
		if res.OK == nil || !*res.OK {
			return fmt.Errorf("gateway: %s", res.Error)
		}
		if out != nil && len(res.Payload) > 0 {
			if err := json.Unmarshal(res.Payload, out); err != nil {
				return fmt.Errorf("unmarshal payload: %w", err)
			}
		}
		return nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return ctx.Err()
	case <-c.done:
		return fmt.Errorf("gateway connection closed")
	}
}

// ─── Queries ───

func (c *Client) ListTasks(ctx context.Context) ([]mission.Task, error) {
	var tasks []mission.Task
	if err := c.request(ctx, methodTasksList, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) GetTask(ctx context.Context, taskID string) (*mission.Task, error) {
	var task mission.Task
	params := map[string]string{"task_id": taskID}
	if err := c.request(ctx, methodTasksGet, params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ListActivities(ctx context.Context, q mission.ActivityQuery) ([]mission.Activity, error) {
	var activities []mission.Activity
	if err := c.request(ctx, methodActivitiesList, q, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *Client) ListMentions(ctx context.Context, q mission.MentionQuery) ([]mission.Mention, error) {
	var mentions []mission.Mention
	if err := c.request(ctx, methodMentionsList, q, &mentions); err != nil {
		return nil, err
	}
	return mentions, nil
}

func (c *Client) HeartbeatStatus(ctx context.Context) ([]mission.HeartbeatStatusInfo, error) {
	var infos []mission.HeartbeatStatusInfo
	if err := c.request(ctx, methodHeartbeatStatus, nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

func (c *Client) AgentRoles(ctx context.Context, includeInactive bool) ([]mission.AgentRole, error) {
	var roles []mission.AgentRole
	params := map[string]bool{"include_inactive": includeInactive}
	if err := c.request(ctx, methodAgentsList, params, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// ─── Commands ───

func (c *Client) MoveTask(ctx context.Context, taskID string, column mission.BoardColumn) error {
	return c.request(ctx, methodTasksMove, map[string]string{
		"task_id": taskID,
		"column":  string(column),
	}, nil)
}

func (c *Client) AssignTask(ctx context.Context, taskID, agentRoleID string) error {
	return c.request(ctx, methodTasksAssign, map[string]string{
		"task_id":       taskID,
		"agent_role_id": agentRoleID,
	}, nil)
}

func (c *Client) TriggerHeartbeat(ctx context.Context, agentRoleID string) error {
	return c.request(ctx, methodHeartbeatTrigger, map[string]string{
		"agent_role_id": agentRoleID,
	}, nil)
}

func (c *Client) CreateActivity(ctx context.Context, draft mission.ActivityDraft) error {
	return c.request(ctx, methodActivitiesCreate, draft, nil)
}

// ─── Subscriptions ───

// subscribe registers a raw handler on a stream and returns its teardown.
func (c *Client) subscribe(stream string, h func(json.RawMessage)) (mission.Unsubscribe, error) {
	key := uuid.New().String()[:8]

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("gateway connection closed")
	}
	if c.handlers[stream] == nil {
		c.handlers[stream] = make(map[string]func(json.RawMessage))
	}
	c.handlers[stream][key] = h
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[stream], key)
	}, nil
}

// decodeInto wraps a typed handler with JSON decoding; undecodable payloads
// are logged and dropped.
func decodeInto[T any](c *Client, stream string, h func(T)) func(json.RawMessage) {
	return func(raw json.RawMessage) {
		var ev T
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.logger.Warn("undecodable event payload", "stream", stream, "error", err)
			return
		}
		h(ev)
	}
}

func (c *Client) SubscribeHeartbeat(h func(mission.HeartbeatEvent)) (mission.Unsubscribe, error) {
	return c.subscribe(StreamHeartbeat, decodeInto(c, StreamHeartbeat, h))
}

func (c *Client) SubscribeActivity(h func(mission.ActivityEvent)) (mission.Unsubscribe, error) {
	return c.subscribe(StreamActivity, decodeInto(c, StreamActivity, h))
}

func (c *Client) SubscribeMentions(h func(mission.MentionEvent)) (mission.Unsubscribe, error) {
	return c.subscribe(StreamMention, decodeInto(c, StreamMention, h))
}

func (c *Client) SubscribeTasks(h func(mission.TaskEvent)) (mission.Unsubscribe, error) {
	return c.subscribe(StreamTask, decodeInto(c, StreamTask, h))
}

func (c *Client) SubscribeTaskBoard(h func(mission.TaskBoardEvent)) (mission.Unsubscribe, error) {
	return c.subscribe(StreamTaskBoard, decodeInto(c, StreamTaskBoard, h))
}
