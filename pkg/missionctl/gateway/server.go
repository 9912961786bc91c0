// Package gateway – server.go is the orchestrator-side half of the protocol:
// it upgrades HTTP connections, dispatches requests against a BackendAPI,
// and broadcasts entity events to every connected dashboard.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/jholhewres/missionctl/pkg/missionctl/mission"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// BackendAPI is what the server dispatches requests against: the query and
// command surface of mission.Backend, without the subscription entry points
// (those are realized by the event broadcast).
type BackendAPI interface {
	ListTasks(ctx context.Context) ([]mission.Task, error)
	GetTask(ctx context.Context, taskID string) (*mission.Task, error)
	ListActivities(ctx context.Context, q mission.ActivityQuery) ([]mission.Activity, error)
	ListMentions(ctx context.Context, q mission.MentionQuery) ([]mission.Mention, error)
	HeartbeatStatus(ctx context.Context) ([]mission.HeartbeatStatusInfo, error)
	AgentRoles(ctx context.Context, includeInactive bool) ([]mission.AgentRole, error)

	MoveTask(ctx context.Context, taskID string, column mission.BoardColumn) error
	AssignTask(ctx context.Context, taskID, agentRoleID string) error
	TriggerHeartbeat(ctx context.Context, agentRoleID string) error
	CreateActivity(ctx context.Context, draft mission.ActivityDraft) error
}

// Server handles WebSocket dashboard connections.
type Server struct {
	api    BackendAPI
	logger *slog.Logger

	mu    sync.Mutex
	conns map[*serverConn]struct{}
}

// serverConn is one connected dashboard with its write lock.
type serverConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (sc *serverConn) send(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	_ = sc.conn.WriteMessage(websocket.TextMessage, data)
}

// NewServer creates a gateway server over the given backend API.
func NewServer(api BackendAPI, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		api:    api,
		logger: logger.With("component", "gateway_server"),
		conns:  make(map[*serverConn]struct{}),
	}
}

// Broadcast pushes an event to every connected dashboard.
func (s *Server) Broadcast(stream string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("unmarshalable event payload", "stream", stream, "error", err)
		return
	}
	msg := wsMessage{Type: "event", Event: stream, Payload: data}

	s.mu.Lock()
	conns := make([]*serverConn, 0, len(s.conns))
	for sc := range s.conns {
		conns = append(conns, sc)
	}
	s.mu.Unlock()

	for _, sc := range conns {
		sc.send(msg)
	}
}

// ServeHTTP upgrades the connection and runs the request loop.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	sc := &serverConn{conn: conn}
	defer conn.Close()

	s.mu.Lock()
	s.conns[sc] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, sc)
		s.mu.Unlock()
	}()

	s.logger.Info("dashboard connected", "remote", r.RemoteAddr)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.respond(sc, "", false, nil, "invalid JSON")
			continue
		}
		if msg.Type != "req" {
			s.respond(sc, msg.ID, false, nil, "expected type=req")
			continue
		}

		s.dispatch(r.Context(), sc, msg)
	}
}

// respond sends one res message.
func (s *Server) respond(sc *serverConn, id string, ok bool, payload any, errMsg string) {
	msg := wsMessage{Type: "res", ID: id}
	boolVal := ok
	msg.OK = &boolVal
	if errMsg != "" {
		msg.Error = errMsg
	}
	if payload != nil {
		data, _ := json.Marshal(payload)
		msg.Payload = data
	}
	sc.send(msg)
}

// dispatch routes one request to the backend API.
func (s *Server) dispatch(ctx context.Context, sc *serverConn, msg wsMessage) {
	switch msg.Method {
	case methodTasksList:
		tasks, err := s.api.ListTasks(ctx)
		s.reply(sc, msg.ID, tasks, err)

	case methodTasksGet:
		var params struct {
			TaskID string `json:"task_id"`
		}
		if err := json.Unmarshal(msg.Params, &params); err != nil || params.TaskID == "" {
			s.respond(sc, msg.ID, false, nil, "missing task_id")
			return
		}
		task, err := s.api.GetTask(ctx, params.TaskID)
		if err == nil && task == nil {
			s.respond(sc, msg.ID, false, nil, "task not found: "+params.TaskID)
			return
		}
		s.reply(sc, msg.ID, task, err)

	case methodActivitiesList:
		var q mission.ActivityQuery
		if err := json.Unmarshal(msg.Params, &q); err != nil {
			s.respond(sc, msg.ID, false, nil, "invalid query")
			return
		}
		activities, err := s.api.ListActivities(ctx, q)
		s.reply(sc, msg.ID, activities, err)

	case methodMentionsList:
		var q mission.MentionQuery
		if err := json.Unmarshal(msg.Params, &q); err != nil {
			s.respond(sc, msg.ID, false, nil, "invalid query")
			return
		}
		mentions, err := s.api.ListMentions(ctx, q)
		s.reply(sc, msg.ID, mentions, err)

	case methodHeartbeatStatus:
		infos, err := s.api.HeartbeatStatus(ctx)
		s.reply(sc, msg.ID, infos, err)

	case methodAgentsList:
		var params struct {
			IncludeInactive bool `json:"include_inactive"`
		}
		if len(msg.Params) > 0 {
			_ = json.Unmarshal(msg.Params, &params)
		}
		roles, err := s.api.AgentRoles(ctx, params.IncludeInactive)
		s.reply(sc, msg.ID, roles, err)

	case methodTasksMove:
		var params struct {
			TaskID string `json:"task_id"`
			Column string `json:"column"`
		}
		if err := json.Unmarshal(msg.Params, &params); err != nil || params.TaskID == "" {
			s.respond(sc, msg.ID, false, nil, "missing task_id or column")
			return
		}
		s.reply(sc, msg.ID, nil, s.api.MoveTask(ctx, params.TaskID, mission.BoardColumn(params.Column)))

	case methodTasksAssign:
		var params struct {
			TaskID      string `json:"task_id"`
			AgentRoleID string `json:"agent_role_id"`
		}
		if err := json.Unmarshal(msg.Params, &params); err != nil || params.TaskID == "" {
			s.respond(sc, msg.ID, false, nil, "missing task_id")
			return
		}
		s.reply(sc, msg.ID, nil, s.api.AssignTask(ctx, params.TaskID, params.AgentRoleID))

	case methodHeartbeatTrigger:
		var params struct {
			AgentRoleID string `json:"agent_role_id"`
		}
		if err := json.Unmarshal(msg.Params, &params); err != nil || params.AgentRoleID == "" {
			s.respond(sc, msg.ID, false, nil, "missing agent_role_id")
			return
		}
		s.reply(sc, msg.ID, nil, s.api.TriggerHeartbeat(ctx, params.AgentRoleID))

	case methodActivitiesCreate:
		var draft mission.ActivityDraft
		if err := json.Unmarshal(msg.Params, &draft); err != nil {
			s.respond(sc, msg.ID, false, nil, "invalid activity draft")
			return
		}
		s.reply(sc, msg.ID, nil, s.api.CreateActivity(ctx, draft))

	default:
		s.respond(sc, msg.ID, false, nil, "unknown method: "+msg.Method)
	}
}

// reply converts a (payload, error) pair into one res message.
func (s *Server) reply(sc *serverConn, id string, payload any, err error) {
	if err != nil {
		s.respond(sc, id, false, nil, err.Error())
		return
	}
	s.respond(sc, id, true, payload, "")
}
