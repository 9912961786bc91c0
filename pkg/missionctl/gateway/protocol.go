// Package gateway – protocol.go defines the bidirectional JSON-RPC WebSocket
// protocol between the dashboard core and the orchestrator.
//
// Protocol:
//
//	Client → Server (requests):
//	  {"type":"req","id":"1","method":"tasks.list"}
//	  {"type":"req","id":"2","method":"tasks.move","params":{"task_id":"...","column":"review"}}
//
//	Server → Client (responses):
//	  {"type":"res","id":"1","ok":true,"payload":[...]}
//
//	Server → Client (events — unsolicited, one stream name per entity class):
//	  {"type":"event","event":"heartbeat","payload":{...}}
//	  {"type":"event","event":"task_board","payload":{"type":"moved",...}}
package gateway

import "encoding/json"

// wsMessage is the envelope for all WebSocket messages.
type wsMessage struct {
	Type    string          `json:"type"`              // "req", "res", "event"
	ID      string          `json:"id,omitempty"`      // Request/response correlation ID
	Method  string          `json:"method,omitempty"`  // For requests: "tasks.list", etc.
	Params  json.RawMessage `json:"params,omitempty"`  // For requests
	OK      *bool           `json:"ok,omitempty"`      // For responses
	Payload json.RawMessage `json:"payload,omitempty"` // For responses and events
	Event   string          `json:"event,omitempty"`   // For events: stream name
	Error   string          `json:"error,omitempty"`   // For error responses
}

// Request methods.
const (
	methodTasksList        = "tasks.list"
	methodTasksGet         = "tasks.get"
	methodActivitiesList   = "activities.list"
	methodMentionsList     = "mentions.list"
	methodHeartbeatStatus  = "heartbeat.status"
	methodAgentsList       = "agents.list"
	methodTasksMove        = "tasks.move"
	methodTasksAssign      = "tasks.assign"
	methodHeartbeatTrigger = "heartbeat.trigger"
	methodActivitiesCreate = "activities.create"
)

// Event stream names, one per entity class.
const (
	StreamHeartbeat = "heartbeat"
	StreamActivity  = "activity"
	StreamMention   = "mention"
	StreamTask      = "task"
	StreamTaskBoard = "task_board"
)
