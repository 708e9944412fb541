// Package protocol defines the wire contract: the event envelope, the event
// type names and the payload shapes exchanged with clients.
package protocol

import (
	"encoding/json"
)

// Event is the envelope for every message in both directions.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client → server.
const (
	EventIdentify   = "identify"
	EventListRooms  = "list_rooms"
	EventCreateRoom = "create_room"
	EventJoinRoom   = "join_room"
	EventLeaveRoom  = "leave_room"
	EventStart      = "start"
	EventPlay       = "play"
	EventClear      = "clear"
	EventEndRound   = "end_round"
	EventPlayAgain  = "play_again"
	EventJump       = "jump"
)

// Server → client.
const (
	EventRoomState       = "room_state"
	EventRoomList        = "room_list"
	EventRoomCreated     = "room_created"
	EventJoinResult      = "join_result"
	EventRoomListChanged = "room_list_changed"
	EventRoomError       = "room_error"
)

type IdentifyPayload struct {
	Name string `json:"name"`
}

type CreateRoomPayload struct {
	Title string `json:"title"`
}

// RoomPayload addresses a room by id. Used by every per-room command that
// needs nothing else.
type RoomPayload struct {
	ID string `json:"id" validate:"required"`
}

type StartPayload struct {
	ID          string `json:"id" validate:"required"`
	FirstPlayer string `json:"firstPlayer"`
}

type PlayPayload struct {
	ID    string `json:"id" validate:"required"`
	Index int    `json:"index"`
}

type JumpPayload struct {
	ID   string `json:"id" validate:"required"`
	Move int    `json:"move"`
}

type RoomCreatedPayload struct {
	ID string `json:"id"`
}

type JoinResultPayload struct {
	OK    bool   `json:"ok"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewEvent marshals payload into an envelope of the given type.
func NewEvent(evtType string, payload any) (Event, error) {
	if payload == nil {
		return Event{Type: evtType}, nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: evtType, Payload: b}, nil
}

// NewErrorEvent wraps a user-facing message in a room_error event.
func NewErrorEvent(message string) (Event, error) {
	return NewEvent(EventRoomError, ErrorPayload{Message: message})
}
