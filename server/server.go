// Package server owns the websocket endpoint and routes every inbound event
// to the room state machine.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/samber/lo"

	"github.com/satyamsb1/Tic-tack-toe/broadcast"
	"github.com/satyamsb1/Tic-tack-toe/config"
	"github.com/satyamsb1/Tic-tack-toe/game"
	"github.com/satyamsb1/Tic-tack-toe/logger"
	"github.com/satyamsb1/Tic-tack-toe/monitor"
	"github.com/satyamsb1/Tic-tack-toe/protocol"
	"github.com/satyamsb1/Tic-tack-toe/room"
	"github.com/satyamsb1/Tic-tack-toe/session"
)

// GameServer wires the registry, sessions and broadcaster behind one
// websocket endpoint. A single mutex serializes command handling, so every
// mutation runs validate→mutate→notify to completion before the next command
// starts; disconnects go through the same lock as ordinary commands.
type GameServer struct {
	addr      string
	origins   []string
	upgrader  websocket.Upgrader
	registry  *room.Registry
	sessions  *session.Manager
	notifier  room.Notifier
	validate  *validator.Validate
	monitor   *monitor.Monitor
	commandMu sync.Mutex
}

func NewGameServer(cfg *config.Config, mon *monitor.Monitor) *GameServer {
	sessions := session.NewManager()

	s := &GameServer{
		addr:     cfg.Server.HTTPAddress,
		origins:  cfg.Server.AllowedOrigins,
		registry: room.NewRegistry(),
		sessions: sessions,
		notifier: broadcast.NewBroadcaster(sessions),
		validate: validator.New(),
		monitor:  mon,
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg.Server.AllowedOrigins),
	}

	return s
}

// checkOrigin admits browser clients from the configured origins. Non-browser
// clients send no Origin header and pass.
func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return lo.Contains(allowed, "*") || lo.Contains(allowed, origin)
	}
}

// Handler returns the full HTTP surface, exposed separately so tests can
// mount it on httptest servers.
func (s *GameServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	})
	return c.Handler(mux)
}

func (s *GameServer) Start() error {
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warnf("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(protocol.NewWSConn(conn))
}

func (s *GameServer) handleConnection(conn protocol.Conn) {
	sess := session.NewSession(uuid.New().String(), conn)
	s.sessions.Add(sess)
	s.monitor.IncConnectedClients()

	logger.Log.Infof("New connection from %s, session %s", conn.RemoteAddr(), sess.ID)

	defer func() {
		s.disconnect(sess)
		conn.Close()
		s.monitor.DecConnectedClients()
		logger.Log.Infof("Connection closed, session %s", sess.ID)
	}()

	for {
		evt, err := conn.ReadEvent()
		if err != nil {
			return
		}
		s.handleEvent(sess, evt)
	}
}

func (s *GameServer) handleEvent(sess *session.Session, evt *protocol.Event) {
	start := time.Now()
	s.commandMu.Lock()
	defer s.commandMu.Unlock()

	s.monitor.IncEventsReceived()
	defer func() {
		s.monitor.ObserveEventLatency(time.Since(start))
	}()

	var err error
	switch evt.Type {
	case protocol.EventIdentify:
		err = s.handleIdentify(sess, evt)
	case protocol.EventListRooms:
		err = s.handleListRooms(sess)
	case protocol.EventCreateRoom:
		err = s.handleCreateRoom(sess, evt)
	case protocol.EventJoinRoom:
		err = s.handleJoinRoom(sess, evt)
	case protocol.EventLeaveRoom:
		err = s.handleLeaveRoom(sess, evt)
	case protocol.EventStart:
		err = s.handleStart(sess, evt)
	case protocol.EventPlay:
		err = s.handlePlay(sess, evt)
	case protocol.EventClear:
		err = s.handleClear(evt)
	case protocol.EventEndRound:
		err = s.handleEndRound(evt)
	case protocol.EventPlayAgain:
		err = s.handlePlayAgain(evt)
	case protocol.EventJump:
		err = s.handleJump(sess, evt)
	default:
		logger.Log.Warnf("Unknown event type %q from session %s", evt.Type, sess.ID)
	}

	// Handler errors are user-visible rule violations. They go back to the
	// offending connection only; shared room state is already untouched.
	if err != nil {
		s.sendError(sess, err.Error())
	}
}

func (s *GameServer) sendError(sess *session.Session, message string) {
	evt, err := protocol.NewErrorEvent(message)
	if err != nil {
		logger.Log.Errorf("marshal error event: %v", err)
		return
	}
	if err := sess.Send(evt); err != nil {
		logger.Log.Warnf("send error to session %s: %v", sess.ID, err)
	}
}

// decode unmarshals and validates an event payload. An absent payload reads
// as an empty object so the validator reports missing fields, not a JSON
// parse failure.
func (s *GameServer) decode(evt *protocol.Event, v any) error {
	payload := evt.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", evt.Type, err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("invalid %s payload: %w", evt.Type, err)
	}
	return nil
}

func (s *GameServer) handleIdentify(sess *session.Session, evt *protocol.Event) error {
	var p protocol.IdentifyPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}
	if p.Name != "" {
		sess.SetName(p.Name)
	}
	return nil
}

func (s *GameServer) handleListRooms(sess *session.Session) error {
	evt, err := protocol.NewEvent(protocol.EventRoomList, s.registry.List())
	if err != nil {
		return err
	}
	return sess.Send(evt)
}

func (s *GameServer) handleCreateRoom(sess *session.Session, evt *protocol.Event) error {
	var p protocol.CreateRoomPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r := s.registry.Create(p.Title, sess.Name(), sess.ID)
	logger.Log.Infof("Session %s created room %s (%q)", sess.ID, r.ID, r.Title)

	ack, err := protocol.NewEvent(protocol.EventRoomCreated, protocol.RoomCreatedPayload{ID: r.ID})
	if err != nil {
		return err
	}
	if err := sess.Send(ack); err != nil {
		logger.Log.Warnf("send create ack to session %s: %v", sess.ID, err)
	}

	s.notifier.RoomState(r)
	s.notifier.RoomListChanged()
	s.monitor.SetActiveRooms(s.registry.Count())
	return nil
}

func (s *GameServer) handleJoinRoom(sess *session.Session, evt *protocol.Event) error {
	var p protocol.RoomPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r, ok := s.registry.Get(p.ID)
	if !ok {
		return s.sendJoinResult(sess, protocol.JoinResultPayload{OK: false, Error: room.ErrNoSuchRoom.Error()})
	}
	if err := r.Join(sess.Name(), sess.ID); err != nil {
		return s.sendJoinResult(sess, protocol.JoinResultPayload{OK: false, Error: err.Error()})
	}

	logger.Log.Infof("Session %s joined room %s", sess.ID, r.ID)
	if err := s.sendJoinResult(sess, protocol.JoinResultPayload{OK: true, ID: r.ID}); err != nil {
		logger.Log.Warnf("send join result to session %s: %v", sess.ID, err)
	}

	s.notifier.RoomState(r)
	s.notifier.RoomListChanged()
	return nil
}

func (s *GameServer) sendJoinResult(sess *session.Session, result protocol.JoinResultPayload) error {
	evt, err := protocol.NewEvent(protocol.EventJoinResult, result)
	if err != nil {
		return err
	}
	return sess.Send(evt)
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, evt *protocol.Event) error {
	var p protocol.RoomPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r, ok := s.registry.Get(p.ID)
	if !ok {
		return nil
	}
	if r.DropConnection(sess.ID) {
		s.afterSeatLoss(r)
	}
	return nil
}

func (s *GameServer) handleStart(sess *session.Session, evt *protocol.Event) error {
	var p protocol.StartPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r, ok := s.registry.Get(p.ID)
	if !ok {
		return nil
	}
	if err := r.Start(game.Mark(p.FirstPlayer)); err != nil {
		return err
	}
	s.notifier.RoomState(r)
	return nil
}

func (s *GameServer) handlePlay(sess *session.Session, evt *protocol.Event) error {
	var p protocol.PlayPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r, ok := s.registry.Get(p.ID)
	if !ok {
		return nil
	}
	changed, err := r.Play(sess.ID, p.Index)
	if err != nil {
		return err
	}
	if changed {
		s.notifier.RoomState(r)
	}
	return nil
}

func (s *GameServer) handleClear(evt *protocol.Event) error {
	var p protocol.RoomPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r, ok := s.registry.Get(p.ID)
	if !ok {
		return nil
	}
	r.Clear()
	s.notifier.RoomState(r)
	return nil
}

func (s *GameServer) handleEndRound(evt *protocol.Event) error {
	var p protocol.RoomPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r, ok := s.registry.Get(p.ID)
	if !ok {
		return nil
	}
	r.EndRound()
	s.notifier.RoomState(r)
	return nil
}

func (s *GameServer) handlePlayAgain(evt *protocol.Event) error {
	var p protocol.RoomPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r, ok := s.registry.Get(p.ID)
	if !ok {
		return nil
	}
	r.PlayAgain()
	s.notifier.RoomState(r)
	return nil
}

func (s *GameServer) handleJump(sess *session.Session, evt *protocol.Event) error {
	var p protocol.JumpPayload
	if err := s.decode(evt, &p); err != nil {
		return err
	}

	r, ok := s.registry.Get(p.ID)
	if !ok {
		return nil
	}
	if r.Jump(sess.ID, p.Move) {
		s.notifier.RoomState(r)
	}
	return nil
}

// disconnect runs the connection-closed command under the same lock as any
// other command: release every seat the session holds, then reap emptied
// rooms.
func (s *GameServer) disconnect(sess *session.Session) {
	s.commandMu.Lock()
	defer s.commandMu.Unlock()

	s.sessions.Remove(sess.ID)

	for _, r := range s.registry.Rooms() {
		if r.DropConnection(sess.ID) {
			s.afterSeatLoss(r)
		}
	}
}

// afterSeatLoss broadcasts a membership change and deletes the room the
// moment its last seat empties.
func (s *GameServer) afterSeatLoss(r *room.Room) {
	if r.Empty() {
		s.registry.Delete(r.ID)
		logger.Log.Infof("Room %s deleted, no seats left", r.ID)
	} else {
		s.notifier.RoomState(r)
	}
	s.notifier.RoomListChanged()
	s.monitor.SetActiveRooms(s.registry.Count())
}
