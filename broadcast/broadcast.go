// Package broadcast fans room and lobby notifications out to live sessions.
package broadcast

import (
	"github.com/satyamsb1/Tic-tack-toe/logger"
	"github.com/satyamsb1/Tic-tack-toe/protocol"
	"github.com/satyamsb1/Tic-tack-toe/room"
	"github.com/satyamsb1/Tic-tack-toe/session"
)

// Broadcaster implements room.Notifier on top of the session manager. Sends
// are best effort; a dead connection is the read loop's problem, not the
// mutation's.
type Broadcaster struct {
	sessions *session.Manager
}

func NewBroadcaster(sessions *session.Manager) *Broadcaster {
	return &Broadcaster{sessions: sessions}
}

// RoomState sends the full room snapshot to every seated connection.
func (b *Broadcaster) RoomState(r *room.Room) {
	evt, err := protocol.NewEvent(protocol.EventRoomState, r)
	if err != nil {
		logger.Log.Errorf("marshal state of room %s: %v", r.ID, err)
		return
	}

	for _, seat := range r.Players {
		s, ok := b.sessions.Get(seat.ConnectionID)
		if !ok {
			continue
		}
		if err := s.Send(evt); err != nil {
			logger.Log.Warnf("send room state to session %s: %v", s.ID, err)
		}
	}
}

// RoomListChanged tells every connected client to refresh its lobby view.
func (b *Broadcaster) RoomListChanged() {
	evt := protocol.Event{Type: protocol.EventRoomListChanged}
	b.sessions.Each(func(s *session.Session) {
		if err := s.Send(evt); err != nil {
			logger.Log.Warnf("send room list change to session %s: %v", s.ID, err)
		}
	})
}
