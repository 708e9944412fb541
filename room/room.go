// Package room implements the per-room state machine and the process-wide
// registry of rooms. All mutations here are plain state transitions; pushing
// the results to clients is the caller's job, which keeps every rule testable
// without a live transport.
package room

import (
	"errors"

	"github.com/satyamsb1/Tic-tack-toe/game"
)

// Stage is the lifecycle phase of a room.
type Stage string

const (
	StageIdle     Stage = "idle"
	StagePlaying  Stage = "playing"
	StageFinished Stage = "finished"
)

// Rule violations surfaced to the offending client. The texts double as the
// user-facing message, so they read like sentences.
var (
	ErrNoSuchRoom     = errors.New("No such room.")
	ErrRoomFull       = errors.New("Room full.")
	ErrNeedTwoPlayers = errors.New("Need two players to start.")
	ErrNotInRoom      = errors.New("You are not in this room.")
	ErrNotYourTurn    = errors.New("Not your turn.")
)

// Seat binds a connected player to one of the two marks. The connection id
// never leaves the process; it is not part of the wire snapshot.
type Seat struct {
	Name         string    `json:"name"`
	Mark         game.Mark `json:"mark"`
	ConnectionID string    `json:"-"`
}

// Room is one match instance: two seats, the stage, the replayable move
// history and the running scores. History index k is the board after k plies;
// index 0 is always the empty board.
type Room struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Players     []Seat       `json:"players"`
	Stage       Stage        `json:"stage"`
	FirstPlayer game.Mark    `json:"firstPlayer"`
	CurrentMove int          `json:"currentMove"`
	History     []game.Board `json:"history"`
	Scores      game.Scores  `json:"scores"`
}

func newRoom(id, title, ownerName, ownerConn string) *Room {
	if title == "" {
		title = "Untitled"
	}
	return &Room{
		ID:          id,
		Title:       title,
		Players:     []Seat{{Name: ownerName, Mark: game.X, ConnectionID: ownerConn}},
		Stage:       StageIdle,
		FirstPlayer: game.X,
		History:     []game.Board{{}},
	}
}

// SeatFor returns the seat held by the given connection.
func (r *Room) SeatFor(connID string) (*Seat, bool) {
	for i := range r.Players {
		if r.Players[i].ConnectionID == connID {
			return &r.Players[i], true
		}
	}
	return nil, false
}

// Join seats the connection in the room, taking whichever mark is free.
// Rejoining is a no-op so reconnects keep their seat.
func (r *Room) Join(name, connID string) error {
	if _, ok := r.SeatFor(connID); ok {
		return nil
	}
	if len(r.Players) >= 2 {
		return ErrRoomFull
	}
	mark := game.X
	for _, p := range r.Players {
		if p.Mark == game.X {
			mark = game.O
		}
	}
	r.Players = append(r.Players, Seat{Name: name, Mark: mark, ConnectionID: connID})
	return nil
}

// Start opens a round with the given first player. Requires both seats
// filled. Anything other than O counts as X.
func (r *Room) Start(first game.Mark) error {
	if len(r.Players) < 2 {
		return ErrNeedTwoPlayers
	}
	if first != game.O {
		first = game.X
	}
	r.FirstPlayer = first
	r.resetBoard()
	r.Stage = StagePlaying
	return nil
}

func (r *Room) resetBoard() {
	r.History = []game.Board{{}}
	r.CurrentMove = 0
}

// SideToMove returns the mark that owns the room's current ply.
func (r *Room) SideToMove() game.Mark {
	return game.SideToMove(r.FirstPlayer, r.CurrentMove)
}

// Play applies a move for the given connection and reports whether the room
// changed. Seat and turn violations come back as errors; an occupied or
// out-of-range cell is ignored silently, since the client raced a stale
// board rather than broke a rule. Playing from a time-travelled position
// discards the abandoned future before appending.
func (r *Room) Play(connID string, index int) (bool, error) {
	if r.Stage != StagePlaying {
		return false, nil
	}
	seat, ok := r.SeatFor(connID)
	if !ok {
		return false, ErrNotInRoom
	}
	if seat.Mark != r.SideToMove() {
		return false, ErrNotYourTurn
	}
	if index < 0 || index > 8 {
		return false, nil
	}

	board := r.History[r.CurrentMove]
	if board[index] != game.Empty {
		return false, nil
	}
	board[index] = seat.Mark

	r.History = append(r.History[:r.CurrentMove+1], board)
	r.CurrentMove = len(r.History) - 1
	return true, nil
}

// Clear resets the board in place without touching stage or scores.
func (r *Room) Clear() {
	r.resetBoard()
}

// EndRound scores the board at the current move and closes the round. A
// board with neither a winning line nor nine filled cells still finishes,
// with scores untouched.
func (r *Room) EndRound() {
	board := r.History[r.CurrentMove]
	if mark, _, ok := game.Winner(board); ok {
		switch mark {
		case game.X:
			r.Scores.X++
		case game.O:
			r.Scores.O++
		}
	} else if game.IsDraw(board) {
		r.Scores.Draw++
	}
	r.Stage = StageFinished
}

// PlayAgain rearms the room for a fresh round. A new Start is still required
// before play resumes.
func (r *Room) PlayAgain() {
	r.Stage = StageIdle
	r.resetBoard()
}

// Jump moves the displayed position to another ply. Only the player whose
// mark owns the room's current ply may time-travel; requests from anyone
// else, or to a ply outside the history, are ignored.
func (r *Room) Jump(connID string, move int) bool {
	if r.Stage != StagePlaying {
		return false
	}
	seat, ok := r.SeatFor(connID)
	if !ok || seat.Mark != r.SideToMove() {
		return false
	}
	if move < 0 || move >= len(r.History) {
		return false
	}
	r.CurrentMove = move
	return true
}

// DropConnection releases any seat held by the connection and reports
// whether the seat list changed.
func (r *Room) DropConnection(connID string) bool {
	before := len(r.Players)
	players := r.Players[:0]
	for _, p := range r.Players {
		if p.ConnectionID != connID {
			players = append(players, p)
		}
	}
	r.Players = players
	return len(r.Players) != before
}

// Empty reports whether no seats are taken.
func (r *Room) Empty() bool {
	return len(r.Players) == 0
}
