package room

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/satyamsb1/Tic-tack-toe/game"
)

func newTestRoom(t *testing.T) *Room {
	t.Helper()
	return newRoom("R1", "Finals", "Alice", "conn-alice")
}

func newPlayingRoom(t *testing.T, first game.Mark) *Room {
	t.Helper()
	r := newTestRoom(t)
	if err := r.Join("Bob", "conn-bob"); err != nil {
		t.Fatalf("Bob could not join: %v", err)
	}
	if err := r.Start(first); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return r
}

func TestRoom_JoinAssignsFreeMark(t *testing.T) {
	r := newTestRoom(t)

	if r.Players[0].Mark != game.X {
		t.Fatalf("Creator should hold X, got %q", r.Players[0].Mark)
	}

	if err := r.Join("Bob", "conn-bob"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if len(r.Players) != 2 {
		t.Fatalf("Expected 2 seats, got %d", len(r.Players))
	}
	if r.Players[1].Mark != game.O {
		t.Errorf("Second seat should hold O, got %q", r.Players[1].Mark)
	}
	if r.Players[0].Mark == r.Players[1].Mark {
		t.Error("Seats must not share a mark")
	}
}

func TestRoom_RejoinIsIdempotent(t *testing.T) {
	r := newTestRoom(t)
	r.Join("Bob", "conn-bob")

	if err := r.Join("Bob", "conn-bob"); err != nil {
		t.Fatalf("Rejoin should succeed, got %v", err)
	}
	if len(r.Players) != 2 {
		t.Errorf("Rejoin must not add a seat, got %d seats", len(r.Players))
	}
}

func TestRoom_JoinFull(t *testing.T) {
	r := newTestRoom(t)
	r.Join("Bob", "conn-bob")

	if err := r.Join("Carol", "conn-carol"); err != ErrRoomFull {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
	if len(r.Players) != 2 {
		t.Errorf("Full room must keep 2 seats, got %d", len(r.Players))
	}
}

func TestRoom_StartNeedsTwoPlayers(t *testing.T) {
	r := newTestRoom(t)

	if err := r.Start(game.X); err != ErrNeedTwoPlayers {
		t.Fatalf("Expected ErrNeedTwoPlayers, got %v", err)
	}
	if r.Stage != StageIdle {
		t.Errorf("Failed start must leave stage idle, got %q", r.Stage)
	}
}

func TestRoom_StartNormalizesFirstPlayer(t *testing.T) {
	r := newTestRoom(t)
	r.Join("Bob", "conn-bob")

	if err := r.Start("Z"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if r.FirstPlayer != game.X {
		t.Errorf("Unknown first player should fall back to X, got %q", r.FirstPlayer)
	}

	r.PlayAgain()
	if err := r.Start(game.O); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if r.FirstPlayer != game.O {
		t.Errorf("Expected first player O, got %q", r.FirstPlayer)
	}
}

// Scenario: Alice creates, Bob joins, X starts. Alice takes the center, Bob
// races into the same cell, then takes a corner.
func TestRoom_PlayTurnOrder(t *testing.T) {
	r := newPlayingRoom(t, game.X)

	changed, err := r.Play("conn-alice", 4)
	if err != nil || !changed {
		t.Fatalf("Alice's move should apply, changed=%v err=%v", changed, err)
	}
	if len(r.History) != 2 || r.CurrentMove != 1 {
		t.Fatalf("Expected history len 2 and currentMove 1, got %d and %d", len(r.History), r.CurrentMove)
	}
	if r.History[1][4] != game.X {
		t.Errorf("Cell 4 should hold X, got %q", r.History[1][4])
	}

	// Occupied cell: silent no-op, not an error.
	changed, err = r.Play("conn-bob", 4)
	if err != nil {
		t.Fatalf("Occupied cell must not error, got %v", err)
	}
	if changed || len(r.History) != 2 {
		t.Error("Occupied cell must leave the history unchanged")
	}

	changed, err = r.Play("conn-bob", 0)
	if err != nil || !changed {
		t.Fatalf("Bob's move should apply, changed=%v err=%v", changed, err)
	}
	if r.History[2][0] != game.O {
		t.Errorf("Cell 0 should hold O, got %q", r.History[2][0])
	}
}

func TestRoom_PlayOutOfTurn(t *testing.T) {
	r := newPlayingRoom(t, game.X)

	if _, err := r.Play("conn-bob", 0); err != ErrNotYourTurn {
		t.Errorf("Expected ErrNotYourTurn, got %v", err)
	}
	if len(r.History) != 1 {
		t.Error("A rejected move must not grow the history")
	}
}

func TestRoom_PlayWithoutSeat(t *testing.T) {
	r := newPlayingRoom(t, game.X)

	if _, err := r.Play("conn-carol", 0); err != ErrNotInRoom {
		t.Errorf("Expected ErrNotInRoom, got %v", err)
	}
}

// Scenario: playing before the second seat fills fails the stage check, so
// nothing happens and nothing is reported.
func TestRoom_PlayBeforeStart(t *testing.T) {
	r := newTestRoom(t)

	changed, err := r.Play("conn-alice", 0)
	if err != nil || changed {
		t.Errorf("Play outside the playing stage must be a silent no-op, changed=%v err=%v", changed, err)
	}
	if r.Stage != StageIdle {
		t.Errorf("Stage should stay idle, got %q", r.Stage)
	}
}

func TestRoom_PlayIndexOutOfRange(t *testing.T) {
	r := newPlayingRoom(t, game.X)

	for _, index := range []int{-1, 9, 100} {
		changed, err := r.Play("conn-alice", index)
		if err != nil || changed {
			t.Errorf("Index %d must be a silent no-op, changed=%v err=%v", index, changed, err)
		}
	}
}

// Every history entry differs from its predecessor in exactly one
// previously-empty cell.
func TestRoom_HistorySingleCellDeltas(t *testing.T) {
	r := newPlayingRoom(t, game.X)

	moves := []struct {
		conn  string
		index int
	}{
		{"conn-alice", 4},
		{"conn-bob", 0},
		{"conn-alice", 8},
		{"conn-bob", 2},
		{"conn-alice", 6},
	}
	for _, m := range moves {
		if changed, err := r.Play(m.conn, m.index); err != nil || !changed {
			t.Fatalf("move %+v failed: changed=%v err=%v", m, changed, err)
		}
	}

	for i := 1; i < len(r.History); i++ {
		diffs := 0
		for c := range r.History[i] {
			if r.History[i][c] != r.History[i-1][c] {
				if r.History[i-1][c] != game.Empty {
					t.Errorf("ply %d rewrote occupied cell %d", i, c)
				}
				diffs++
			}
		}
		if diffs != 1 {
			t.Errorf("ply %d changed %d cells, want exactly 1", i, diffs)
		}
	}
}

func TestRoom_JumpAuthorization(t *testing.T) {
	r := newPlayingRoom(t, game.X)
	r.Play("conn-alice", 4)
	r.Play("conn-bob", 0)

	// Ply 2 belongs to X, so Bob may not time-travel.
	if r.Jump("conn-bob", 0) {
		t.Error("Non-active player must not jump")
	}
	if r.CurrentMove != 2 {
		t.Errorf("Rejected jump must not move currentMove, got %d", r.CurrentMove)
	}

	if !r.Jump("conn-alice", 1) {
		t.Error("Active player should be allowed to jump")
	}
	if r.CurrentMove != 1 {
		t.Errorf("Expected currentMove 1 after jump, got %d", r.CurrentMove)
	}

	if r.Jump("conn-alice", 99) {
		t.Error("Out-of-range jump target must be ignored")
	}
}

// Moving from a time-travelled position prunes the abandoned future.
func TestRoom_PlayAfterJumpTruncates(t *testing.T) {
	r := newPlayingRoom(t, game.X)
	r.Play("conn-alice", 4)
	r.Play("conn-bob", 0)
	r.Play("conn-alice", 8)

	if len(r.History) != 4 {
		t.Fatalf("Expected 4 history entries, got %d", len(r.History))
	}

	// Ply 3 belongs to O; Bob rewinds to ply 1 and plays a different game.
	if !r.Jump("conn-bob", 1) {
		t.Fatal("Bob should be allowed to jump on his turn")
	}
	changed, err := r.Play("conn-bob", 2)
	if err != nil || !changed {
		t.Fatalf("Bob's branch move failed: changed=%v err=%v", changed, err)
	}

	if len(r.History) != 3 {
		t.Fatalf("Expected truncation to 3 entries, got %d", len(r.History))
	}
	if r.CurrentMove != 2 {
		t.Errorf("Expected currentMove 2, got %d", r.CurrentMove)
	}
	if r.History[2][0] != game.Empty || r.History[2][2] != game.O {
		t.Error("New branch should drop the old ply 2 and hold O at cell 2")
	}
}

// Turn parity is derived from currentMove and firstPlayer, so it survives
// any number of time-travels.
func TestRoom_SideToMoveAfterJump(t *testing.T) {
	r := newPlayingRoom(t, game.O)

	if r.SideToMove() != game.O {
		t.Fatalf("Ply 0 belongs to the first player, got %q", r.SideToMove())
	}
	r.Play("conn-bob", 0)
	r.Play("conn-alice", 4)
	r.Jump("conn-bob", 1)
	if r.SideToMove() != game.X {
		t.Errorf("Ply 1 with first player O belongs to X, got %q", r.SideToMove())
	}
}

// Scenario: X completes the top row, the round is scored, and playAgain
// resets the board while the score survives.
func TestRoom_EndRoundScoresWinner(t *testing.T) {
	r := newPlayingRoom(t, game.X)
	moves := []struct {
		conn  string
		index int
	}{
		{"conn-alice", 0},
		{"conn-bob", 3},
		{"conn-alice", 1},
		{"conn-bob", 4},
		{"conn-alice", 2},
	}
	for _, m := range moves {
		if changed, err := r.Play(m.conn, m.index); err != nil || !changed {
			t.Fatalf("move %+v failed: changed=%v err=%v", m, changed, err)
		}
	}

	r.EndRound()
	if r.Stage != StageFinished {
		t.Errorf("Expected stage finished, got %q", r.Stage)
	}
	if r.Scores.X != 1 || r.Scores.O != 0 || r.Scores.Draw != 0 {
		t.Errorf("Expected scores X=1 O=0 Draw=0, got %+v", r.Scores)
	}

	r.PlayAgain()
	if r.Stage != StageIdle {
		t.Errorf("Expected stage idle after playAgain, got %q", r.Stage)
	}
	if len(r.History) != 1 || r.CurrentMove != 0 {
		t.Error("playAgain must reset the board")
	}
	if r.Scores.X != 1 {
		t.Errorf("playAgain must keep scores, got %+v", r.Scores)
	}
}

func TestRoom_EndRoundScoresDraw(t *testing.T) {
	r := newPlayingRoom(t, game.X)
	// X O X / X O O / O X X: full board, nobody wins.
	r.History = []game.Board{{}, {
		game.X, game.O, game.X,
		game.X, game.O, game.O,
		game.O, game.X, game.X,
	}}
	r.CurrentMove = 1

	r.EndRound()
	if r.Scores.Draw != 1 {
		t.Errorf("Expected a draw point, got %+v", r.Scores)
	}
	if r.Stage != StageFinished {
		t.Errorf("Expected stage finished, got %q", r.Stage)
	}
}

// Ending a round on a board that is neither won nor full still finishes the
// round and awards nothing. Inherited behavior, kept on purpose.
func TestRoom_EndRoundNonTerminalBoard(t *testing.T) {
	r := newPlayingRoom(t, game.X)
	r.Play("conn-alice", 4)

	r.EndRound()
	if r.Stage != StageFinished {
		t.Errorf("Expected stage finished, got %q", r.Stage)
	}
	if r.Scores != (game.Scores{}) {
		t.Errorf("A non-terminal board must not score, got %+v", r.Scores)
	}
}

// endRound scores the displayed ply, not the latest one.
func TestRoom_EndRoundScoresCurrentMove(t *testing.T) {
	r := newPlayingRoom(t, game.X)
	moves := []struct {
		conn  string
		index int
	}{
		{"conn-alice", 0},
		{"conn-bob", 3},
		{"conn-alice", 1},
		{"conn-bob", 4},
		{"conn-alice", 2}, // X wins at ply 5
	}
	for _, m := range moves {
		r.Play(m.conn, m.index)
	}

	// Ply 5 belongs to O; Bob rewinds to before the winning move.
	if !r.Jump("conn-bob", 4) {
		t.Fatal("jump failed")
	}
	r.EndRound()
	if r.Scores.X != 0 {
		t.Errorf("Rewound board has no winner, got scores %+v", r.Scores)
	}
}

func TestRoom_ClearKeepsStageAndScores(t *testing.T) {
	r := newPlayingRoom(t, game.X)
	r.Play("conn-alice", 4)
	r.Scores.X = 2

	r.Clear()
	if len(r.History) != 1 || r.CurrentMove != 0 {
		t.Error("Clear must reset the board")
	}
	if r.Stage != StagePlaying {
		t.Errorf("Clear must not change the stage, got %q", r.Stage)
	}
	if r.Scores.X != 2 {
		t.Errorf("Clear must not change scores, got %+v", r.Scores)
	}
}

func TestRoom_DropConnection(t *testing.T) {
	r := newTestRoom(t)
	r.Join("Bob", "conn-bob")

	if !r.DropConnection("conn-bob") {
		t.Fatal("Dropping a seated connection should report a change")
	}
	if len(r.Players) != 1 || r.Players[0].Name != "Alice" {
		t.Errorf("Expected Alice alone, got %+v", r.Players)
	}

	if r.DropConnection("conn-bob") {
		t.Error("Dropping an unknown connection must report no change")
	}

	r.DropConnection("conn-alice")
	if !r.Empty() {
		t.Error("Room should be empty after the last seat drops")
	}
}

func TestRoom_SnapshotHidesConnectionIDs(t *testing.T) {
	r := newTestRoom(t)
	r.Join("Bob", "conn-bob")

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "conn-alice") || strings.Contains(string(data), "conn-bob") {
		t.Errorf("Room snapshot leaked connection ids: %s", data)
	}
}
