package room

import (
	"crypto/rand"
	"encoding/base64"
	"sync"

	"github.com/samber/lo"
)

// Summary is the public projection of a room for lobby listings. It carries
// display names only, never connection identifiers.
type Summary struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Players []string `json:"players"`
}

// Registry owns the id→Room mapping and is the only creator and destroyer of
// rooms. Command handling is serialized above this layer; the lock exists for
// readers outside the command path, such as metrics.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create builds a room with the creator in the X seat and registers it under
// a fresh code.
func (g *Registry) Create(title, ownerName, ownerConn string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	r := newRoom(g.newCode(), title, ownerName, ownerConn)
	g.rooms[r.ID] = r
	return r
}

func (g *Registry) Get(id string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, exists := g.rooms[id]
	return r, exists
}

// Delete removes a room. Deleting an unknown id is a no-op.
func (g *Registry) Delete(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.rooms, id)
}

// List returns a snapshot of every room, safe to hand to any client.
func (g *Registry) List() []Summary {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]Summary, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, Summary{
			ID:    r.ID,
			Title: r.Title,
			Players: lo.Map(r.Players, func(s Seat, _ int) string {
				return s.Name
			}),
		})
	}
	return out
}

// Rooms returns a snapshot of all live rooms, for sweeps that touch every
// room such as disconnect cleanup.
func (g *Registry) Rooms() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		out = append(out, r)
	}
	return out
}

func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.rooms)
}

// newCode returns a short URL-safe token not yet in use. Three random bytes
// make a four character base64url code, short enough to share by hand.
func (g *Registry) newCode() string {
	for {
		b := make([]byte, 3)
		rand.Read(b)
		code := base64.RawURLEncoding.EncodeToString(b)
		if _, taken := g.rooms[code]; !taken {
			return code
		}
	}
}
