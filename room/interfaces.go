package room

// Notifier pushes state changes out to connected clients. It is defined here
// so the room package stays free of any transport dependency.
type Notifier interface {
	// RoomState delivers the full snapshot of r to every seated connection.
	RoomState(r *Room)
	// RoomListChanged tells every connected client the lobby listing is stale.
	RoomListChanged()
}
