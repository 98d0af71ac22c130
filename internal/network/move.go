package network

import (
	"github.com/Faultbox/midgard-nav/internal/pathfind"
)

// MoveEvent is the event name of a movement request.
const MoveEvent = "move"

// MoveRequest asks the server to walk from (X, Y) toward (GoingX, GoingY).
// M counts map changes so the server can drop requests from a previous map.
type MoveRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	GoingX float64 `json:"going_x"`
	GoingY float64 `json:"going_y"`
	M      int     `json:"m"`
}

// Move sends one straight movement request.
func (c *Client) Move(from, to pathfind.Position) error {
	c.mu.Lock()
	m := c.mapChanges
	c.mu.Unlock()

	return c.Emit(MoveEvent, MoveRequest{
		X:      from.X,
		Y:      from.Y,
		GoingX: to.X,
		GoingY: to.Y,
		M:      m,
	})
}

// MapChanged records a map transition reported by the server.
func (c *Client) MapChanged() {
	c.mu.Lock()
	c.mapChanges++
	c.mu.Unlock()
}
