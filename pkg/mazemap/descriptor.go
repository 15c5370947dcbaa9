package mazemap

import "github.com/aretw0/metamaze/pkg/maze"

// ConnectingRoom is a known edge out of a RoomDescriptor.
type ConnectingRoom struct {
	RoomIndex int
	Door      int
	// Desc is shared with the owning Map and is nil in room maps until
	// the map is linked.
	Desc      *RoomDescriptor
	Signature *maze.Signature
	Visited   bool

	// ValidInstanceCount is the number of valid instances when the edge
	// was last taken, -1 if it was not.
	ValidInstanceCount int
}

// Resolved reports whether the outcome of the edge is known.
func (c *ConnectingRoom) Resolved() bool {
	return c.Signature.Resolved
}

func (c *ConnectingRoom) clone() *ConnectingRoom {
	n := *c
	n.Signature = c.Signature.Clone()
	return &n
}

// RoomDescriptor binds one simulated maze state to its outgoing edges.
type RoomDescriptor struct {
	ID           int
	Maze         *maze.Maze
	Connections  []*ConnectingRoom
	SearchLength int

	backMaze        *maze.Maze
	backConnections []*ConnectingRoom
}

// RoomIndex is the index of the room the descriptor stands for.
func (d *RoomDescriptor) RoomIndex() int {
	return d.Maze.Current
}

// Room is the room the descriptor stands for.
func (d *RoomDescriptor) Room() *maze.Room {
	return d.Maze.CurrentRoom()
}

// Connection returns the edge taken through door, or nil.
func (d *RoomDescriptor) Connection(door int) *ConnectingRoom {
	for _, c := range d.Connections {
		if c.Door == door {
			return c
		}
	}
	return nil
}

func (d *RoomDescriptor) connectedTo(room, door int) bool {
	for _, c := range d.Connections {
		if c.RoomIndex == room && c.Door == door {
			return true
		}
	}
	return false
}

// Backup saves the maze and the edges so that a speculative walk can be
// undone with Restore.
func (d *RoomDescriptor) Backup() {
	d.backMaze = d.Maze.Clone()
	d.backConnections = make([]*ConnectingRoom, len(d.Connections))
	for i, c := range d.Connections {
		d.backConnections[i] = c.clone()
		c.ValidInstanceCount = -1
	}
}

// Restore brings back the state saved by Backup.
func (d *RoomDescriptor) Restore() {
	if d.backMaze == nil {
		return
	}
	d.Maze = d.backMaze
	d.Connections = d.backConnections
	d.backMaze = nil
	d.backConnections = nil
}

// DejaVu reports whether other stands for the same planning node.
// Descriptors of the same room are merged regardless of pending contexts.
func (d *RoomDescriptor) DejaVu(other *RoomDescriptor) bool {
	return d.Maze.Current == other.Maze.Current
}
