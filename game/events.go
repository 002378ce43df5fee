package game

import "github.com/arcade-cabinet/beppo-laughs/geometry"

// EventKind names a discrete event reported by a session.
type EventKind string

const (
	EventNodeArrived   EventKind = "node_arrived"
	EventForkRaised    EventKind = "fork_raised"
	EventExitReached   EventKind = "exit_reached"
	EventConfused      EventKind = "confused"
	EventItemCollected EventKind = "item_collected"
	EventGameOver      EventKind = "game_over"
	// EventRejected reports a queued move or fork choice that could not be applied.
	EventRejected EventKind = "rejected"
)

// Event is emitted by the navigator and the session, and drained by whoever
// drives the tick.
type Event struct {
	Kind     EventKind       `json:"kind"`
	Node     geometry.NodeID `json:"-"`
	Key      string          `json:"nodeId"`
	Intended string          `json:"intended,omitempty"` // Requested node of a confused move.
	Visits   int             `json:"visits,omitempty"` // Arrivals at Node so far, on node_arrived.
	ItemID   string          `json:"itemId,omitempty"`
	Reason   GameOverReason  `json:"reason,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Update is what a running session publishes after each tick.
type Update struct {
	Events   []Event  `json:"events"`
	Snapshot Snapshot `json:"snapshot"`
}
