// Package sessionapi exposes game sessions over HTTP and websockets.
package sessionapi

import "github.com/arcade-cabinet/beppo-laughs/game"

// CreateRequest starts a session on the maze of Seed.
type CreateRequest struct {
	Seed   string `json:"seed" binding:"required"`
	Width  int    `json:"width" binding:"omitempty,min=3,max=101"`
	Height int    `json:"height" binding:"omitempty,min=3,max=101"`
}

// CreateResponse carries the new session id, its token and the opening state.
type CreateResponse struct {
	ID    string        `json:"id"`
	Token string        `json:"token"`
	State game.Snapshot `json:"state"`
}

// NodeRequest names a node for a move or a fork answer.
type NodeRequest struct {
	NodeID string `json:"nodeId" binding:"required"`
}

// Message is a client frame on the session stream.
type Message struct {
	Type   string       `json:"type"` // intent, move, fork or reset.
	Intent *game.Intent `json:"intent,omitempty"`
	NodeID string       `json:"nodeId,omitempty"`
}

// ErrorMessage is a server frame reporting a rejected client frame.
type ErrorMessage struct {
	Error string `json:"error"`
}
