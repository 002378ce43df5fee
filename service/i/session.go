package i

import (
	"context"

	"github.com/arcade-cabinet/beppo-laughs/game"
	"github.com/arcade-cabinet/beppo-laughs/maze"
	"github.com/google/uuid"
)

// LevelSource builds the level of a seed.
type LevelSource interface {
	Level(ctx context.Context, seed string, width, height int) (*game.Level, error)
}

// MazeService serves generated mazes.
type MazeService interface {
	LevelSource
	Layout(ctx context.Context, seed string, width, height int) (*maze.Layout, error)
}

// SessionManager runs game sessions and routes player input to them.
type SessionManager interface {
	// Create starts a session and returns its id with a token scoped to it.
	Create(ctx context.Context, seed string, width, height int) (uuid.UUID, string, error)

	// Authenticate returns the id of the live session a token was issued for.
	Authenticate(token string) (uuid.UUID, error)

	Snapshot(id uuid.UUID) (game.Snapshot, error)
	Level(id uuid.UUID) (*game.Level, error)
	SetIntent(id uuid.UUID, in game.Intent) error
	RequestMove(id uuid.UUID, key string) error
	ChooseFork(id uuid.UUID, key string) error
	Reset(id uuid.UUID) error

	// Subscribe streams the updates of a session until it stops or cancel is called.
	Subscribe(id uuid.UUID) (<-chan game.Update, func(), error)

	Stop(id uuid.UUID)
	StopAll()
}
