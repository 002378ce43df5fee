// Package mazeapi serves generated mazes.
package mazeapi

// LevelQuery selects the size of a maze. Zero values use the server defaults.
type LevelQuery struct {
	Width  int `form:"width" binding:"omitempty,min=3,max=101"`
	Height int `form:"height" binding:"omitempty,min=3,max=101"`
}
