package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/catalog"
	"github.com/arcade-cabinet/beppo-laughs/game"
	"github.com/arcade-cabinet/beppo-laughs/geometry"
	"github.com/arcade-cabinet/beppo-laughs/maze"
	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/goccy/go-json"
)

var ErrEmptySeed = errors.New("seed must not be empty")

// MazeService builds levels, sharing generated layouts through a cache.
type MazeService struct {
	cache    i.LayoutCache
	catalog  *catalog.Catalog
	geometry geometry.Config
	ttl      time.Duration
	logger   i.Logger
}

// MazeConfig holds the dependencies of a MazeService.
type MazeConfig struct {
	Cache    i.LayoutCache
	Catalog  *catalog.Catalog // nil plans no blockades
	Geometry geometry.Config
	TTL      time.Duration
	Logger   i.Logger
}

// NewMazeService validates c and creates the service.
func NewMazeService(c MazeConfig) (*MazeService, error) {
	if c.Cache == nil || c.Logger == nil {
		return nil, errors.New("maze service needs a cache and a logger")
	}
	if err := c.Geometry.Validate(); err != nil {
		return nil, err
	}
	return &MazeService{
		cache:    c.Cache,
		catalog:  c.Catalog,
		geometry: c.Geometry,
		ttl:      c.TTL,
		logger:   c.Logger,
	}, nil
}

// Level returns the level of seed at the given size.
func (s *MazeService) Level(ctx context.Context, seed string, width, height int) (*game.Level, error) {
	layout, err := s.Layout(ctx, seed, width, height)
	if err != nil {
		return nil, err
	}
	return game.NewLevel(layout, s.geometry, s.catalog.ObstacleAssets(), s.catalog.SolutionAssets())
}

// Layout returns the maze of seed, from the cache when another caller already
// generated it.
func (s *MazeService) Layout(ctx context.Context, seed string, width, height int) (*maze.Layout, error) {
	if seed == "" {
		return nil, ErrEmptySeed
	}
	width, height, err := maze.Dimensions(width, height)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s:%dx%d", url.PathEscape(seed), width, height)

	if layout, ok := s.cached(ctx, key); ok {
		return layout, nil
	}

	unlock, err := s.cache.Lock(ctx, key)
	if err != nil {
		s.logger.Warning(fmt.Sprintf("locking layout %s: %v", key, err))
		return maze.Generate(width, height, seed)
	}
	defer unlock()

	if layout, ok := s.cached(ctx, key); ok {
		return layout, nil
	}

	layout, err := maze.Generate(width, height, seed)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(layout)
	if err == nil {
		err = s.cache.Set(ctx, key, b, s.ttl)
	}
	if err != nil {
		s.logger.Warning(fmt.Sprintf("caching layout %s: %v", key, err))
	}
	s.logger.Info(fmt.Sprintf("generated layout %s", key))
	return layout, nil
}

func (s *MazeService) cached(ctx context.Context, key string) (*maze.Layout, bool) {
	b, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, i.ErrCacheMiss) {
			s.logger.Warning(fmt.Sprintf("reading layout %s: %v", key, err))
		}
		return nil, false
	}

	var layout maze.Layout
	if err := json.Unmarshal(b, &layout); err != nil {
		s.logger.Warning(fmt.Sprintf("decoding layout %s: %v", key, err))
		return nil, false
	}
	return &layout, true
}
