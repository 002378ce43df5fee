package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/service/i"
)

type recordLogger struct {
	mu       sync.Mutex
	fields   []string
	infos    []string
	warnings []string
	errors   []string
}

// With shares the records of l so that tests see every line.
func (l *recordLogger) With(key string, value any) i.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fields = append(l.fields, fmt.Sprintf("%s=%v", key, value))
	return l
}

func (l *recordLogger) fieldList() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.fields...)
}

func (l *recordLogger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordLogger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, msg)
}

func (l *recordLogger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordLogger) warningCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.warnings)
}

// countingCache wraps a cache and counts writes.
type countingCache struct {
	i.LayoutCache
	mu   sync.Mutex
	sets int
}

func (c *countingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.LayoutCache.Set(ctx, key, value, ttl)
}

var errBroken = errors.New("broken")

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, errBroken }

func (brokenCache) Set(context.Context, string, []byte, time.Duration) error { return errBroken }

func (brokenCache) Lock(context.Context, string) (func(), error) { return nil, errBroken }
