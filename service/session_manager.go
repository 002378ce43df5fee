package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/game"
	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/google/uuid"
)

// Session manager errors.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrTooManySessions  = errors.New("too many running sessions")
	ErrInvalidSessionID = errors.New("token does not carry a session id")
)

const (
	// SessionClaim is the token claim holding the session id.
	SessionClaim = "session_id"

	subscriberBuffer = 16
	maxTickStep      = 250 * time.Millisecond
)

// SessionManager runs every live session on its own ticker goroutine.
type SessionManager struct {
	levels      i.LevelSource
	tokenizer   i.Tokenizer
	logger      i.Logger
	session     game.SessionConfig
	tick        time.Duration
	idleTimeout time.Duration
	tokenTTL    time.Duration
	maxSessions int

	sessions map[uuid.UUID]*runner
	sync.RWMutex
}

// Config holds the dependencies and limits of a SessionManager.
type Config struct {
	Levels      i.LevelSource
	Tokenizer   i.Tokenizer
	Logger      i.Logger
	Tuning      game.Tuning
	MaxSanity   float64
	TickRate    int // Ticks per second.
	IdleTimeout time.Duration
	TokenTTL    time.Duration
	MaxSessions int
}

// NewSessionManager validates c and creates an empty manager.
func NewSessionManager(c *Config) (*SessionManager, error) {
	if c.Levels == nil || c.Tokenizer == nil || c.Logger == nil {
		return nil, errors.New("session manager needs levels, a tokenizer and a logger")
	}
	if c.TickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if err := c.Tuning.Validate(); err != nil {
		return nil, err
	}

	return &SessionManager{
		levels:      c.Levels,
		tokenizer:   c.Tokenizer,
		logger:      c.Logger,
		session:     game.SessionConfig{Tuning: c.Tuning, MaxSanity: c.MaxSanity},
		tick:        time.Second / time.Duration(c.TickRate),
		idleTimeout: c.IdleTimeout,
		tokenTTL:    c.TokenTTL,
		maxSessions: c.MaxSessions,
		sessions:    make(map[uuid.UUID]*runner),
	}, nil
}

// Create starts a session on the level of seed and returns its id and a token
// scoped to it.
func (m *SessionManager) Create(ctx context.Context, seed string, width, height int) (uuid.UUID, string, error) {
	level, err := m.levels.Level(ctx, seed, width, height)
	if err != nil {
		return uuid.Nil, "", err
	}
	session, err := game.NewSession(level, m.session)
	if err != nil {
		return uuid.Nil, "", err
	}

	m.Lock()
	if m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.Unlock()
		return uuid.Nil, "", ErrTooManySessions
	}
	id := uuid.New()
	for {
		if _, ok := m.sessions[id]; !ok {
			break
		}
		id = uuid.New()
	}
	r := newRunner(id, session, m.logger.With("session", id.String()).With("seed", seed))
	m.sessions[id] = r
	m.Unlock()

	token, err := m.tokenizer.Generate(map[string]interface{}{SessionClaim: id.String()}, m.tokenTTL)
	if err != nil {
		m.Stop(id)
		return uuid.Nil, "", fmt.Errorf("issuing session token: %w", err)
	}

	go m.run(r)
	r.log.Info("started session")
	return id, token, nil
}

// Authenticate returns the id of the live session token was issued for.
func (m *SessionManager) Authenticate(token string) (uuid.UUID, error) {
	claims, err := m.tokenizer.Decode(token)
	if err != nil {
		return uuid.Nil, err
	}
	raw, ok := claims[SessionClaim].(string)
	if !ok {
		return uuid.Nil, ErrInvalidSessionID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidSessionID
	}
	if _, err := m.runner(id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (m *SessionManager) runner(id uuid.UUID) (*runner, error) {
	m.RLock()
	defer m.RUnlock()
	r, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r, nil
}

// Snapshot returns the current state of a session.
func (m *SessionManager) Snapshot(id uuid.UUID) (game.Snapshot, error) {
	r, err := m.runner(id)
	if err != nil {
		return game.Snapshot{}, err
	}
	return r.session.Snapshot(), nil
}

// Level returns the level a session plays.
func (m *SessionManager) Level(id uuid.UUID) (*game.Level, error) {
	r, err := m.runner(id)
	if err != nil {
		return nil, err
	}
	return r.session.Level(), nil
}

// SetIntent replaces the driver input of a session.
func (m *SessionManager) SetIntent(id uuid.UUID, in game.Intent) error {
	r, err := m.runner(id)
	if err != nil {
		return err
	}
	r.touch()
	r.session.SetIntent(in)
	return nil
}

// RequestMove queues an explicit move for a session.
func (m *SessionManager) RequestMove(id uuid.UUID, key string) error {
	r, err := m.runner(id)
	if err != nil {
		return err
	}
	r.touch()
	return r.session.RequestMove(key)
}

// ChooseFork queues a fork answer for a session.
func (m *SessionManager) ChooseFork(id uuid.UUID, key string) error {
	r, err := m.runner(id)
	if err != nil {
		return err
	}
	r.touch()
	return r.session.ChooseFork(key)
}

// Reset restarts a session at the center of its level.
func (m *SessionManager) Reset(id uuid.UUID) error {
	r, err := m.runner(id)
	if err != nil {
		return err
	}
	r.touch()
	r.session.Reset()
	r.log.Info("reset session")
	return nil
}

// Subscribe registers for the updates of a session. The channel is closed
// when the session stops; cancel unregisters early.
func (m *SessionManager) Subscribe(id uuid.UUID) (<-chan game.Update, func(), error) {
	r, err := m.runner(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel, ok := r.subscribe()
	if !ok {
		return nil, nil, ErrSessionNotFound
	}
	return ch, cancel, nil
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.sessions)
}

// Stop ends a session and waits for its loop to exit.
func (m *SessionManager) Stop(id uuid.UUID) {
	m.Lock()
	r, ok := m.sessions[id]
	delete(m.sessions, id)
	m.Unlock()
	if !ok {
		return
	}

	r.halt()
	if r.started.Load() {
		<-r.done
	} else {
		r.closeSubscribers()
	}
	r.log.Info("stopped session")
}

// StopAll ends every session.
func (m *SessionManager) StopAll() {
	m.RLock()
	ids := make([]uuid.UUID, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.RUnlock()

	for _, id := range ids {
		m.Stop(id)
	}
}

func (m *SessionManager) forget(r *runner) {
	m.Lock()
	defer m.Unlock()
	if m.sessions[r.id] == r {
		delete(m.sessions, r.id)
	}
}

func (m *SessionManager) run(r *runner) {
	r.started.Store(true)
	defer close(r.done)
	defer r.closeSubscribers()

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			dt := min(now.Sub(last), maxTickStep)
			last = now

			events := r.session.Tick(dt.Seconds())
			for _, e := range events {
				if e.Kind == game.EventExitReached || e.Kind == game.EventGameOver {
					r.log.Info(fmt.Sprintf("%s at %s", e.Kind, e.Key))
				}
			}
			if r.hasSubscribers() {
				r.publish(game.Update{Events: events, Snapshot: r.session.Snapshot()})
			}

			if m.idleTimeout > 0 && now.Sub(r.lastInput()) > m.idleTimeout {
				m.forget(r)
				r.log.Info(fmt.Sprintf("expired after %s without input", m.idleTimeout))
				return
			}
		}
	}
}

type runner struct {
	id      uuid.UUID
	session *game.Session
	log     i.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	started  atomic.Bool
	input    atomic.Int64

	subsMu  sync.Mutex
	subs    map[int]chan game.Update
	nextSub int
	closed  bool
}

func newRunner(id uuid.UUID, s *game.Session, log i.Logger) *runner {
	r := &runner{
		id:      id,
		session: s,
		log:     log,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		subs:    make(map[int]chan game.Update),
	}
	r.touch()
	return r
}

func (r *runner) touch() {
	r.input.Store(time.Now().UnixNano())
}

func (r *runner) lastInput() time.Time {
	return time.Unix(0, r.input.Load())
}

func (r *runner) halt() {
	r.stopOnce.Do(func() { close(r.stop) })
}

func (r *runner) subscribe() (<-chan game.Update, func(), bool) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	if r.closed {
		return nil, nil, false
	}

	n := r.nextSub
	r.nextSub++
	ch := make(chan game.Update, subscriberBuffer)
	r.subs[n] = ch

	cancel := func() {
		r.subsMu.Lock()
		defer r.subsMu.Unlock()
		if c, ok := r.subs[n]; ok {
			delete(r.subs, n)
			close(c)
		}
	}
	return ch, cancel, true
}

func (r *runner) hasSubscribers() bool {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	return len(r.subs) > 0
}

// publish never blocks; a subscriber that falls behind misses updates.
func (r *runner) publish(u game.Update) {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

func (r *runner) closeSubscribers() {
	r.subsMu.Lock()
	defer r.subsMu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for n, ch := range r.subs {
		delete(r.subs, n)
		close(ch)
	}
}
