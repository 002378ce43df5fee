package sessionapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arcade-cabinet/beppo-laughs/api/identity"
	"github.com/arcade-cabinet/beppo-laughs/game"
	"github.com/arcade-cabinet/beppo-laughs/maze"
	"github.com/arcade-cabinet/beppo-laughs/service"
	"github.com/arcade-cabinet/beppo-laughs/service/i"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const contextSessionID = "sessionID"

// Controller handles session routes.
type Controller struct {
	sessions      i.SessionManager
	encoder       game.Encoder
	logger        i.Logger
	defaultWidth  int
	defaultHeight int
	upgrader      *websocket.Upgrader
}

// Config holds the dependencies of a Controller.
type Config struct {
	Sessions      i.SessionManager
	Encoder       game.Encoder // Optional binary encoding, negotiated with Accept.
	Logger        i.Logger
	DefaultWidth  int
	DefaultHeight int
}

// NewController creates a session controller.
func NewController(c Config) (*Controller, error) {
	if c.Sessions == nil || c.Logger == nil {
		return nil, errors.New("session controller needs a session manager and a logger")
	}
	return &Controller{
		sessions:      c.Sessions,
		encoder:       c.Encoder,
		logger:        c.Logger,
		defaultWidth:  c.DefaultWidth,
		defaultHeight: c.DefaultHeight,
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}, nil
}

// RegisterPublic registers public routes.
func (sc *Controller) RegisterPublic(route *gin.RouterGroup) {
	route.POST("/sessions", sc.create)
}

// RegisterProtected registers routes that need the session's own token.
func (sc *Controller) RegisterProtected(route *gin.RouterGroup) {
	sessions := route.Group("/sessions/:id", sc.scope)
	{
		sessions.GET("", sc.snapshot)
		sessions.GET("/level", sc.level)
		sessions.POST("/intent", sc.intent)
		sessions.POST("/move", sc.move)
		sessions.POST("/fork", sc.fork)
		sessions.POST("/reset", sc.reset)
		sessions.DELETE("", sc.stop)
		sessions.GET("/stream", sc.stream)
	}
}

// scope rejects tokens issued for another session.
func (sc *Controller) scope(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	claim, _ := identity.Claims(ctx)[service.SessionClaim].(string)
	if claim != id.String() {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is not valid for this session"})
		return
	}
	ctx.Set(contextSessionID, id)
	ctx.Next()
}

func sessionID(ctx *gin.Context) uuid.UUID {
	return ctx.MustGet(contextSessionID).(uuid.UUID)
}

func (sc *Controller) create(ctx *gin.Context) {
	var request CreateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Width == 0 {
		request.Width = sc.defaultWidth
	}
	if request.Height == 0 {
		request.Height = sc.defaultHeight
	}

	id, token, err := sc.sessions.Create(ctx, request.Seed, request.Width, request.Height)
	if err != nil {
		sc.fail(ctx, err)
		return
	}
	state, err := sc.sessions.Snapshot(id)
	if err != nil {
		sc.fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, &CreateResponse{ID: id.String(), Token: token, State: state})
}

func (sc *Controller) snapshot(ctx *gin.Context) {
	state, err := sc.sessions.Snapshot(sessionID(ctx))
	if err != nil {
		sc.fail(ctx, err)
		return
	}

	if sc.wantsBinary(ctx) {
		b, err := sc.encoder.MarshalSnapshot(state)
		if err != nil {
			sc.fail(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, sc.encoder.ContentType(), b)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

func (sc *Controller) level(ctx *gin.Context) {
	level, err := sc.sessions.Level(sessionID(ctx))
	if err != nil {
		sc.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, level)
}

func (sc *Controller) intent(ctx *gin.Context) {
	var request game.Intent
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sc.answer(ctx, sc.sessions.SetIntent(sessionID(ctx), request))
}

func (sc *Controller) move(ctx *gin.Context) {
	var request NodeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sc.answer(ctx, sc.sessions.RequestMove(sessionID(ctx), request.NodeID))
}

func (sc *Controller) fork(ctx *gin.Context) {
	var request NodeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sc.answer(ctx, sc.sessions.ChooseFork(sessionID(ctx), request.NodeID))
}

func (sc *Controller) reset(ctx *gin.Context) {
	sc.answer(ctx, sc.sessions.Reset(sessionID(ctx)))
}

func (sc *Controller) stop(ctx *gin.Context) {
	sc.sessions.Stop(sessionID(ctx))
	ctx.Status(http.StatusNoContent)
}

// answer reports accepted input; its effect shows up on the next tick.
func (sc *Controller) answer(ctx *gin.Context, err error) {
	if err != nil {
		sc.fail(ctx, err)
		return
	}
	ctx.Status(http.StatusAccepted)
}

func (sc *Controller) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTooManySessions):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, game.ErrUnknownNode),
		errors.Is(err, maze.ErrInvalidDimensions),
		errors.Is(err, service.ErrEmptySeed):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		sc.logger.Error(fmt.Sprintf("session request %s: %v", ctx.FullPath(), err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
	}
}

// stream pushes every tick update to the client and applies the frames it
// sends back. Clients that negotiate the binary encoder receive one binary
// frame per tick that produced events; everyone else gets the full update as
// JSON text.
func (sc *Controller) stream(ctx *gin.Context) {
	id := sessionID(ctx)
	binary := sc.wantsBinary(ctx)
	updates, cancel, err := sc.sessions.Subscribe(id)
	if err != nil {
		sc.fail(ctx, err)
		return
	}
	defer cancel()

	conn, err := sc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		sc.logger.Warning(fmt.Sprintf("session %s: websocket upgrade: %v", id, err))
		return
	}
	defer conn.Close()

	replies := make(chan ErrorMessage, 8)
	closed := make(chan struct{})
	go sc.readLoop(conn, id, replies, closed)

	for {
		kind, b := websocket.TextMessage, []byte(nil)
		select {
		case u, ok := <-updates:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
			if binary {
				if len(u.Events) == 0 {
					continue
				}
				kind = websocket.BinaryMessage
				b, err = sc.encoder.MarshalEvents(u.Events)
			} else {
				b, err = json.Marshal(u)
			}
		case reply := <-replies:
			b, err = json.Marshal(reply)
		case <-closed:
			return
		}

		if err != nil {
			sc.logger.Error(fmt.Sprintf("session %s: encoding frame: %v", id, err))
			return
		}
		if err := conn.WriteMessage(kind, b); err != nil {
			return
		}
	}
}

// wantsBinary reports whether the client asked for the encoder's content
// type, through Accept or the encoding query for browsers.
func (sc *Controller) wantsBinary(ctx *gin.Context) bool {
	if sc.encoder == nil {
		return false
	}
	return strings.Contains(ctx.GetHeader("Accept"), sc.encoder.ContentType()) ||
		ctx.Query("encoding") == sc.encoder.ContentType()
}

func (sc *Controller) readLoop(conn *websocket.Conn, id uuid.UUID, replies chan<- ErrorMessage, closed chan<- struct{}) {
	defer close(closed)
	for {
		_, b, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg Message
		err = json.Unmarshal(b, &msg)
		if err != nil {
			err = fmt.Errorf("malformed frame: %w", err)
		} else {
			err = sc.apply(id, msg)
		}
		if err == nil {
			continue
		}

		select {
		case replies <- ErrorMessage{Error: err.Error()}:
		default:
		}
	}
}

func (sc *Controller) apply(id uuid.UUID, msg Message) error {
	switch msg.Type {
	case "intent":
		if msg.Intent == nil {
			return errors.New("intent frame without intent")
		}
		return sc.sessions.SetIntent(id, *msg.Intent)
	case "move":
		return sc.sessions.RequestMove(id, msg.NodeID)
	case "fork":
		return sc.sessions.ChooseFork(id, msg.NodeID)
	case "reset":
		return sc.sessions.Reset(id)
	}
	return fmt.Errorf("unknown frame type %q", msg.Type)
}
