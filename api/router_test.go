package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arcade-cabinet/beppo-laughs/api/i"
	"github.com/arcade-cabinet/beppo-laughs/api/identity"
	mazeapi "github.com/arcade-cabinet/beppo-laughs/api/maze"
	sessionapi "github.com/arcade-cabinet/beppo-laughs/api/session"
	"github.com/arcade-cabinet/beppo-laughs/catalog"
	"github.com/arcade-cabinet/beppo-laughs/game"
	pb "github.com/arcade-cabinet/beppo-laughs/game/pb_encoder"
	"github.com/arcade-cabinet/beppo-laughs/geometry"
	"github.com/arcade-cabinet/beppo-laughs/infrastruture/cache"
	logger "github.com/arcade-cabinet/beppo-laughs/infrastruture/log"
	"github.com/arcade-cabinet/beppo-laughs/infrastruture/token"
	"github.com/arcade-cabinet/beppo-laughs/service"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	handler  http.Handler
	sessions *service.SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, err := logger.New("TEST", "", io.Discard)
	require.NoError(t, err)
	tokens := token.NewJwtService("secret", "beppo")

	mazes, err := service.NewMazeService(service.MazeConfig{
		Cache:    cache.NewMemoryLayoutCache(),
		Catalog:  catalog.Default(),
		Geometry: geometry.DefaultConfig,
		TTL:      time.Minute,
		Logger:   log,
	})
	require.NoError(t, err)

	sessions, err := service.NewSessionManager(&service.Config{
		Levels:    mazes,
		Tokenizer: tokens,
		Logger:    log,
		Tuning:    game.DefaultTuning(),
		MaxSanity: 100,
		TickRate:  60,
		TokenTTL:  time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(sessions.StopAll)

	sc, err := sessionapi.NewController(sessionapi.Config{
		Sessions:      sessions,
		Encoder:       &pb.Protobuf{},
		Logger:        log,
		DefaultWidth:  9,
		DefaultHeight: 9,
	})
	require.NoError(t, err)

	router := NewRouter(Config{
		BaseURL:                 "/api",
		Controllers:             []i.Controller{mazeapi.NewController(mazes, log, 9, 9), sc},
		AuthorizationMiddleware: identity.Authoriz(tokens),
	})
	return &fixture{handler: router.Handler(), sessions: sessions}
}

func (f *fixture) do(method, path, token, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for n := 0; n+1 < len(header); n += 2 {
		req.Header.Set(header[n], header[n+1])
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)
	return w
}

func (f *fixture) create(t *testing.T, seed string) sessionapi.CreateResponse {
	t.Helper()
	w := f.do(http.MethodPost, "/api/v1/sessions", "", `{"seed":"`+seed+`","width":7,"height":7}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res sessionapi.CreateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestMazeRoutes(t *testing.T) {
	f := newFixture(t)

	t.Run("Level", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/mazes/test?width=7&height=7", "", "")
		require.Equal(t, http.StatusOK, w.Code)

		var level struct {
			Seed     string             `json:"seed"`
			Geometry *geometry.Geometry `json:"geometry"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &level))
		assert.Equal(t, "test", level.Seed)
		require.NotNil(t, level.Geometry)
		assert.Equal(t, 7, level.Geometry.Width)
		assert.Len(t, level.Geometry.Nodes, 49)
		assert.Contains(t, w.Body.String(), `"spawnPlan"`)
	})

	t.Run("Default size", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/v1/mazes/test/ascii", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
		assert.Len(t, lines, 2*9+1)
		assert.Contains(t, w.Body.String(), "C")
	})

	t.Run("Bad size", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/mazes/test?width=1", "", "").Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/mazes/test?height=x", "", "").Code)
	})
}

func TestSessionRoutes(t *testing.T) {
	f := newFixture(t)
	s := f.create(t, "big top")
	path := "/api/v1/sessions/" + s.ID

	assert.Equal(t, "big top", s.State.Seed)
	assert.Equal(t, game.StatusPlaying, s.State.Status)
	assert.Equal(t, "3,3", s.State.Navigation.Current)

	t.Run("Create validation", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/v1/sessions", "", `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/api/v1/sessions", "", `{"seed":"x","width":200}`).Code)
	})

	t.Run("Token is required and scoped", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, path, "", "").Code)

		other := f.create(t, "other")
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, path, other.Token, "").Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/v1/sessions/nope", s.Token, "").Code)
	})

	t.Run("Snapshot as JSON", func(t *testing.T) {
		w := f.do(http.MethodGet, path, s.Token, "")
		require.Equal(t, http.StatusOK, w.Code)
		var snap game.Snapshot
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
		assert.Equal(t, "big top", snap.Seed)
	})

	t.Run("Snapshot as protobuf", func(t *testing.T) {
		w := f.do(http.MethodGet, path, s.Token, "", "Accept", pb.ContentType)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, pb.ContentType, w.Header().Get("Content-Type"))

		snap, err := (&pb.Protobuf{}).UnmarshalSnapshot(w.Body.Bytes())
		require.NoError(t, err)
		assert.Equal(t, "big top", snap.Seed)
		assert.Equal(t, game.StatusPlaying, snap.Status)
	})

	t.Run("Level of the session", func(t *testing.T) {
		w := f.do(http.MethodGet, path+"/level", s.Token, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"seed":"big top"`)
	})

	t.Run("Input", func(t *testing.T) {
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, path+"/intent", s.Token, `{"braking":true}`).Code)
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, path+"/move", s.Token, `{"nodeId":"3,2"}`).Code)
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, path+"/fork", s.Token, `{"nodeId":"2,3"}`).Code)
		assert.Equal(t, http.StatusAccepted, f.do(http.MethodPost, path+"/reset", s.Token, "").Code)

		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, path+"/move", s.Token, `{"nodeId":"99,99"}`).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, path+"/move", s.Token, `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, path+"/intent", s.Token, `not json`).Code)
	})

	t.Run("Stop", func(t *testing.T) {
		s := f.create(t, "short lived")
		path := "/api/v1/sessions/" + s.ID
		assert.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, path, s.Token, "").Code)
		assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, path, s.Token, "").Code)
	})
}

func dialStream(t *testing.T, server *httptest.Server, s sessionapi.CreateResponse, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/sessions/" + s.ID + "/stream?token=" + s.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func TestSessionStream(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.handler)
	defer server.Close()
	s := f.create(t, "stream")
	conn := dialStream(t, server, s, nil)

	frames := []string{
		`{"type":"intent","intent":{"accelerating":true}}`,
		`{"type":"warp"}`,
		`{"type":`,
		`{"type":"move","nodeId":"99,99"}`,
		`{"type":"intent"}`,
	}
	for _, frame := range frames {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
	}

	var errs []string
	gotUpdate := false
	for !gotUpdate || len(errs) < 4 {
		kind, b, err := conn.ReadMessage()
		require.NoError(t, err)
		require.Equal(t, websocket.TextMessage, kind)

		if !bytes.Contains(b, []byte(`"snapshot"`)) {
			var msg sessionapi.ErrorMessage
			require.NoError(t, json.Unmarshal(b, &msg))
			errs = append(errs, msg.Error)
			continue
		}

		var u game.Update
		require.NoError(t, json.Unmarshal(b, &u))
		assert.Equal(t, "stream", u.Snapshot.Seed)
		gotUpdate = true
	}

	require.Len(t, errs, 4)
	assert.Contains(t, errs[0], "warp")
	assert.Contains(t, errs[1], "malformed frame")
	assert.Contains(t, errs[2], game.ErrUnknownNode.Error())
	assert.Contains(t, errs[3], "without intent")

	t.Run("Closed when the session stops", func(t *testing.T) {
		f.sessions.Stop(uuid.MustParse(s.ID))
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
				return
			}
		}
	})
}

func TestSessionStreamBinary(t *testing.T) {
	f := newFixture(t)
	server := httptest.NewServer(f.handler)
	defer server.Close()
	s := f.create(t, "stream")
	conn := dialStream(t, server, s, http.Header{"Accept": []string{pb.ContentType}})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"intent","intent":{"accelerating":true}}`)))

	kind, b, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.BinaryMessage, kind)

	events, err := (&pb.Protobuf{}).UnmarshalEvents(b)
	require.NoError(t, err)
	require.NotEmpty(t, events, "quiet ticks send no binary frame")
	assert.NotEmpty(t, events[0].Kind)
}
