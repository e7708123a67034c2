package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cachestore/internal/middleware"
	"cachestore/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestMapView_ForwardsCacheChanges(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()

	w := doJSON(t, r, http.MethodPost, "/api/views/dash/mappings", map[string]any{"key": "a", "field": "b"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/cache/a", map[string]any{"value": "aaa"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/views/dash", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, map[string]any{"b": "aaa"}, decodeBody(t, w)["state"])
}

func TestMapView_PathFilter(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()

	w := doJSON(t, r, http.MethodPost, "/api/views/dash/mappings", map[string]any{"key": "c", "field": "d", "path": "x"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/cache/c", map[string]any{"value": map[string]any{"x": "xxx"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/views/dash", nil)
	require.Equal(t, map[string]any{"d": "xxx"}, decodeBody(t, w)["state"])
}

func TestMapView_Validation(t *testing.T) {
	env := newTestEnv(t)
	w := doJSON(t, env.router(), http.MethodPost, "/api/views/dash/mappings", map[string]any{"key": "a"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetView_NotFound(t *testing.T) {
	env := newTestEnv(t)
	w := doJSON(t, env.router(), http.MethodGet, "/api/views/nope", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnmapView_Selective(t *testing.T) {
	env := newTestEnv(t)
	r := env.router()

	for _, field := range []string{"fieldA", "fieldB"} {
		w := doJSON(t, r, http.MethodPost, "/api/views/dash/mappings", map[string]any{"key": "a", "field": field})
		require.Equal(t, http.StatusCreated, w.Code)
	}
	other := doJSON(t, r, http.MethodPost, "/api/views/other/mappings", map[string]any{"key": "a", "field": "fieldA"})
	require.Equal(t, http.StatusCreated, other.Code)

	w := doJSON(t, r, http.MethodDelete, "/api/views/dash/mappings?key=a&field=fieldA", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPut, "/api/cache/a", map[string]any{"value": "v"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/views/dash", nil)
	require.Equal(t, map[string]any{"fieldB": "v"}, decodeBody(t, w)["state"])
	w = doJSON(t, r, http.MethodGet, "/api/views/other", nil)
	require.Equal(t, map[string]any{"fieldA": "v"}, decodeBody(t, w)["state"])
}

func TestUnmapView_RequiresKey(t *testing.T) {
	env := newTestEnv(t)
	w := doJSON(t, env.router(), http.MethodDelete, "/api/views/dash/mappings", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathFilter(t *testing.T) {
	f := pathFilter("user.tags.1")
	require.Equal(t, "b", f(map[string]any{"user": map[string]any{"tags": []any{"a", "b"}}}))
	require.Nil(t, f(map[string]any{"user": "flat"}))
	require.Nil(t, f("scalar"))
}

func TestWatchView_ReceivesSnapshotAndPatches(t *testing.T) {
	env := newTestEnv(t)
	view := env.handler.views.Get("dash")
	view.SetState(map[string]any{"initial": true})
	env.store.Map("a", "b", view, nil)

	r := gin.New()
	r.GET("/ws/views/:view", middleware.JWTAuthMiddleware(env.tokens), env.handler.WatchView)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/views/dash?token=" + env.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg realtime.Message
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, "snapshot", msg.Type)
	require.Equal(t, map[string]any{"initial": true}, msg.State)

	require.NoError(t, env.store.Set("a", "aaa", false))

	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	msg = realtime.Message{}
	require.NoError(t, json.Unmarshal(data, &msg))
	require.Equal(t, realtime.Message{Type: "state", View: "dash", Patch: map[string]any{"b": "aaa"}}, msg)
}

func TestWatchView_RejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)
	r := gin.New()
	r.GET("/ws/views/:view", middleware.JWTAuthMiddleware(env.tokens), env.handler.WatchView)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/views/dash"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
