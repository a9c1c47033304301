package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketchparty/internal/app"
	"sketchparty/internal/config"
	"sketchparty/internal/domain"
)

type stubClient struct {
	id string
}

func (c *stubClient) Send(*domain.RoomEvent) error { return nil }
func (c *stubClient) SessionID() string            { return c.id }
func (c *stubClient) Close() error                 { return nil }

func newTestServer(t *testing.T) (*Server, *app.Registry) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := app.NewRegistry(domain.DefaultGameSettings(), app.NewScheduler(), logger)
	t.Cleanup(registry.Close)

	return NewServer(config.Default(), registry, logger), registry
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.server.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestGetRoom(t *testing.T) {
	t.Parallel()

	server, registry := newTestServer(t)

	session, err := registry.CreateRoom(&stubClient{id: "sid-0"}, "alice", 3)
	require.NoError(t, err)

	rec := doRequest(server, http.MethodGet, "/api/rooms/"+session.Code())
	assert.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, session.Code(), data["roomCode"])
	assert.Equal(t, float64(1), data["playerCount"])
	assert.Equal(t, "waiting", data["state"])
	assert.Equal(t, true, data["canJoin"])
}

func TestGetRoomNotFound(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodGet, "/api/rooms/ZZZZZZ")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ROOM_NOT_FOUND", resp.Error.Code)
}

func TestRoomExists(t *testing.T) {
	t.Parallel()

	server, registry := newTestServer(t)

	session, err := registry.CreateRoom(&stubClient{id: "sid-0"}, "alice", 3)
	require.NoError(t, err)

	rec := doRequest(server, http.MethodGet, "/api/rooms/"+session.Code()+"/exists")
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Data.(map[string]interface{})["exists"].(bool))

	rec = doRequest(server, http.MethodGet, "/api/rooms/ZZZZZZ/exists")
	resp = decodeResponse(t, rec)
	assert.False(t, resp.Data.(map[string]interface{})["exists"].(bool))
}

func TestRoomQR(t *testing.T) {
	t.Parallel()

	server, registry := newTestServer(t)

	session, err := registry.CreateRoom(&stubClient{id: "sid-0"}, "alice", 3)
	require.NoError(t, err)

	rec := doRequest(server, http.MethodGet, "/api/rooms/"+session.Code()+"/qr")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())

	rec = doRequest(server, http.MethodGet, "/api/rooms/ZZZZZZ/qr")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	t.Parallel()

	server, registry := newTestServer(t)

	_, err := registry.CreateRoom(&stubClient{id: "sid-0"}, "alice", 3)
	require.NoError(t, err)

	rec := doRequest(server, http.MethodGet, "/api/stats")
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["activeRooms"])
	assert.Equal(t, float64(1), data["totalPlayers"])
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t)

	rec := doRequest(server, http.MethodOptions, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
