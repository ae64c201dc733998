package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCreator struct {
	code string
}

func (that *stubCreator) CreateRoomCode() string { return that.code }

func newTestRouter(creator roomCreator, publicURL string) *httprouter.Router {
	server := NewServer(creator, publicURL)

	mux := httprouter.New()
	mux.GET("/", server.handleIndex)
	mux.GET("/ping", server.handlePing)
	mux.GET("/create_room", server.handleCreateRoom)
	mux.GET("/room/:code/qr", server.handleRoomQR)

	return mux
}

func TestHandlePing(t *testing.T) {
	// Given: the lobby router
	mux := newTestRouter(&stubCreator{}, "http://localhost:8080")

	// When: requesting the health check
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	// Then: it answers pong
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestHandleCreateRoom(t *testing.T) {
	// Given: a creator handing out a fixed code
	mux := newTestRouter(&stubCreator{code: "ABC123"}, "http://localhost:8080")

	// When: requesting a room code
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create_room", nil))

	// Then: the code comes back as JSON
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ABC123", body["room_code"])
}

func TestHandleRoomQR(t *testing.T) {
	// Given: the lobby router
	mux := newTestRouter(&stubCreator{}, "http://localhost:8080")

	// When: requesting the QR code for a room
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/room/ABC123/qr", nil))

	// Then: a PNG comes back
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	// PNG magic bytes
	body := rec.Body.Bytes()
	require.Greater(t, len(body), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, body[:4])
}
