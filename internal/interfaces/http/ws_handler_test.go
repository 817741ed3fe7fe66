package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pot-code/course-player/internal/player"
	"github.com/stretchr/testify/assert"
)

func dialPlayer(t *testing.T, fp *fakePlayer, token string) (*websocket.Conn, *http.Response, error) {
	srv := httptest.NewServer(newTestApp(fp, &fakeKV{}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/player/c1"
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func readMessage(t *testing.T, conn *websocket.Conn) *playerMessage {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg := new(struct {
		Type  string                 `json:"type"`
		View  *player.View           `json:"view"`
		Error map[string]interface{} `json:"error"`
	})
	if !assert.NoError(t, conn.ReadJSON(msg)) {
		return &playerMessage{}
	}
	result := &playerMessage{Type: msg.Type, View: msg.View}
	if msg.Error != nil {
		result.Error = msg.Error
	}
	return result
}

func TestPlayerSocket_RequiresToken(t *testing.T) {
	_, res, err := dialPlayer(t, &fakePlayer{}, "")
	assert.Error(t, err)
	if assert.NotNil(t, res) {
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	}
}

func TestPlayerSocket_Commands(t *testing.T) {
	fp := &fakePlayer{view: &player.View{CourseID: "c1", Current: "l1"}}
	conn, _, err := dialPlayer(t, fp, signToken(t, "u1"))
	if !assert.NoError(t, err) {
		return
	}
	defer conn.Close()

	assert.NoError(t, conn.WriteJSON(map[string]string{"type": "open"}))
	msg := readMessage(t, conn)
	assert.Equal(t, "view", msg.Type)
	if assert.NotNil(t, msg.View) {
		assert.Equal(t, "l1", msg.View.Current)
	}

	assert.NoError(t, conn.WriteJSON(map[string]string{"type": "select", "lesson_id": "l2"}))
	assert.Equal(t, "view", readMessage(t, conn).Type)

	assert.NoError(t, conn.WriteJSON(map[string]string{"type": "next"}))
	assert.Equal(t, "view", readMessage(t, conn).Type)

	if assert.Len(t, fp.calls, 3) {
		assert.Equal(t, "Open", fp.calls[0].method)
		assert.Equal(t, "l2", fp.calls[1].lessonID)
		assert.Equal(t, player.DirectionNext, fp.calls[2].dir)
		assert.Equal(t, "u1", fp.calls[2].learner.ID)
	}
}

func TestPlayerSocket_CompletePushesPendingView(t *testing.T) {
	fp := &fakePlayer{
		view:    &player.View{CourseID: "c1", Current: "l2"},
		pending: &player.View{CourseID: "c1", Current: "l1", Pending: true},
	}
	conn, _, err := dialPlayer(t, fp, signToken(t, "u1"))
	if !assert.NoError(t, err) {
		return
	}
	defer conn.Close()

	assert.NoError(t, conn.WriteJSON(map[string]string{"type": "complete"}))
	first := readMessage(t, conn)
	if assert.NotNil(t, first.View) {
		assert.True(t, first.View.Pending)
	}
	second := readMessage(t, conn)
	if assert.NotNil(t, second.View) {
		assert.False(t, second.View.Pending)
		assert.Equal(t, "l2", second.View.Current)
	}
}

func TestPlayerSocket_InvalidCommands(t *testing.T) {
	fp := &fakePlayer{view: &player.View{}}
	conn, _, err := dialPlayer(t, fp, signToken(t, "u1"))
	if !assert.NoError(t, err) {
		return
	}
	defer conn.Close()

	assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{oops")))
	msg := readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.EqualValues(t, http.StatusUnprocessableEntity, msg.Error.(map[string]interface{})["code"])

	assert.NoError(t, conn.WriteJSON(map[string]string{"type": "teleport"}))
	msg = readMessage(t, conn)
	assert.Equal(t, "error", msg.Type)
	assert.EqualValues(t, http.StatusBadRequest, msg.Error.(map[string]interface{})["code"])

	assert.NoError(t, conn.WriteJSON(map[string]string{"type": "select"}))
	assert.Equal(t, "error", readMessage(t, conn).Type)

	// the session survives bad commands
	assert.NoError(t, conn.WriteJSON(map[string]string{"type": "dismiss"}))
	assert.Equal(t, "view", readMessage(t, conn).Type)
	assert.Len(t, fp.calls, 1)
}
