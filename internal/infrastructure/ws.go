package infra

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// WebsocketHandler serves one upgraded connection, returning ends the session
type WebsocketHandler func(c echo.Context, conn *websocket.Conn) error

// Websocket upgrades requests and keeps connections alive with ping frames
type Websocket struct {
	upgrader     websocket.Upgrader
	WriteWait    time.Duration
	PongWait     time.Duration
	PingInterval time.Duration
}

// NewWebsocket create a Websocket with default timings
func NewWebsocket() *Websocket {
	pongWait := 30 * time.Second
	return &Websocket{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			HandshakeTimeout: 3 * time.Second,
		},
		WriteWait:    10 * time.Second,
		PongWait:     pongWait,
		PingInterval: pongWait * 9 / 10,
	}
}

// WithHeartbeat wrap handler function with heartbeat probe.
// handler runs on the request goroutine so c stays valid until the socket closes
func (ws *Websocket) WithHeartbeat(handler WebsocketHandler) echo.HandlerFunc {
	return func(c echo.Context) error {
		conn, err := ws.upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// upgrader already answered the client
			return nil
		}
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(ws.PongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(ws.PongWait))
		})

		done := make(chan struct{})
		defer close(done)
		go ws.heartbeatRoutine(conn, done)

		for {
			if err := handler(c, conn); err != nil {
				return nil
			}
		}
	}
}

func (ws *Websocket) heartbeatRoutine(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(ws.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ws.WriteWait)); err != nil {
				conn.Close()
				return
			}
		}
	}
}
