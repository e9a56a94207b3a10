package api

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/salamtime/rentalops/internal/logger"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10 // must be < pongWait
	streamBuffer     = 16
)

var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin must match Host to prevent cross-site WebSocket
		// hijacking. Non-browser clients omit Origin and pass through.
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

// StreamAlerts pushes store change events over a WebSocket. The client
// receives one JSON event per refresh, read, and dismiss, and re-fetches
// the list when it cares about the new contents.
func (c *Controller) StreamAlerts(ctx echo.Context) error {
	conn, err := streamUpgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.log.Error("failed to upgrade alert stream", logger.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	events, unsubscribe := c.store.Subscribe(streamBuffer)
	defer unsubscribe()

	// gorilla/websocket allows one concurrent writer; the event loop and
	// the ping ticker share this mutex.
	var writeMu sync.Mutex

	done := make(chan struct{})

	// Reader goroutine: discards client frames, services pong handlers,
	// and signals when the peer goes away.
	go func() {
		defer close(done)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
			return nil
		})
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(streamPingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			writeErr := conn.WriteJSON(ev)
			writeMu.Unlock()
			if writeErr != nil {
				return nil
			}
		case <-pingTicker.C:
			writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			pingErr := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if pingErr != nil {
				return nil
			}
		case <-done:
			return nil
		case <-c.ctx.Done():
			return nil
		}
	}
}
