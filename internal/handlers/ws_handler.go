package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"cachestore/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsReadLimit  = 1024
)

// viewConn is the realtime.Client of one websocket watching a view.
// Patches for a view may be broadcast from any goroutine that mutates the cache.
type viewConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (vc *viewConn) write(messageType int, data []byte) error {
	vc.mu.Lock()
	defer vc.mu.Unlock()
	if err := vc.conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return vc.conn.WriteMessage(messageType, data)
}

func (vc *viewConn) Send(message []byte) bool {
	return vc.write(websocket.TextMessage, message) == nil
}

func (vc *viewConn) Close() {
	_ = vc.conn.Close()
}

// ping keeps the connection alive until done is closed or a ping fails.
func (vc *viewConn) ping(done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := vc.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain discards client frames; it returns once the peer goes away.
func (vc *viewConn) drain() {
	vc.conn.SetReadLimit(wsReadLimit)
	_ = vc.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	vc.conn.SetPongHandler(func(string) error {
		return vc.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := vc.conn.ReadMessage(); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced by the gin middleware
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WatchView handles GET /ws/views/:view
// Sends a snapshot of the view, then one "state" message per mapped cache change.
// Must sit behind JWTAuthMiddleware.
func (h *Handler) WatchView(c *gin.Context) {
	view := h.views.Get(c.Param("view"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("views: upgrade %q: %v", view.ID(), err)
		return
	}
	vc := &viewConn{conn: conn}
	log.Printf("views: %s watching %q", middleware.Username(c), view.ID())

	done := make(chan struct{})
	h.hub.Register(view.ID(), vc)
	defer func() {
		close(done)
		h.hub.Unregister(view.ID(), vc)
		vc.Close()
	}()

	snapshot, err := view.Snapshot()
	if err != nil {
		log.Printf("views: snapshot %q: %v", view.ID(), err)
		return
	}
	if !vc.Send(snapshot) {
		return
	}

	go vc.ping(done)
	vc.drain()
}
