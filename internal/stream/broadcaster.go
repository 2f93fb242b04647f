// Package stream pushes each cycle result over WebSocket to connected
// presentation clients. Rendering is entirely the client's concern; the feed
// only carries the valuation results.
package stream

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

// Broadcaster fans a JSON message out to every connected WebSocket client.
type Broadcaster struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			// The feed is read-only and unauthenticated; any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
		conns:  make(map[*websocket.Conn]struct{}),
	}
}

// Handler upgrades an HTTP request and registers the connection.
func (b *Broadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		b.mu.Lock()
		b.conns[conn] = struct{}{}
		n := len(b.conns)
		b.mu.Unlock()
		b.logger.Info("stream client connected", zap.Int("clients", n))

		// Drain incoming frames so close handshakes are noticed.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					b.drop(conn)
					return
				}
			}
		}()
	}
}

// Broadcast sends v as JSON to every client, dropping connections that fail.
func (b *Broadcaster) Broadcast(v any) {
	b.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(b.conns))
	for conn := range b.conns {
		conns = append(conns, conn)
	}
	b.mu.Unlock()

	for _, conn := range conns {
		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(v); err != nil {
			b.logger.Warn("stream write failed, dropping client", zap.Error(err))
			b.drop(conn)
		}
	}
}

// ListenAndServe exposes the feed at /ws on addr. It blocks.
func (b *Broadcaster) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", b.Handler())
	return http.ListenAndServe(addr, mux)
}

func (b *Broadcaster) drop(conn *websocket.Conn) {
	b.mu.Lock()
	_, ok := b.conns[conn]
	delete(b.conns, conn)
	b.mu.Unlock()

	if ok {
		_ = conn.Close()
	}
}
