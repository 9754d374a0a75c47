// SPDX-License-Identifier: MIT
package transport

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"sync"

	applog "gtuner/internal/log"

	"github.com/gorilla/websocket"
)

//go:embed web
var webFiles embed.FS

// WebSocketTransport serves the tuner page on / and pushes every value sent
// to it as JSON to the browsers connected on /ws. A newly connected browser
// first receives the most recent value so it does not start blank.
type WebSocketTransport struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	clientsMu sync.Mutex
	last      any
	broadcast chan any
	done      chan struct{}
	closeOnce sync.Once

	server   *http.Server
	listener net.Listener
}

// NewWebSocketTransport creates a transport without a listener. Use
// Handler to mount it or Listen to serve it.
func NewWebSocketTransport() *WebSocketTransport {
	wst := &WebSocketTransport{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // The page may be opened from another host on the LAN
			},
		},
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan any, 256),
		done:      make(chan struct{}),
	}

	go wst.handleBroadcasts()
	return wst
}

// Handler returns the HTTP handler serving the page and the socket.
func (wst *WebSocketTransport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wst.handleWebSocket)

	page, err := fs.Sub(webFiles, "web")
	if err != nil {
		panic(err) // embedded tree is fixed at build time
	}
	mux.Handle("/", http.FileServerFS(page))
	return mux
}

// Listen starts serving on addr in the background.
func (wst *WebSocketTransport) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	wst.listener = ln
	wst.server = &http.Server{Handler: wst.Handler()}

	go func() {
		applog.Infof("WebSocketTransport: Serving tuner page on http://%s/", ln.Addr())
		if err := wst.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			applog.Errorf("WebSocketTransport: Server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the listening address, or nil before Listen.
func (wst *WebSocketTransport) Addr() net.Addr {
	if wst.listener == nil {
		return nil
	}
	return wst.listener.Addr()
}

// Clients returns the number of connected browsers.
func (wst *WebSocketTransport) Clients() int {
	wst.clientsMu.Lock()
	defer wst.clientsMu.Unlock()
	return len(wst.clients)
}

// handleWebSocket upgrades HTTP connections to WebSocket
func (wst *WebSocketTransport) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wst.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("WebSocketTransport: Upgrade error: %v", err)
		return
	}

	// Register client and replay the current state
	wst.clientsMu.Lock()
	if wst.last != nil {
		if err := conn.WriteJSON(wst.last); err != nil {
			wst.clientsMu.Unlock()
			conn.Close()
			return
		}
	}
	wst.clients[conn] = true
	total := len(wst.clients)
	wst.clientsMu.Unlock()
	applog.Debugf("WebSocketTransport: Client connected, total: %d", total)

	// Browsers never send anything; a read error means they went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		wst.clientsMu.Lock()
		delete(wst.clients, conn)
		total := len(wst.clients)
		wst.clientsMu.Unlock()
		conn.Close()
		applog.Debugf("WebSocketTransport: Client disconnected, total: %d", total)
	}()
}

// handleBroadcasts sends messages to all connected clients
func (wst *WebSocketTransport) handleBroadcasts() {
	for {
		select {
		case <-wst.done:
			return
		case data := <-wst.broadcast:
			wst.clientsMu.Lock()
			wst.last = data
			for client := range wst.clients {
				if err := client.WriteJSON(data); err != nil {
					applog.Debugf("WebSocketTransport: Error sending to client: %v", err)
					client.Close()
					delete(wst.clients, client)
				}
			}
			wst.clientsMu.Unlock()
		}
	}
}

// Send queues data for all connected clients. When the queue is full the
// value is dropped; the next one supersedes it anyway.
func (wst *WebSocketTransport) Send(data any) error {
	select {
	case <-wst.done:
		return errors.New("websocket transport closed")
	default:
	}

	select {
	case wst.broadcast <- data:
	default:
	}
	return nil
}

// Close shuts down the server and disconnects all clients.
func (wst *WebSocketTransport) Close() error {
	var err error
	wst.closeOnce.Do(func() {
		applog.Infof("WebSocketTransport: Closing server")
		close(wst.done)

		wst.clientsMu.Lock()
		for client := range wst.clients {
			client.Close()
		}
		wst.clients = make(map[*websocket.Conn]bool)
		wst.clientsMu.Unlock()

		if wst.server != nil {
			err = wst.server.Close()
		}
	})
	return err
}
