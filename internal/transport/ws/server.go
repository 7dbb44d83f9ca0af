// Package ws exposes a running session over WebSocket: frames broadcast to
// every connected observer, control intents accepted from whichever client is
// driving.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hillrush/hillrush/internal/game"
)

// Bootstrap is served on /bootstrap so clients can size their view before
// subscribing to the frame stream.
type Bootstrap struct {
	Seed       int64  `json:"seed"`
	TickRateHz int    `json:"tick_rate_hz"`
	Biome      string `json:"biome,omitempty"`
}

// controlMsg is the inbound wire format for drive intents.
type controlMsg struct {
	Type     string        `json:"type"`
	Controls game.Controls `json:"controls"`
}

type client struct {
	conn *websocket.Conn
	out  chan []byte
}

// Server broadcasts session frames and feeds client controls back to the
// simulation loop.
type Server struct {
	log       *slog.Logger
	bootstrap Bootstrap

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]*client

	controls chan game.Controls
}

// NewServer creates a hub for the given session parameters.
func NewServer(bootstrap Bootstrap, log *slog.Logger) *Server {
	return &Server{
		log:       log,
		bootstrap: bootstrap,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		clients:  make(map[uint64]*client),
		controls: make(chan game.Controls, 64),
	}
}

// Controls returns the channel of inbound drive intents. The simulation loop
// drains it each tick; the latest intent wins.
func (s *Server) Controls() <-chan game.Controls { return s.controls }

// BootstrapHandler serves the static session parameters as JSON.
func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.bootstrap)
	}
}

// WSHandler upgrades the connection and runs it until the client drops.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		id := s.nextID.Add(1)
		c := &client{conn: conn, out: make(chan []byte, 256)}

		s.mu.Lock()
		s.clients[id] = c
		s.mu.Unlock()
		s.log.Info("observer connected", "id", id, "remote", r.RemoteAddr)

		defer func() {
			_ = conn.Close()
			s.log.Info("observer disconnected", "id", id)
		}()

		// Writer goroutine; closing out stops it.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for b := range c.out {
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(time.Second))
		}()

		// Reader loop: control intents.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var cm controlMsg
			if err := json.Unmarshal(msg, &cm); err != nil {
				continue
			}
			if cm.Type != "CONTROLS" {
				continue
			}
			select {
			case s.controls <- cm.Controls:
			default:
				// Sim loop is behind; stale intents are safe to drop.
			}
		}

		// Leave the broadcast set before closing out, so Broadcast never
		// sends on a closed channel.
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		close(c.out)
		<-done
	}
}

// Broadcast marshals the frame once and fans it out to every connected
// client. Slow clients lose frames rather than stalling the tick.
func (s *Server) Broadcast(f game.Frame) {
	b, err := json.Marshal(f)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.out <- b:
		default:
		}
	}
}

// ClientCount returns the number of connected observers.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// CloseAll disconnects every client, used at shutdown.
func (s *Server) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		_ = c.conn.Close()
		delete(s.clients, id)
	}
}
