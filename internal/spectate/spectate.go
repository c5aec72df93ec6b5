// Package spectate implements a read-only WebSocket mirror of the
// running match: every connected client receives the same JSON frame
// once per tick, with no input channel back into the game. It carries
// no game logic of its own — it renders nothing client-side beyond an
// echo of server-computed state.
package spectate

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ehl-hqm/migo-hqm-server/internal/model"
	"github.com/ehl-hqm/migo-hqm-server/internal/session"
)

const (
	clientSendBuf = 16
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// Debug is this package's own diagnostic logger, discarded by
// default.
var Debug = log.New(discardWriter{}, "[spectate] ", log.Ltime)

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// PlayerView is the subset of a session a spectator is allowed to
// see: no address, no packet-index or cooldown bookkeeping.
type PlayerView struct {
	Slot     int          `json:"slot"`
	Identity string       `json:"identity"`
	Team     model.Team   `json:"team"`
	Hand     session.Hand `json:"hand"`
	Position string       `json:"position"`
}

// Frame is one tick's broadcast payload.
type Frame struct {
	Game    model.GameState `json:"game"`
	Players []PlayerView    `json:"players"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Server fans out the match's per-tick state to connected spectator
// WebSocket clients; it never reads anything meaningful back from
// them.
type Server struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer returns an empty fan-out server.
func NewServer() *Server {
	return &Server{clients: make(map[*client]struct{})}
}

// Broadcast serializes state and enqueues it to every connected
// client's send buffer, dropping the frame for any client whose
// buffer is already full rather than blocking the caller: a slow
// spectator must never stall the tick loop that calls this.
func (s *Server) Broadcast(state model.GameState, players []PlayerView) {
	data, err := json.Marshal(Frame{Game: state, Players: players})
	if err != nil {
		Debug.Printf("marshal: %s", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
			Debug.Printf("dropping frame for a slow spectator")
		}
	}
}

// Roster converts a session registry's occupied slots into the
// read-only view Broadcast fans out.
func Roster(r *session.Registry) []PlayerView {
	var views []PlayerView
	for slot := 0; slot < r.Capacity(); slot++ {
		sess, ok := r.Session(slot)
		if !ok {
			continue
		}
		views = append(views, PlayerView{
			Slot:     sess.Slot,
			Identity: sess.Identity,
			Team:     sess.Team,
			Hand:     sess.Hand,
			Position: sess.PreferredPosition,
		})
	}
	return views
}

// HandleWS upgrades an HTTP request to a WebSocket and registers the
// connection as a spectator.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Debug.Printf("upgrade: %s", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, clientSendBuf), done: make(chan struct{})}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writePump(c)
	go s.readPump(c)
}

// writePump owns the connection's lifecycle: it drains the client's
// send channel, pings it to detect a dead peer, and on exit removes
// the client from the fan-out set and closes the socket.
func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.removeClient(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection's read deadline alive via pongs. A
// spectator has nothing meaningful to say, so any actual message it
// sends is discarded; only a read error or close frame ends the loop.
func (s *Server) readPump(c *client) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}

// ListenAndServe starts the spectator HTTP/WebSocket listener. It
// blocks, so the caller is expected to run it in its own goroutine.
func (s *Server) ListenAndServe(port uint) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/spectate", s.HandleWS)

	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}
