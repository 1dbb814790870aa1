package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"pandemica/internal/sim"
	"pandemica/internal/wire"
)

// errClientFrame rejects frames sent by clients; only the server streams frames.
var errClientFrame = errors.New("clients may only send control updates")

type streamHub struct {
	mu       sync.Mutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	logger   *log.Logger
}

func newStreamHub(logger *log.Logger) *streamHub {
	return &streamHub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

func (h *streamHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *streamHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

func (h *streamHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// send writes to a single client. Writes are serialized by the hub lock.
func (h *streamHub) send(conn *websocket.Conn, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, payload)
}

func (h *streamHub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			h.logger.Warn("dropping client", "remote", conn.RemoteAddr(), "err", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *streamHub) broadcastFrame(f sim.Frame) {
	h.broadcast(wire.MarshalFrame(f))
}

func (h *streamHub) broadcastControl(c sim.ControlSettings) {
	h.broadcast(wire.MarshalControl(c))
}

func (h *streamHub) handler(simulation *sim.Simulation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Error("websocket upgrade failed", "err", err)
			return
		}
		h.add(conn)
		defer h.remove(conn)
		h.logger.Info("client connected", "remote", conn.RemoteAddr(), "clients", h.clientCount())

		// Send the current frame and control state immediately.
		if err := h.send(conn, wire.MarshalFrame(simulation.Frame())); err != nil {
			return
		}
		if err := h.send(conn, wire.MarshalControl(simulation.ControlSettings())); err != nil {
			return
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Warn("stream read error", "remote", conn.RemoteAddr(), "err", err)
				}
				return
			}

			applied, err := simulation.UpdateControlSettings(func(current sim.ControlSettings) (sim.ControlSettings, error) {
				msg, err := wire.Unmarshal(data, current)
				if err != nil {
					return current, err
				}
				if msg.Control == nil {
					return current, errClientFrame
				}
				return *msg.Control, nil
			})
			if errors.Is(err, errClientFrame) {
				h.logger.Warn("ignoring client frame", "remote", conn.RemoteAddr())
				continue
			}
			if err != nil {
				h.logger.Warn("unable to decode message", "err", err)
				continue
			}

			h.logger.Info("controls updated",
				"transmission", applied.TransmissionModifier,
				"speed", applied.SpeedModifier,
				"lockdown", applied.LockdownEnabled,
				"paused", applied.Paused)
			h.broadcastControl(applied)
		}
	}
}

type historyPoint struct {
	Step        int `json:"step"`
	Susceptible int `json:"susceptible"`
	Exposed     int `json:"exposed"`
	Infectious  int `json:"infectious"`
	Recovered   int `json:"recovered"`
	Deceased    int `json:"deceased"`
}

func historyHandler(simulation *sim.Simulation, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		history := simulation.History()
		points := make([]historyPoint, len(history))
		for i, c := range history {
			points[i] = historyPoint{
				Step:        i + 1,
				Susceptible: c.Get(sim.Susceptible),
				Exposed:     c.Get(sim.Exposed),
				Infectious:  c.Get(sim.Infectious),
				Recovered:   c.Get(sim.Recovered),
				Deceased:    c.Get(sim.Deceased),
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(points); err != nil {
			logger.Warn("failed to write history", "err", err)
		}
	}
}

func newMux(simulation *sim.Simulation, hub *streamHub, protoDir, webDir string, logger *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/proto/", http.StripPrefix("/proto/", http.FileServer(http.Dir(protoDir))))
	mux.Handle("/ws/stream", hub.handler(simulation))
	mux.Handle("/api/history", historyHandler(simulation, logger))
	mux.Handle("/", http.FileServer(http.Dir(webDir)))
	return mux
}
