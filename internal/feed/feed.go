// Package feed exposes a session over WebSocket so external shells (a web
// page, a dashboard) can observe the conversation and drive it remotely.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/voxhome/voxhome/pkg/core/live"
)

// Controller is the slice of the session surface the feed drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop()
	ClearHistory()
	State() live.State
	History() []live.Entry
	Devices() live.DeviceSnapshot
}

// Envelope is the wire shape of every feed message. Type selects which
// fields are populated.
type Envelope struct {
	Type    string               `json:"type"`
	State   string               `json:"state,omitempty"`
	Status  string               `json:"status,omitempty"`
	Role    string               `json:"role,omitempty"`
	Text    string               `json:"text,omitempty"`
	Entries []live.Entry         `json:"entries,omitempty"`
	Devices *live.DeviceSnapshot `json:"devices,omitempty"`
	Name    string               `json:"name,omitempty"`
	Result  string               `json:"result,omitempty"`
	Data    string               `json:"data,omitempty"`
	Message string               `json:"message,omitempty"`
}

// Command is an inbound control message from a connected shell.
type Command struct {
	Type string `json:"type"`
}

// Server broadcasts session events to connected WebSocket clients and
// executes their control commands.
type Server struct {
	ctrl     Controller
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	baseCtx context.Context
}

// NewServer creates a feed server over the given session controller. A nil
// logger disables logging.
func NewServer(ctrl Controller, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		ctrl:   ctrl,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		baseCtx: context.Background(),
	}
}

// Handler returns the HTTP handler serving the feed endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Run serves the feed until the context is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("feed listening", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errc:
		return err
	}
}

// Publish broadcasts one session event to every connected client.
func (s *Server) Publish(ev live.Event) {
	env, ok := EnvelopeFor(ev)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		c.send(env)
	}
}

// EnvelopeFor maps a session event to its wire shape. Returns false for
// events the feed does not forward.
func EnvelopeFor(ev live.Event) (Envelope, bool) {
	switch e := ev.(type) {
	case *live.StateChangedEvent:
		return Envelope{
			Type:   "state",
			State:  e.To.String(),
			Status: e.To.StatusText(),
		}, true
	case *live.TranscriptDeltaEvent:
		return Envelope{
			Type: "transcript_delta",
			Role: string(e.Role),
			Text: e.Text,
		}, true
	case *live.EntriesCommittedEvent:
		return Envelope{Type: "entries", Entries: e.Entries}, true
	case *live.HistoryClearedEvent:
		return Envelope{Type: "history_cleared"}, true
	case *live.ToolInvokedEvent:
		return Envelope{
			Type:   "tool",
			Name:   e.Name,
			Result: e.Result,
		}, true
	case *live.DevicesChangedEvent:
		devices := e.Devices
		return Envelope{Type: "devices", Devices: &devices}, true
	case *live.AudioChunkEvent:
		return Envelope{Type: "audio", Data: e.DataB64}, true
	case *live.ErrorEvent:
		return Envelope{Type: "error", Message: e.Message}, true
	default:
		return Envelope{}, false
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(ws, s.logger)
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Info("feed client connected", zap.String("remote", r.RemoteAddr))

	c.send(s.snapshot())

	go c.writePump()
	s.readPump(c)

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.close()
	s.logger.Info("feed client disconnected", zap.String("remote", r.RemoteAddr))
}

// snapshot captures the full observable state for a newly connected client.
func (s *Server) snapshot() Envelope {
	state := s.ctrl.State()
	devices := s.ctrl.Devices()
	return Envelope{
		Type:    "snapshot",
		State:   state.String(),
		Status:  state.StatusText(),
		Entries: s.ctrl.History(),
		Devices: &devices,
	}
}

func (s *Server) readPump(c *client) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.logger.Warn("malformed feed command", zap.Error(err))
			continue
		}
		s.dispatch(c, cmd)
	}
}

func (s *Server) dispatch(c *client, cmd Command) {
	s.logger.Debug("feed command", zap.String("type", cmd.Type))
	switch cmd.Type {
	case "start":
		s.mu.Lock()
		ctx := s.baseCtx
		s.mu.Unlock()
		if err := s.ctrl.Start(ctx); err != nil {
			s.logger.Warn("start command failed", zap.Error(err))
		}
	case "stop":
		s.ctrl.Stop()
	case "clear_history":
		s.ctrl.ClearHistory()
	case "snapshot":
		c.send(s.snapshot())
	default:
		s.logger.Warn("unknown feed command", zap.String("type", cmd.Type))
	}
}

// client is one connected shell. Outbound messages are buffered and dropped
// when the client cannot keep up.
type client struct {
	ws        *websocket.Conn
	out       chan Envelope
	closeOnce sync.Once
	logger    *zap.Logger
}

func newClient(ws *websocket.Conn, logger *zap.Logger) *client {
	return &client{
		ws:     ws,
		out:    make(chan Envelope, 256),
		logger: logger,
	}
}

func (c *client) send(env Envelope) {
	select {
	case c.out <- env:
	default:
		c.logger.Debug("dropping feed message", zap.String("type", env.Type))
	}
}

func (c *client) writePump() {
	for env := range c.out {
		if err := c.ws.WriteJSON(env); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.out)
		c.ws.Close()
	})
}
