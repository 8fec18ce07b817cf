// Package web provides the real-time monitoring dashboard: current
// session state, recent run assessments, and a websocket feed of status
// events.
package web

import (
	"log/slog"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/calmwave/panicwatch/pkg/hub"
	"github.com/calmwave/panicwatch/pkg/session"
)

// maxRuns bounds the in-memory run history.
const maxRuns = 100

// Status is the dashboard's view of the session.
type Status struct {
	State     string              `json:"state"`
	Runs      int                 `json:"runs"`
	Last      *session.Assessment `json:"last,omitempty"`
	Listeners int                 `json:"listeners"`
}

// Event is the envelope pushed over the status websocket.
type Event struct {
	Type       string              `json:"type"` // state, assessment
	State      string              `json:"state,omitempty"`
	Assessment *session.Assessment `json:"assessment,omitempty"`
}

// Server is the dashboard server. Wire SetState into the session's
// OnTransition callback and Record into OnAssessment.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	mu    sync.RWMutex
	state session.State
	runs  []*session.Assessment

	statusHub *hub.Hub
}

// NewServer creates a dashboard server listening on addr.
func NewServer(addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:      addr,
		logger:    logger,
		runs:      make([]*session.Assessment, 0, maxRuns),
		statusHub: hub.New("status", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Panicwatch Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/runs", s.handleRuns)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start runs the hub loop and serves until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "addr", s.addr)
	go s.statusHub.Run()
	return s.app.Listen(s.addr)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("dashboard server error", "error", err)
		}
	}()
}

// SetState records a session state change and broadcasts it.
func (s *Server) SetState(st session.State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	s.statusHub.BroadcastJSON(Event{Type: "state", State: st.String()})
}

// Record appends a completed assessment to the run history and
// broadcasts it.
func (s *Server) Record(a *session.Assessment) {
	s.mu.Lock()
	s.runs = append(s.runs, a)
	if len(s.runs) > maxRuns {
		s.runs = s.runs[1:]
	}
	s.mu.Unlock()

	s.statusHub.BroadcastJSON(Event{Type: "assessment", Assessment: a})
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
