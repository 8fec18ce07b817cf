package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/calmwave/panicwatch/pkg/hub"
)

// handleStatus returns the current session state and latest assessment.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.mu.RLock()
	status := Status{
		State: s.state.String(),
		Runs:  len(s.runs),
	}
	if n := len(s.runs); n > 0 {
		status.Last = s.runs[n-1]
	}
	s.mu.RUnlock()

	status.Listeners = s.statusHub.ClientCount()
	return c.JSON(status)
}

// handleRuns returns the run history, newest last.
func (s *Server) handleRuns(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return c.JSON(s.runs)
}

// handleStatusWS serves one websocket client: replay the current state,
// then stream events until the connection drops.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.mu.RLock()
	ev := Event{Type: "state", State: s.state.String()}
	if n := len(s.runs); n > 0 {
		ev.Assessment = s.runs[n-1]
	}
	s.mu.RUnlock()
	c.WriteJSON(ev)

	client := hub.NewClient(s.statusHub, c)
	client.Run()
}
