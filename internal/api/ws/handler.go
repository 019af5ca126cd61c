// Package ws streams job lifecycle events to WebSocket clients.
package ws

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/presswatch/presswatch/internal/domain/job"
	"github.com/presswatch/presswatch/internal/infrastructure/logging"
	"github.com/presswatch/presswatch/internal/infrastructure/monitoring"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin enforcement happens at the proxy
	},
}

// writeTimeout bounds a single event write to a client.
const writeTimeout = 10 * time.Second

// Handler manages WebSocket connections.
type Handler struct {
	jobs    *job.Manager
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewHandler creates a new WebSocket handler.
func NewHandler(jobs *job.Manager, log *logging.Logger, metrics *monitoring.Metrics) *Handler {
	return &Handler{jobs: jobs, log: log, metrics: metrics}
}

// HandleConnection upgrades the request and forwards job events until the
// client disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	events, cancel := h.jobs.Subscribe()
	defer cancel()

	h.send(conn, map[string]interface{}{
		"type":    "system",
		"message": "Connected to press release job stream",
	})

	// Reader goroutine detects disconnects. Pings are answered from the
	// event loop so only one goroutine ever writes to the connection.
	done := make(chan struct{})
	pings := make(chan struct{}, 1)
	go func() {
		defer close(done)
		for {
			var msg struct {
				Type string `json:"type"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "ping" {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-pings:
			if err := h.send(conn, map[string]interface{}{"type": "pong"}); err != nil {
				return
			}
		case event, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				h.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}

func (h *Handler) send(conn *websocket.Conn, data interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(data)
}
