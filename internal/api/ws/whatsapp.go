// Package ws hosts the WebSocket namespaces. Only the whatsapp namespace
// exists; it tracks connections and discards every frame it receives.
package ws

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/tenantcore/platform/internal/infrastructure/metrics"
)

// Namespace is the name of the WhatsApp gateway. It is also the metric label
// on platform_ws_connections.
const Namespace = "whatsapp"

const (
	pongWait     = 60 * time.Second
	pingInterval = 50 * time.Second
	writeWait    = 10 * time.Second
	readLimit    = 64 << 10
)

// Gateway upgrades requests to WebSocket connections for one namespace.
type Gateway struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewGateway accepts connections whose Origin matches allowedOrigin. Requests
// without an Origin header (non-browser clients) are accepted.
func NewGateway(allowedOrigin string, log zerolog.Logger) *Gateway {
	allowed := normalizeOrigin(allowedOrigin)
	return &Gateway{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || normalizeOrigin(origin) == allowed
			},
		},
		log: log.With().Str("namespace", Namespace).Logger(),
	}
}

// Handle serves GET /ws/whatsapp until the peer disconnects.
func (g *Gateway) Handle(c echo.Context) error {
	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		g.log.Warn().Err(err).Str("remote_addr", c.RealIP()).Msg("websocket upgrade rejected")
		return nil
	}

	id := uuid.NewString()
	log := g.log.With().Str("conn_id", id).Str("remote_addr", c.RealIP()).Logger()
	log.Info().Msg("client connected")
	metrics.WSConnections.WithLabelValues(Namespace).Inc()
	start := time.Now()

	done := make(chan struct{})
	defer func() {
		close(done)
		_ = conn.Close()
		metrics.WSConnections.WithLabelValues(Namespace).Dec()
		log.Info().Dur("duration", time.Since(start)).Msg("client disconnected")
	}()

	conn.SetReadLimit(readLimit)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go keepAlive(conn, done)

	for {
		if _, _, err := conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("connection closed unexpectedly")
			}
			return nil
		}
	}
}

func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func normalizeOrigin(s string) string {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(s), "/")
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
