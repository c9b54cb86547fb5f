package plugin

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kataras/figma-variables/pkg/exporter"
)

const writeTimeout = 10 * time.Second

// Server exposes sessions over WebSocket. Each connection is one session:
// it is activated on connect and its requests are handled in order.
type Server struct {
	open     exporter.Opener
	logger   Logger
	upgrader websocket.Upgrader
}

// NewServer returns a Server. When origins is empty every origin is
// accepted; plugin iframes report the origin "null".
func NewServer(open exporter.Opener, logger Logger, origins []string) *Server {
	s := &Server{open: open, logger: orNop(logger)}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return len(origins) == 0 || slices.Contains(origins, r.Header.Get("Origin"))
		},
	}
	return s
}

// ServeHTTP upgrades the request and runs the session until the client
// disconnects or the request context ends.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade from %s failed: %v", r.RemoteAddr, err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Unblock ReadMessage when the server shuts down.
	go func() {
		<-ctx.Done()
		conn.SetReadDeadline(time.Now())
	}()

	post := PosterFunc(func(_ context.Context, msg Message) error {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		return conn.WriteJSON(msg)
	})

	s.logger.Infof("Session started for %s", r.RemoteAddr)
	p := New(s.open, post, s.logger)
	if err := p.OnActivate(ctx); err != nil {
		s.logger.Errorf("Activation failed: %v", err)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "activation failed"))
		return
	}

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				s.logger.Warnf("Session %s ended: %v", r.RemoteAddr, err)
			}
			break
		}
		if kind != websocket.TextMessage {
			continue
		}

		if err := p.HandleMessage(ctx, data); err != nil {
			s.logger.Errorf("Request failed: %v", err)
		}
	}

	s.logger.Infof("Session closed for %s", r.RemoteAddr)
}
