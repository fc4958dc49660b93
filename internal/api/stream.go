package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// RecommendationEvent describes websocket payloads emitted as recommendations
// are produced.
type RecommendationEvent struct {
	Type           string             `json:"type"`
	RequestID      string             `json:"request_id"`
	Status         string             `json:"status"`
	Delegated      bool               `json:"delegated"`
	Recommendation *RecommendResponse `json:"recommendation,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(event RecommendationEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(event)
}

// RecommendationNotifier tracks connected websocket clients and broadcasts
// each produced recommendation to them.
type RecommendationNotifier struct {
	mu        sync.Mutex
	clients   map[*wsClient]struct{}
	lastEvent *RecommendationEvent
}

// NewRecommendationNotifier constructs a notifier instance.
func NewRecommendationNotifier() *RecommendationNotifier {
	return &RecommendationNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection, replaying the most recent event
// so late joiners see current activity.
func (n *RecommendationNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	last := n.lastEvent
	n.mu.Unlock()

	if last != nil {
		_ = client.writeJSON(*last)
	}
	return client
}

// Unregister removes the websocket client and closes the socket.
func (n *RecommendationNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast sends the supplied event to all registered websocket clients.
func (n *RecommendationNotifier) Broadcast(event RecommendationEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	snapshot := event
	n.lastEvent = &snapshot

	for client := range n.clients {
		if err := client.writeJSON(event); err != nil {
			logrus.WithError(err).Warn("drop recommendation stream client")
			delete(n.clients, client)
			_ = client.conn.Close()
		}
	}
	n.mu.Unlock()
}

func (s *Server) handleRecommendStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			for _, allowed := range s.allowedOrigins {
				if strings.EqualFold(origin, allowed) {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := s.notifier.Register(conn)
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("recommendation stream connected")
	defer s.notifier.Unregister(client)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", conn.RemoteAddr().String()).Info("recommendation stream closed")
			} else {
				logrus.WithError(err).Warn("recommendation stream unexpected close")
			}
			break
		}
	}
}
