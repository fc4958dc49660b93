package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

func TestRecommendationStreamReplaysLastEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server, err := NewServer(Config{DisableAI: true})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	router, err := server.Router()
	if err != nil {
		t.Fatalf("router: %v", err)
	}

	ts := httptest.NewServer(router)
	defer ts.Close()

	server.notifier.Broadcast(RecommendationEvent{Type: "recommendation", Status: "OK"})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/recommend/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial stream: %v", err)
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	var event RecommendationEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read replayed event: %v", err)
	}
	if event.Status != "OK" || event.Type != "recommendation" {
		t.Fatalf("unexpected replayed event: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Fatal("expected broadcast to stamp the event")
	}
}
