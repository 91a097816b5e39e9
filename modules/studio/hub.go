package studio

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Notifier - 세션 상태 변경 알림 대상
type Notifier interface {
	Publish(event Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(Event) {}

// 연결된 구독자
type client struct {
	id        string
	sessionID string
	conn      *websocket.Conn
	send      chan []byte
}

// HubMetrics - /metrics 응답
type HubMetrics struct {
	TotalConnections int       `json:"totalConnections"`
	ActiveClients    int       `json:"activeClients"`
	ActiveSessions   int       `json:"activeSessions"`
	DroppedClients   int       `json:"droppedClients"`
	StartTime        time.Time `json:"startTime"`
}

// Hub - 세션별 WebSocket 구독자 관리 + 이벤트 브로드캐스트
type Hub struct {
	rooms   map[string]map[string]*client
	mutex   sync.RWMutex
	metrics HubMetrics
}

func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[string]map[string]*client),
		metrics: HubMetrics{StartTime: time.Now()},
	}
}

// Serve - 업그레이드된 연결을 세션에 등록하고 읽기/쓰기 고루틴 시작
func (h *Hub) Serve(conn *websocket.Conn, sessionID string) {
	c := &client{
		id:        uuid.NewString(),
		sessionID: sessionID,
		conn:      conn,
		send:      make(chan []byte, 256),
	}
	h.register(c)

	go c.writePump()
	go h.readPump(c)
}

func (h *Hub) register(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[c.sessionID]
	if !exists {
		room = make(map[string]*client)
		h.rooms[c.sessionID] = room
	}
	room[c.id] = c
	h.metrics.TotalConnections++

	log.Printf("👤 [Hub] Client %s subscribed to session %s (Clients: %d)", c.id, c.sessionID, len(room))
}

// unregisterLocked - h.mutex 를 잡은 상태에서 호출
func (h *Hub) unregisterLocked(c *client) {
	room, exists := h.rooms[c.sessionID]
	if !exists {
		return
	}
	if _, ok := room[c.id]; !ok {
		return
	}
	close(c.send)
	delete(room, c.id)
	if len(room) == 0 {
		delete(h.rooms, c.sessionID)
	}
}

func (h *Hub) unregister(c *client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.unregisterLocked(c)
	log.Printf("👋 [Hub] Client %s left session %s", c.id, c.sessionID)
}

// Publish - 세션 구독자 전체에게 이벤트 전송. 버퍼가 찬 구독자는 끊음
func (h *Hub) Publish(event Event) {
	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("❌ [Hub] Error marshaling event: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, c := range h.rooms[event.SessionID] {
		select {
		case c.send <- messageBytes:
		default:
			log.Printf("⚠️  [Hub] Dropping slow client %s from session %s", c.id, c.sessionID)
			h.unregisterLocked(c)
			h.metrics.DroppedClients++
		}
	}

	// 삭제된 세션은 구독자도 정리
	if event.Type == EventSessionDeleted {
		for _, c := range h.rooms[event.SessionID] {
			h.unregisterLocked(c)
		}
	}
}

// CloseSession - 세션의 모든 구독자 연결 종료 (만료 세션 정리용)
func (h *Hub) CloseSession(sessionID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, c := range h.rooms[sessionID] {
		log.Printf("🔌 [Hub] Disconnecting client %s from expired session %s", c.id, sessionID)
		h.unregisterLocked(c)
	}
}

// Metrics - 현재 연결 통계
func (h *Hub) Metrics() HubMetrics {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	m := h.metrics
	m.ActiveSessions = len(h.rooms)
	for _, room := range h.rooms {
		m.ActiveClients += len(room)
	}
	return m
}

// SubscriberCount - 세션 구독자 수
func (h *Hub) SubscriberCount(sessionID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[sessionID])
}

// 클라이언트 메시지는 사용하지 않음. 연결 종료 감지용
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️  [Hub] WebSocket error: %v", err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("❌ [Hub] WebSocket write error: %v", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
