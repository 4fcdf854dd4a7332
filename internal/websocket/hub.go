package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"nutriboard-backend/internal/middleware"
	"nutriboard-backend/internal/models"
	"nutriboard-backend/internal/repository"
	"nutriboard-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Frame types exchanged over the chat socket.
const (
	FrameHistory        = "history"
	FrameMessage        = "message"
	FrameError          = "error"
	FrameProfileUpdated = "profile_updated"
)

type clientFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type serverFrame struct {
	Type     string               `json:"type"`
	Messages []models.ChatMessage `json:"messages,omitempty"`
	Message  *models.ChatMessage  `json:"message,omitempty"`
	Source   string               `json:"source,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// session is one socket plus its conversation. gorilla connections allow a
// single concurrent writer, so every write goes through writeMu.
type session struct {
	conn         *websocket.Conn
	writeMu      sync.Mutex
	conversation *services.Conversation
}

func (s *session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *session) send(frame serverFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	if err := s.write(data); err != nil {
		log.Printf("WebSocket write failed: %v", err)
	}
}

type Hub struct {
	mu          sync.RWMutex
	sessions    map[string][]*session
	cancelFuncs map[string]context.CancelFunc

	pubsub   *redis.Client
	auth     *middleware.JWTAuth
	resolver *services.ChatResolver
	endpoint string
}

// NewHub builds the chat hub. pubsub may be nil, in which case profile
// updates are not forwarded.
func NewHub(pubsub *redis.Client, auth *middleware.JWTAuth, resolver *services.ChatResolver, endpoint string) *Hub {
	return &Hub{
		sessions:    make(map[string][]*session),
		cancelFuncs: make(map[string]context.CancelFunc),
		pubsub:      pubsub,
		auth:        auth,
		resolver:    resolver,
		endpoint:    endpoint,
	}
}

func (h *Hub) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID := h.auth.DefaultUserID
	if h.auth.Enabled() {
		// Browsers cannot set headers on the upgrade request.
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := h.auth.ParseUserID(tokenStr)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userID = id
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	s := &session{conn: conn, conversation: services.NewConversation()}
	h.register(userID, s)

	s.send(serverFrame{Type: FrameHistory, Messages: s.conversation.Messages()})

	go h.readLoop(userID, s)
}

func (h *Hub) readLoop(userID string, s *session) {
	var inflight sync.WaitGroup
	defer func() {
		inflight.Wait()
		h.unregister(userID, s)
	}()

	for {
		var frame clientFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read failed: user %s: %v", userID, err)
			}
			return
		}

		if frame.Type != FrameMessage {
			s.send(serverFrame{Type: FrameError, Error: "Unsupported frame type"})
			continue
		}
		if strings.TrimSpace(frame.Content) == "" {
			s.send(serverFrame{Type: FrameError, Error: "Message is required"})
			continue
		}

		userMsg := s.conversation.Append(models.RoleUser, frame.Content)
		s.send(serverFrame{Type: FrameMessage, Message: &userMsg})

		// Sends may overlap; each one resolves independently.
		inflight.Add(1)
		go func(content string) {
			defer inflight.Done()
			h.answer(userID, s, content)
		}(frame.Content)
	}
}

func (h *Hub) answer(userID string, s *session, content string) {
	ctx := middleware.WithUserID(context.Background(), userID)
	res := h.resolver.ResolveDetailed(ctx, content, h.endpoint)

	reply := s.conversation.Append(models.RoleAssistant, res.Reply)
	s.send(serverFrame{Type: FrameMessage, Message: &reply, Source: string(res.Source)})
}

func (h *Hub) register(userID string, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[userID] = append(h.sessions[userID], s)

	// Subscribe once per user, on the first connection.
	if len(h.sessions[userID]) == 1 && h.pubsub != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[userID] = cancel
		go h.subscribeToProfileUpdates(ctx, userID)
	}

	log.Printf("WebSocket connected: user %s (total: %d)", userID, len(h.sessions[userID]))
}

func (h *Hub) unregister(userID string, s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s.conn.Close()

	sessions := h.sessions[userID]
	for i, c := range sessions {
		if c == s {
			h.sessions[userID] = append(sessions[:i], sessions[i+1:]...)
			break
		}
	}

	if len(h.sessions[userID]) == 0 {
		delete(h.sessions, userID)
		if cancel, ok := h.cancelFuncs[userID]; ok {
			cancel()
			delete(h.cancelFuncs, userID)
		}
	}

	log.Printf("WebSocket disconnected: user %s", userID)
}

func (h *Hub) subscribeToProfileUpdates(ctx context.Context, userID string) {
	pubsub := h.pubsub.Subscribe(ctx, repository.ProfileUpdatesChannel(userID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(userID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions[userID] {
		if err := s.write(data); err != nil {
			log.Printf("WebSocket broadcast failed: user %s: %v", userID, err)
		}
	}
}

// NotifyProfileUpdated tells userID's open sockets to reload the dashboard.
// It is used when no redis pub/sub is available.
func (h *Hub) NotifyProfileUpdated(userID string) {
	data, _ := json.Marshal(serverFrame{Type: FrameProfileUpdated})
	h.broadcast(userID, data)
}

// ConnectionCount returns the number of open sockets for userID.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}

// Close cancels every profile subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, cancel := range h.cancelFuncs {
		cancel()
		delete(h.cancelFuncs, userID)
	}
}
