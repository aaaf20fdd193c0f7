package websocket

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/merke/chattr/internal/crypto"
	"github.com/merke/chattr/internal/logger"
	"github.com/merke/chattr/internal/presence"
	"github.com/merke/chattr/internal/relay"
	"github.com/merke/chattr/internal/wire"
)

// wsPrefix namespaces plain-WebSocket session handles in the registry.
const wsPrefix = "ws"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now
	},
}

// SimpleServer is a plain WebSocket transport (not Socket.IO) for clients
// that cannot speak the Socket.IO protocol. It shares the presence registry
// and relay with the Socket.IO server; events arrive as JSON frames.
type SimpleServer struct {
	jwtManager *crypto.JWTManager
	registry   *presence.Registry
	broadcast  *relay.Relay
	clients    sync.Map // conn id -> *wsClient
}

type wsClient struct {
	userID  string
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// eventFrame is the JSON frame written to plain WebSocket clients.
type eventFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// NewSimpleServer creates a plain WebSocket transport.
func NewSimpleServer(jwtManager *crypto.JWTManager, registry *presence.Registry) *SimpleServer {
	return &SimpleServer{
		jwtManager: jwtManager,
		registry:   registry,
	}
}

// SetRelay attaches the relay used for presence broadcasts.
func (s *SimpleServer) SetRelay(r *relay.Relay) {
	s.broadcast = r
}

// Attach registers this transport's session namespace with the mux.
func (s *SimpleServer) Attach(m *PusherMux) {
	m.Register(wsPrefix, s)
}

// HandleWebSocket upgrades the connection and tracks presence until the
// client goes away. The access token is passed as a query parameter because
// browsers cannot set headers on WebSocket dials.
func (s *SimpleServer) HandleWebSocket(c *gin.Context) {
	claims, err := s.jwtManager.VerifyToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
		return
	}
	userID := claims.Subject

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	handle := presence.SessionHandle(wsPrefix + ":" + connID)

	s.clients.Store(connID, &wsClient{userID: userID, conn: conn})
	s.registry.Announce(userID, handle)

	logger.Infof("User connected: %s (ws %s)", userID, connID)

	if s.broadcast != nil {
		s.broadcast.BroadcastPresence()
	}

	// Inbound frames are ignored; the HTTP API is the write path. The read
	// loop exists to detect disconnection.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	logger.Infof("User disconnected: %s (ws %s)", userID, connID)

	s.clients.Delete(connID)
	// Compare-and-delete: a reconnect may already own the entry.
	s.registry.Revoke(userID, handle)

	if s.broadcast != nil {
		s.broadcast.BroadcastPresence()
	}
}

// Push implements SessionPusher for sessions owned by this transport.
func (s *SimpleServer) Push(session presence.SessionHandle, event wire.Event) error {
	connID := string(session)[len(wsPrefix)+1:]
	value, ok := s.clients.Load(connID)
	if !ok {
		return errSessionGone(session)
	}
	client := value.(*wsClient)
	client.writeMu.Lock()
	defer client.writeMu.Unlock()
	return client.conn.WriteJSON(eventFrame{
		Event: event.EventName(),
		Data:  event.EventPayload(),
	})
}
