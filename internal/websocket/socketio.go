package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	socket "github.com/zishang520/socket.io/servers/socket/v3"
	sockettypes "github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/merke/chattr/internal/crypto"
	"github.com/merke/chattr/internal/logger"
	"github.com/merke/chattr/internal/presence"
	"github.com/merke/chattr/internal/relay"
	"github.com/merke/chattr/internal/wire"
)

// sioPrefix namespaces Socket.IO session handles in the presence registry.
const sioPrefix = "sio"

// SocketIOServer is the Socket.IO transport: it authenticates handshakes,
// announces presence and pushes events to its sockets.
type SocketIOServer struct {
	jwtManager *crypto.JWTManager
	registry   *presence.Registry
	broadcast  *relay.Relay
	server     *socket.Server
	sockets    sync.Map // socket id -> *socketEntry
}

type socketEntry struct {
	userID string
	socket *socket.Socket
}

// AuthData is the authentication payload sent with the Socket.IO handshake.
type AuthData struct {
	Token string `json:"token"`
}

// NewSocketIOServer creates the Socket.IO server. The relay is attached
// afterwards via SetRelay because the relay itself is built over the pusher
// mux this server registers with.
func NewSocketIOServer(jwtManager *crypto.JWTManager, registry *presence.Registry) *SocketIOServer {
	opts := socket.DefaultServerOptions()

	opts.SetCors(&sockettypes.Cors{
		Origin:      "*",
		Credentials: false,
	})

	// PingInterval/PingTimeout bound how long a vanished client stays in the
	// presence registry after an abrupt exit.
	const pingInterval = 5 * time.Second
	const pingTimeout = 15 * time.Second
	opts.SetPingInterval(pingInterval)
	opts.SetPingTimeout(pingTimeout)

	opts.SetPath("/socket.io")

	s := &SocketIOServer{
		jwtManager: jwtManager,
		registry:   registry,
		server:     socket.NewServer(nil, opts),
	}

	s.server.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		s.handleConnection(client)
	})

	return s
}

// SetRelay attaches the relay used for presence broadcasts.
func (s *SocketIOServer) SetRelay(r *relay.Relay) {
	s.broadcast = r
}

// Attach registers this transport's session namespace with the mux.
func (s *SocketIOServer) Attach(m *PusherMux) {
	m.Register(sioPrefix, s)
}

func (s *SocketIOServer) handleConnection(client *socket.Socket) {
	socketID := string(client.Id())

	logger.Infof("Socket.IO connection attempt (socket ID: %s)", socketID)

	authMap := client.Handshake().Auth
	if len(authMap) == 0 {
		logger.Warnf("Socket.IO missing auth data (socket %s)", socketID)
		client.Emit("error", map[string]string{"message": "Missing authentication data"})
		client.Disconnect(true)
		return
	}

	var auth AuthData
	if err := decodeAny(authMap, &auth); err != nil || auth.Token == "" {
		logger.Warnf("Socket.IO invalid auth data (socket %s): %v", socketID, err)
		client.Emit("error", map[string]string{"message": "Invalid authentication data"})
		client.Disconnect(true)
		return
	}

	claims, err := s.jwtManager.VerifyToken(auth.Token)
	if err != nil {
		logger.Warnf("Socket.IO invalid token (socket %s): %v", socketID, err)
		client.Emit("error", map[string]string{"message": "Invalid authentication token"})
		client.Disconnect(true)
		return
	}

	userID := claims.Subject
	handle := presence.SessionHandle(sioPrefix + ":" + socketID)

	// The disconnect listener must be in place before the socket is
	// announced, or a drop in between leaves a stale presence entry.
	client.On("disconnect", func(data ...any) {
		reason := ""
		if len(data) > 0 {
			if r, ok := data[0].(string); ok {
				reason = r
			}
		}
		logger.Infof("User disconnected: %s (socket %s, reason: %s)", userID, socketID, reason)

		s.sockets.Delete(socketID)
		// Compare-and-delete: a reconnect may already own the entry.
		s.registry.Revoke(userID, handle)

		if s.broadcast != nil {
			s.broadcast.BroadcastPresence()
		}
	})

	s.sockets.Store(socketID, &socketEntry{userID: userID, socket: client})
	s.registry.Announce(userID, handle)

	logger.Infof("User connected: %s (socket %s)", userID, socketID)

	if s.broadcast != nil {
		s.broadcast.BroadcastPresence()
	}
}

// Push implements SessionPusher for sessions owned by this transport.
func (s *SocketIOServer) Push(session presence.SessionHandle, event wire.Event) error {
	socketID := string(session)[len(sioPrefix)+1:]
	value, ok := s.sockets.Load(socketID)
	if !ok {
		return errSessionGone(session)
	}
	entry := value.(*socketEntry)
	entry.socket.Emit(event.EventName(), event.EventPayload())
	return nil
}

// HandleSocketIO creates a Gin handler for the Socket.IO endpoint.
func (s *SocketIOServer) HandleSocketIO() gin.HandlerFunc {
	httpHandler := s.server.ServeHandler(nil)

	return func(c *gin.Context) {
		if c.Request.Method == "OPTIONS" {
			c.Status(http.StatusOK)
			return
		}

		logger.Tracef("Socket.IO request: %s %s", c.Request.Method, c.Request.URL.Path)

		httpHandler.ServeHTTP(c.Writer, c.Request)
	}
}

// Close shuts down the Socket.IO server.
func (s *SocketIOServer) Close() error {
	s.server.Close(nil)
	return nil
}

func decodeAny(input any, out any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
