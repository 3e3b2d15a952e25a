package hub

import (
	"context"
	"net/http"
	"sync"
	"time"

	"Chatline/internal/auth"
	"Chatline/internal/event"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type inboundEvent struct {
	env    event.Envelope
	client *Client
}

// Hub owns the connection lifecycle: it authenticates handshakes,
// registers admitted connections in the presence table, auto-joins them
// to their personal room, routes their inbound events, and converges
// every disconnect reason on one cleanup path.
type Hub struct {
	presence *Presence
	rooms    *RoomIndex
	verifier *auth.Verifier
	upgrader websocket.Upgrader
	logger   *zap.Logger

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub builds and starts a hub. allowedOrigins governs the websocket
// origin check: a request with no Origin header is always accepted, and
// the entry "*" accepts everything.
func NewHub(verifier *auth.Verifier, allowedOrigins []string, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		presence:   NewPresence(),
		rooms:      NewRoomIndex(),
		verifier:   verifier,
		logger:     logger,
		register:   make(chan *Client, 1024),
		unregister: make(chan *Client, 1024),
		inbound:    make(chan inboundEvent, 4096), // buffer for burst handling
		ctx:        ctx,
		cancel:     cancel,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	// run manager loop
	go h.run()

	// start worker loop
	for i := 0; i < workerPoolSize; i++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			for {
				select {
				case <-h.ctx.Done():
					return
				case in, ok := <-h.inbound:
					if !ok {
						return
					}
					h.handleEvent(in.env, in.client)
				}
			}
		}()
	}

	return h
}

// Presence exposes the registry for the monitor API and the REST layer.
func (h *Hub) Presence() *Presence {
	return h.presence
}

// Rooms exposes the membership index for the dispatcher and monitor.
func (h *Hub) Rooms() *RoomIndex {
	return h.rooms
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, origin := range allowedOrigins {
		if origin == "*" {
			wildcard = true
		}
		allowed[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || wildcard {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// ServeWS is the connection entry point. Authentication runs before the
// upgrade: a missing, invalid or expired token refuses the handshake
// and the connection never reaches the active state.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromRequest(r)
	userID, err := h.verifier.Verify(token)
	if err != nil {
		// The sub-kinds are logged; the client sees one outcome.
		h.logger.Warn("socket connection refused",
			zap.Error(err),
			zap.String("origin", r.Header.Get("Origin")),
			zap.String("remote_addr", r.RemoteAddr),
		)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newClient(userID, conn, h)
	select {
	case h.register <- c:
		go c.ReadMessages()
		go c.WriteMessages()
	case <-time.After(registerTimeout):
		c.logger.Warn("failed to register client: timeout")
		c.cancel()
		conn.Close()
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		}
	}
}

// addClient admits an authenticated connection: presence registration,
// personal room join, and the ready acknowledgment telling the client
// to re-issue its chat joins. Chat-room membership never survives a
// reconnect; the client resubscribes every time.
func (h *Hub) addClient(c *Client) {
	if c.userID <= 0 {
		// An active connection must never exist without a bound identity.
		c.logger.Error("connection admitted without bound identity, force closing")
		c.Close()
		return
	}

	h.presence.Register(c.userID, c.ID)
	h.rooms.Join(c, UserRoom(c.userID))

	c.logger.Info("client connected",
		zap.Int("online_users", h.presence.OnlineCount()),
		zap.Int("connections", h.presence.ConnectionCount()),
	)

	c.Send(event.Outbound(event.EventConnectionReady, event.ConnectionReadyPayload{
		UserID:  c.userID,
		ConnID:  c.ID,
		Message: "connected, rejoin your chat rooms",
	}))
}

// removeClient runs the single cleanup path shared by every disconnect
// reason: leave all rooms, drop the presence entry, close the client.
func (h *Hub) removeClient(c *Client) {
	h.rooms.LeaveAll(c)
	if h.presence.Unregister(c.userID, c.ID) {
		c.logger.Info("user went offline", zap.Int("online_users", h.presence.OnlineCount()))
	}
	c.Close()
	c.logger.Info("client removed")
}

// broadcastToRoom pushes an event to every member of a room, optionally
// skipping one connection (the sender of a typing or read event).
// Members are snapshotted first; each send is independent, and a full
// egress buffer kicks the slow client instead of stalling the rest.
func (h *Hub) broadcastToRoom(room string, env event.Envelope, except *Client) int {
	members := h.rooms.MembersOf(room)
	delivered := 0
	for _, c := range members {
		if except != nil && c.ID == except.ID {
			continue
		}
		if c.SafeSend(env, sendTimeout) {
			delivered++
			continue
		}
		h.logger.Warn("egress full or client closed",
			zap.String("conn_id", c.ID),
			zap.String("room", room),
		)
		if kickOnFull && !c.IsClosed() {
			select {
			case h.unregister <- c:
			default:
			}
		}
	}
	return delivered
}

// Stop closes every connection and stops the worker pool.
func (h *Hub) Stop() {
	h.cancel()

	h.rooms.each(func(c *Client) {
		c.Close()
	})

	close(h.inbound)
	h.wg.Wait()
}
