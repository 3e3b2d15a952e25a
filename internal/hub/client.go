package hub

import (
	"context"
	"net"
	"sync"
	"time"

	"Chatline/internal/event"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// tuning parameters
	writeWait          = 10 * time.Second       // time allowed to write a message to the peer
	pongWait           = 60 * time.Second       // time allowed to read the next pong message from the peer
	pingInterval       = (pongWait * 9) / 10    // send pings to peer with this period
	maxMessageSize     = 64 * 1024              // max inbound message size (64KB)
	sendBufSize        = 256                    // per-connection outbound buffer size
	workerPoolSize     = 16                     // number of workers to process inbound events
	sendTimeout        = 2 * time.Second        // timeout for enqueuing outbound events
	kickOnFull         = true                   // when true, disconnect client when egress is full
	registerTimeout    = 5 * time.Second        // timeout for client registration
	unregisterTimeout  = 5 * time.Second        // timeout for client unregistration
	inboundSendTimeout = 500 * time.Millisecond // timeout for sending to inbound channel
)

// Client is a single live connection, bound to exactly one user at
// authentication time and destroyed at transport close. Its room
// memberships live in the hub's RoomIndex; the local rooms set exists
// so disconnect cleanup knows what to leave.
type Client struct {
	ID     string
	userID int64
	conn   *websocket.Conn
	hub    *Hub
	egress chan event.Envelope
	logger *zap.Logger

	rooms   map[string]struct{}
	roomsMu sync.Mutex

	cancel         context.CancelFunc
	ctx            context.Context
	once           sync.Once
	connClosed     chan struct{}
	connClosedOnce sync.Once
	closed         bool
	closedMu       sync.RWMutex
}

func newClient(userID int64, conn *websocket.Conn, h *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()

	return &Client{
		ID:         id,
		userID:     userID,
		conn:       conn,
		hub:        h,
		egress:     make(chan event.Envelope, sendBufSize),
		logger:     h.logger.With(zap.String("conn_id", id), zap.Int64("user_id", userID)),
		rooms:      make(map[string]struct{}),
		cancel:     cancel,
		ctx:        ctx,
		connClosed: make(chan struct{}),
	}
}

// UserID returns the identity bound at authentication.
func (c *Client) UserID() int64 {
	return c.userID
}

// Rooms returns a snapshot of the rooms this connection is in.
func (c *Client) Rooms() []string {
	c.roomsMu.Lock()
	defer c.roomsMu.Unlock()
	rooms := make([]string, 0, len(c.rooms))
	for room := range c.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

func (c *Client) addRooms(rooms ...string) {
	c.roomsMu.Lock()
	for _, room := range rooms {
		c.rooms[room] = struct{}{}
	}
	c.roomsMu.Unlock()
}

func (c *Client) removeRoom(room string) {
	c.roomsMu.Lock()
	delete(c.rooms, room)
	c.roomsMu.Unlock()
}

// ReadMessages pumps inbound envelopes from the transport into the
// hub's worker queue. Per-connection order is preserved because this is
// the only reader. Any read failure, whatever the reason, funnels into
// the same unregister path.
func (c *Client) ReadMessages() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-time.After(unregisterTimeout):
			c.logger.Warn("failed to unregister client: timeout")
		}
		c.Close()
	}()

	c.conn.SetReadLimit(int64(maxMessageSize))
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(c.pongHandler)

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
			var env event.Envelope
			if err := c.conn.ReadJSON(&env); err != nil {
				if websocket.IsCloseError(err,
					websocket.CloseNormalClosure,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
				) {
					c.logger.Info("client disconnected")
					return
				}
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseInternalServerErr,
					websocket.CloseProtocolError,
				) {
					c.logger.Warn("unexpected close", zap.Error(err))
				}
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					c.logger.Info("client timed out, closing connection")
					return
				}
				c.logger.Warn("read error", zap.Error(err))
				return
			}

			// Non-blocking handoff so a stalled worker pool cannot
			// block the reader forever.
			select {
			case c.hub.inbound <- inboundEvent{client: c, env: env}:
			case <-time.After(inboundSendTimeout):
				c.logger.Warn("inbound queue full, dropping client")
				c.cancel()
				c.conn.Close()
			case <-c.ctx.Done():
				return
			}
		}
	}
}

// WriteMessages drains the egress buffer to the transport and keeps the
// connection alive with pings.
func (c *Client) WriteMessages() {
	ticker := time.NewTicker(pingInterval)

	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
		c.connClosedOnce.Do(func() {
			close(c.connClosed)
		})
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case env, ok := <-c.egress:
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, nil); err != nil {
					c.logger.Debug("close write failed", zap.Error(err))
				}
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Warn("write error", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Warn("ping failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) pongHandler(string) error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

// Send enqueues an event, disconnecting the client when its egress
// buffer stays full past the send timeout.
func (c *Client) Send(env event.Envelope) {
	select {
	case c.egress <- env:
	case <-time.After(sendTimeout):
		c.logger.Warn("egress full, disconnecting client")
		select {
		case c.hub.unregister <- c:
		case <-time.After(unregisterTimeout):
			c.logger.Warn("failed to unregister client: timeout")
		}
	case <-c.ctx.Done():
		// client already closed
	}
}

// SafeSend attempts to enqueue an event, reporting false instead of
// disconnecting when the client is closed or the buffer stays full.
func (c *Client) SafeSend(env event.Envelope, timeout time.Duration) bool {
	if c.IsClosed() {
		return false
	}
	select {
	case <-c.ctx.Done():
		return false
	case c.egress <- env:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close tears the client down exactly once. Safe to call from any
// goroutine and from multiple paths converging on the same disconnect.
func (c *Client) Close() {
	c.once.Do(func() {
		c.closedMu.Lock()
		c.closed = true
		c.closedMu.Unlock()

		c.cancel()
		close(c.egress)

		// Wait for WriteMessages to close conn, or force close after timeout
		go func() {
			select {
			case <-c.connClosed:
			case <-time.After(5 * time.Second):
				if c.conn != nil {
					_ = c.conn.Close()
					c.logger.Warn("safety timeout: force closed connection")
				}
			}
		}()
	})
}

// IsClosed returns true if the client has been closed
func (c *Client) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}
