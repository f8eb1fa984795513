package websocket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dafibh/pocketledger/pocketledger-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the interval for sending pings (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is maximum message size allowed from peer
	maxMessageSize = 4096
)

// Client represents a single WebSocket connection
type Client struct {
	id        string
	userID    uuid.UUID
	conn      *websocket.Conn
	hub       *Hub
	send      chan []byte
	closed    bool
	mu        sync.RWMutex
	closeOnce sync.Once

	view       ViewController
	viewOpened atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
	inflight   sync.WaitGroup
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, userID uuid.UUID, hub *Hub) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		conn:   conn,
		hub:    hub,
		send:   make(chan []byte, 256),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// UserID returns the authenticated user of the connection
func (c *Client) UserID() uuid.UUID {
	return c.userID
}

// AttachView gives the client a live monthly view driven by its messages
func (c *Client) AttachView(factory ViewControllerFactory) {
	if factory == nil {
		return
	}
	c.view = factory(c.userID, c.push)
}

// Send queues a message to be sent to the client
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer is full, client is too slow
		return ErrClientClosed
	}
}

func (c *Client) push(event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("client_id", c.id).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}
	if err := c.Send(data); err != nil && !errors.Is(err, ErrClientClosed) {
		log.Warn().Err(err).Str("client_id", c.id).Msg("Failed to push event")
	}
}

// Invalidate reloads the open view, if any, after its inputs changed
func (c *Client) Invalidate() {
	if c.view == nil || !c.viewOpened.Load() {
		return
	}
	c.dispatch(&viewRequest{action: ActionViewRefresh, run: func(ctx context.Context, view ViewController) error {
		return view.Reload(ctx)
	}})
}

// handleMessage parses one client message and runs it without blocking the read loop,
// so a newer request can supersede one still in flight
func (c *Client) handleMessage(raw []byte) {
	req, err := parseClientMessage(raw, time.Now())
	if err != nil {
		c.push(ViewError(ViewErrorPayload{Message: err.Error()}))
		return
	}
	if c.view == nil {
		c.push(ViewError(ViewErrorPayload{Action: req.action, Message: "live views are not available"}))
		return
	}
	if req.action == ActionViewOpen {
		c.viewOpened.Store(true)
	} else if !c.viewOpened.Load() {
		c.push(ViewError(ViewErrorPayload{Action: req.action, Message: "no view open"}))
		return
	}
	c.dispatch(req)
}

func (c *Client) dispatch(req *viewRequest) {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	c.inflight.Add(1)
	c.mu.RUnlock()

	go func() {
		defer c.inflight.Done()
		err := req.run(c.ctx, c.view)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrSuperseded), errors.Is(err, context.Canceled):
			log.Debug().Str("client_id", c.id).Str("action", req.action).Msg("View request superseded")
		default:
			log.Warn().Err(err).Str("client_id", c.id).Str("action", req.action).Msg("View request failed")
			c.push(ViewError(ViewErrorPayload{Action: req.action, Message: err.Error()}))
		}
	}()
}

// Close closes the client connection. In-flight view requests are cancelled
// and drained before the view is released.
// Safe to call multiple times from different goroutines
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		c.inflight.Wait()
		if c.view != nil {
			c.view.Close()
		}

		if c.conn != nil {
			closeErr = c.conn.Close()
		}
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReadPump pumps messages from the WebSocket connection
// This should be run in a goroutine
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID.String()).
					Msg("WebSocket unexpected close")
			}
			break
		}
		c.handleMessage(message)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
// This should be run in a goroutine
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, hub closed this client
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("user_id", c.userID.String()).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
