package chat

import (
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/anatoly-dev/go-store-sync/pkg/auth"
	"github.com/anatoly-dev/go-store-sync/pkg/metrics"
	"github.com/anatoly-dev/go-store-sync/pkg/models"
	"github.com/anatoly-dev/go-store-sync/pkg/platform"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultMaxReconnectAttempts = 5
	defaultReconnectBackoff     = 3 * time.Second
)

// Handler receives every routed message for one chat.
type Handler func(*models.Message)

// Client multiplexes chat-room subscriptions and an unread-count stream
// over a single websocket, reconnecting with linear backoff when the
// connection drops. At most one transport is alive at a time; a new dial
// only starts after the previous socket has fully closed.
type Client struct {
	endpoint    string
	session     auth.SessionProvider
	platform    platform.Capabilities
	logger      *zap.Logger
	metrics     *metrics.ChatMetrics
	maxAttempts int
	backoffBase time.Duration
	dialer      *websocket.Dialer

	mu                sync.Mutex
	conn              *websocket.Conn
	connecting        bool
	closed            bool
	reconnectAttempts int
	reconnectTimer    *time.Timer
	handlers          map[string]Handler
	unreadListeners   map[string]func(int)
	connListeners     map[string]func()

	writeMu sync.Mutex
}

type Option func(*Client)

func WithMaxReconnectAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithReconnectBackoff(base time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.backoffBase = base
		}
	}
}

func NewClient(endpoint string, session auth.SessionProvider, caps platform.Capabilities, logger *zap.Logger, opts ...Option) *Client {
	client := &Client{
		endpoint:        endpoint,
		session:         session,
		platform:        caps,
		logger:          logger,
		maxAttempts:     defaultMaxReconnectAttempts,
		backoffBase:     defaultReconnectBackoff,
		dialer:          websocket.DefaultDialer,
		handlers:        make(map[string]Handler),
		unreadListeners: make(map[string]func(int)),
		connListeners:   make(map[string]func()),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *Client) SetMetrics(metrics *metrics.ChatMetrics) {
	c.metrics = metrics
}

// Connect opens the transport asynchronously. A missing credential is an
// expected, recoverable state: it is logged and Connect returns without
// error. Repeated calls while a connection is alive or pending are no-ops.
func (c *Client) Connect() {
	if !c.platform.CanOpenSocket() || !c.platform.HasStorage() {
		return
	}

	c.mu.Lock()
	if c.conn != nil || c.connecting {
		c.mu.Unlock()
		return
	}
	c.connecting = true
	c.closed = false
	c.mu.Unlock()

	go c.dial()
}

func (c *Client) dial() {
	c.mu.Lock()
	if c.closed {
		c.connecting = false
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	token := c.session.Token()
	if token == "" {
		c.logger.Info("No credential available, skipping chat connection")
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
		return
	}

	target, err := url.Parse(c.endpoint)
	if err != nil {
		c.logger.Error("Invalid chat endpoint", zap.Error(err))
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
		return
	}
	query := target.Query()
	query.Set("token", token)
	target.RawQuery = query.Encode()

	conn, _, err := c.dialer.Dial(target.String(), nil)

	c.mu.Lock()
	c.connecting = false
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("Failed to connect to chat server", zap.Error(err))
		c.scheduleReconnect()
		return
	}
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.reconnectAttempts = 0
	c.mu.Unlock()

	c.logger.Info("Connected to chat server")

	if c.metrics != nil {
		c.metrics.ConnectsTotal.Inc()
		c.metrics.ConnectionUp.Set(1)
	}

	c.notifyConnectionChange()

	go c.readLoop(conn)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				c.logger.Info("Chat connection closed unexpectedly", zap.Error(err))
			}
			break
		}

		c.dispatch(data)
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	explicit := c.closed
	c.mu.Unlock()

	conn.Close()

	if c.metrics != nil {
		c.metrics.ConnectionUp.Set(0)
	}

	if !explicit {
		c.scheduleReconnect()
	}
}

// scheduleReconnect arms a single linear-backoff timer: delay is the
// backoff base times the attempt number, up to maxAttempts. Exhaustion
// is logged, not surfaced; the owning UI detects staleness on its own.
func (c *Client) scheduleReconnect() {
	c.mu.Lock()
	if c.closed || c.connecting || c.conn != nil {
		c.mu.Unlock()
		return
	}
	if c.reconnectAttempts >= c.maxAttempts {
		c.mu.Unlock()
		c.logger.Warn("Chat reconnect attempts exhausted",
			zap.Int("maxAttempts", c.maxAttempts))

		if c.metrics != nil {
			c.metrics.ReconnectExhausted.Inc()
		}
		return
	}
	c.reconnectAttempts++
	attempt := c.reconnectAttempts
	c.connecting = true
	delay := c.backoffBase * time.Duration(attempt)
	c.reconnectTimer = time.AfterFunc(delay, c.dial)
	c.mu.Unlock()

	c.logger.Info("Scheduling chat reconnect",
		zap.Int("attempt", attempt),
		zap.Duration("delay", delay))

	if c.metrics != nil {
		c.metrics.ReconnectAttempts.Inc()
	}
}

func (c *Client) dispatch(data []byte) {
	var msg models.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Error("Failed to unmarshal chat message", zap.Error(err), zap.ByteString("payload", data))

		if c.metrics != nil {
			c.metrics.DeserializeErrors.Inc()
		}
		return
	}

	// Unread-count updates fan out to every listener and are never
	// routed to a per-chat handler, even when a chat id is present.
	if msg.Type == models.MessageTypeUnreadCount {
		c.mu.Lock()
		listeners := make([]func(int), 0, len(c.unreadListeners))
		for _, listener := range c.unreadListeners {
			listeners = append(listeners, listener)
		}
		c.mu.Unlock()

		for _, listener := range listeners {
			listener(msg.UnreadCount)
		}

		if c.metrics != nil {
			c.metrics.MessagesDispatched.WithLabelValues(string(msg.Type)).Inc()
		}
		return
	}

	c.mu.Lock()
	handler, ok := c.handlers[msg.ChatID]
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("Dropping message for chat with no handler",
			zap.String("chatID", msg.ChatID),
			zap.String("type", string(msg.Type)))

		if c.metrics != nil {
			c.metrics.MessagesDropped.Inc()
		}
		return
	}

	if c.metrics != nil {
		c.metrics.MessagesDispatched.WithLabelValues(string(msg.Type)).Inc()
	}

	handler(&msg)
}

// SubscribeToChat registers the handler for chatID, replacing any
// previous one (last registration wins), and announces the join if the
// transport is open. The returned closure unsubscribes.
func (c *Client) SubscribeToChat(chatID string, handler Handler) func() {
	c.mu.Lock()
	c.handlers[chatID] = handler
	c.mu.Unlock()

	c.send(&models.Message{Type: models.MessageTypeJoin, ChatID: chatID})

	return func() {
		c.UnsubscribeFromChat(chatID)
	}
}

// UnsubscribeFromChat removes the handler for chatID and announces the
// leave if the transport is open. Unknown ids are a no-op.
func (c *Client) UnsubscribeFromChat(chatID string) {
	c.mu.Lock()
	_, ok := c.handlers[chatID]
	delete(c.handlers, chatID)
	c.mu.Unlock()

	if ok {
		c.send(&models.Message{Type: models.MessageTypeLeave, ChatID: chatID})
	}
}

// SendMessage serializes and sends a chat message if the transport is
// open; otherwise the call is dropped silently and the caller is
// responsible for any UI feedback.
func (c *Client) SendMessage(chatID, content, role string, attachments []models.Attachment, contentType string) {
	c.send(&models.Message{
		Type:        models.MessageTypeChat,
		ChatID:      chatID,
		Role:        role,
		Content:     content,
		ContentType: contentType,
		Attachments: attachments,
		Timestamp:   time.Now(),
	})
}

func (c *Client) MarkAsRead(chatID string) {
	c.send(&models.Message{Type: models.MessageTypeRead, ChatID: chatID})
}

func (c *Client) RequestUnreadCount() {
	c.send(&models.Message{Type: models.MessageTypeUnreadCount})
}

func (c *Client) SendTyping(chatID string, isTyping bool) {
	c.send(&models.Message{Type: models.MessageTypeTyping, ChatID: chatID, IsTyping: isTyping})
}

// OnUnreadCountChange registers an unread-count listener under a fresh
// id and returns its unsubscribe closure. Listener order is unspecified.
func (c *Client) OnUnreadCountChange(listener func(int)) func() {
	id := uuid.New().String()

	c.mu.Lock()
	c.unreadListeners[id] = listener
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.unreadListeners, id)
		c.mu.Unlock()
	}
}

// OnConnectionChange registers a listener invoked with no payload after
// each successful open; listeners re-query state themselves.
func (c *Client) OnConnectionChange(listener func()) func() {
	id := uuid.New().String()

	c.mu.Lock()
	c.connListeners[id] = listener
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.connListeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Disconnect closes the transport and stops any pending reconnect.
// Registered chat, unread and connection handlers stay registered for a
// future Connect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.closed = true
	c.connecting = false
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}

	if c.metrics != nil {
		c.metrics.ConnectionUp.Set(0)
	}
}

func (c *Client) notifyConnectionChange() {
	c.mu.Lock()
	listeners := make([]func(), 0, len(c.connListeners))
	for _, listener := range c.connListeners {
		listeners = append(listeners, listener)
	}
	c.mu.Unlock()

	for _, listener := range listeners {
		listener()
	}
}

// send writes one frame if the transport is currently open and silently
// drops it otherwise. It never touches reconnection state.
func (c *Client) send(msg *models.Message) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.logger.Debug("Chat transport not open, dropping outgoing message",
			zap.String("type", string(msg.Type)))
		return
	}

	c.writeMu.Lock()
	err := conn.WriteJSON(msg)
	c.writeMu.Unlock()

	if err != nil {
		c.logger.Warn("Failed to send chat message", zap.Error(err))
		return
	}

	if c.metrics != nil {
		c.metrics.MessagesSent.WithLabelValues(string(msg.Type)).Inc()
	}
}
