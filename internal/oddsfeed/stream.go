package oddsfeed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/fantasy-edge/internal/models"
)

// QuoteHandler is called for each market update received from the stream
type QuoteHandler func(quote *models.OddsQuote) error

// ReconnectConfig controls stream reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// streamMessage is one frame from the provider's push feed
type streamMessage struct {
	Op        string     `json:"op"`
	GameID    string     `json:"game_id,omitempty"`
	Quote     *feedQuote `json:"quote,omitempty"`
	Heartbeat bool       `json:"heartbeat,omitempty"`
}

// subscribeMessage requests updates for a set of matchups
type subscribeMessage struct {
	Op      string   `json:"op"`
	APIKey  string   `json:"api_key,omitempty"`
	GameIDs []string `json:"game_ids"`
}

// StreamClient maintains a WebSocket subscription to the provider's live
// line-movement feed
type StreamClient struct {
	streamURL       string
	apiKey          string
	conn            *websocket.Conn
	mu              sync.RWMutex
	isConnected     bool
	handlers        []QuoteHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Entry
}

// NewStreamClient creates a new line-movement stream client
func NewStreamClient(streamURL, apiKey string, logger *logrus.Entry) *StreamClient {
	return &StreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handlers:        make([]QuoteHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// Connect establishes the WebSocket connection and starts the read loop
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.streamURL).Info("connecting to odds stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	go s.readMessages()

	return nil
}

// Subscribe requests line updates for the given matchups
func (s *StreamClient) Subscribe(gameIDs []uuid.UUID) error {
	ids := make([]string, len(gameIDs))
	for i, id := range gameIDs {
		ids[i] = id.String()
	}

	s.logger.WithField("games", len(ids)).Info("subscribing to line updates")
	return s.sendMessage(subscribeMessage{Op: "subscribe", APIKey: s.apiKey, GameIDs: ids})
}

// AddHandler registers a quote handler
func (s *StreamClient) AddHandler(handler QuoteHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// readMessages reads frames until the connection drops
func (s *StreamClient) readMessages() {
	defer s.Close()

	for {
		var msg streamMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			s.logger.WithError(err).Warn("stream read failed")
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		if msg.Heartbeat || msg.Quote == nil {
			continue
		}

		gameID, err := uuid.Parse(msg.GameID)
		if err != nil {
			s.logger.WithField("game_id", msg.GameID).Warn("stream frame with invalid game id")
			continue
		}
		quote, err := msg.Quote.toModel(gameID)
		if err != nil {
			s.logger.WithError(err).Warn("stream frame with malformed quote")
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(quote); err != nil {
				s.logger.WithError(err).Warn("quote handler failed")
			}
		}
	}
}

// Run keeps the stream connected until the context is cancelled, redialing
// with exponential backoff after drops
func (s *StreamClient) Run(ctx context.Context, gameIDs []uuid.UUID) error {
	backoff := s.reconnectConfig.InitialBackoff
	retries := 0

	for {
		if err := s.Connect(ctx); err != nil {
			retries++
			if retries > s.reconnectConfig.MaxRetries {
				return fmt.Errorf("stream reconnect attempts exhausted: %w", err)
			}
			s.logger.WithError(err).WithField("backoff", backoff).Warn("stream connect failed, retrying")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
			if backoff > s.reconnectConfig.MaxBackoff {
				backoff = s.reconnectConfig.MaxBackoff
			}
			continue
		}

		retries = 0
		backoff = s.reconnectConfig.InitialBackoff

		if err := s.Subscribe(gameIDs); err != nil {
			s.logger.WithError(err).Warn("stream subscribe failed")
		}

		// Wait for drop or shutdown
		ticker := time.NewTicker(time.Second)
	monitor:
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				s.Close()
				return ctx.Err()
			case <-ticker.C:
				if !s.IsConnected() {
					ticker.Stop()
					break monitor
				}
			}
		}
	}
}

// sendMessage sends a JSON frame
func (s *StreamClient) sendMessage(msg interface{}) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isConnected || s.conn == nil {
		return fmt.Errorf("not connected")
	}
	return s.conn.WriteJSON(msg)
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received frame
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	return s.conn.Close()
}
