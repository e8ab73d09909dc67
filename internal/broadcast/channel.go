// Package broadcast propagates filter-state changes between independent
// search sessions over a Redis pub/sub channel. Each session publishes its
// accepted filter states and observes those of its peers; a session's own
// events are skipped on receipt.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Event is one filter-state change, as published on the wire.
type Event struct {
	SessionID  string           `json:"session_id"`
	Query      string           `json:"query,omitempty"`
	Ranges     map[string]Range `json:"ranges,omitempty"`
	Categories []string         `json:"categories,omitempty"`
	At         time.Time        `json:"at"`
}

// Range mirrors a numeric range filter boundary pair.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Config holds connection parameters for a broadcast channel.
type Config struct {
	Addrs     []string
	Password  string
	Channel   string
	SessionID string
}

// Channel is a filter-state broadcast bound to one session identity.
type Channel struct {
	client  rueidis.Client
	channel string
	session string
	logger  *zap.Logger
}

// New connects to Redis and creates a broadcast channel.
func New(cfg Config, logger *zap.Logger) (*Channel, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("channel name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Channel{
		client:  client,
		channel: cfg.Channel,
		session: cfg.SessionID,
		logger:  logger,
	}, nil
}

// Ping checks connectivity.
func (c *Channel) Ping(ctx context.Context) error {
	cmd := c.client.B().Ping().Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// WaitForReady polls Ping until the broker responds or timeout expires.
func (c *Channel) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for broker: %w", ctx.Err())
		case <-ticker.C:
			if err := c.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// Close shuts down the client.
func (c *Channel) Close() {
	c.client.Close()
}

// Publish broadcasts a filter-state event. The event is stamped with the
// channel's session identity and publish time.
func (c *Channel) Publish(ctx context.Context, ev Event) error {
	ev.SessionID = c.session
	ev.At = time.Now().UTC()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	cmd := c.client.B().Publish().Channel(c.channel).Message(string(payload)).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// Subscribe blocks delivering peer events to handler until ctx is canceled
// or the connection fails. Events published by this session are skipped.
func (c *Channel) Subscribe(ctx context.Context, handler func(Event)) error {
	cmd := c.client.B().Subscribe().Channel(c.channel).Build()
	err := c.client.Receive(ctx, cmd, func(msg rueidis.PubSubMessage) {
		c.dispatch(msg.Message, handler)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// dispatch decodes one wire payload and hands it to the handler unless it
// originated from this session or fails to decode.
func (c *Channel) dispatch(payload string, handler func(Event)) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		c.logger.Warn("dropping malformed broadcast event", zap.Error(err))
		return
	}
	if ev.SessionID == c.session {
		return
	}
	handler(ev)
}
