package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// StockChange is the payload of a stock-change notification. At most one
// notification is published per actual change; ordering across products is
// not guaranteed.
type StockChange struct {
	ProductID uuid.UUID `json:"productId"`
	NewStock  int       `json:"newStock"`
}

// Publisher pushes stock-change notifications onto the shared channel.
type Publisher struct {
	Client  *redis.Client
	Channel string
}

// Publish broadcasts a stock change.
func (p Publisher) Publish(ctx context.Context, change StockChange) error {
	if p.Client == nil {
		return errors.New("catalog: publisher not configured")
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("encode stock change: %w", err)
	}
	return p.Client.Publish(ctx, p.Channel, payload).Err()
}

// Listener subscribes to the stock-change channel and forwards decoded
// notifications to the handler. Malformed payloads are logged and skipped.
type Listener struct {
	Client  *redis.Client
	Channel string
	Logger  zerolog.Logger
	Handler func(ctx context.Context, change StockChange)
}

// Run blocks consuming notifications until the context is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	if l.Client == nil {
		return errors.New("catalog: listener not configured")
	}
	if l.Handler == nil {
		return errors.New("catalog: listener handler is required")
	}
	sub := l.Client.Subscribe(ctx, l.Channel)
	defer func() {
		_ = sub.Close()
	}()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("catalog: stock channel closed")
			}
			var change StockChange
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				l.Logger.Warn().Err(err).Str("payload", msg.Payload).Msg("malformed stock change notification")
				continue
			}
			l.Handler(ctx, change)
		}
	}
}
