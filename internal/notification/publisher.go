package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"innovation-portal/internal/domain"

	"github.com/redis/go-redis/v9"
)

// Channel is the redis pub/sub channel carrying a user's notifications.
func Channel(userID uint64) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// Publisher pushes stored notifications to live subscribers. A nil client
// turns it into a no-op.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil
}

func (p *Publisher) Publish(ctx context.Context, n *domain.Notification) error {
	if !p.Enabled() {
		return nil
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, Channel(n.UserID), raw).Err()
}

// Subscribe returns nil when redis is not configured.
func (p *Publisher) Subscribe(ctx context.Context, userID uint64) *redis.PubSub {
	if !p.Enabled() {
		return nil
	}
	return p.client.Subscribe(ctx, Channel(userID))
}
