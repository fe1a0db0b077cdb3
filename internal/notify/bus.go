package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coreader-client/internal/entity"
	"coreader-client/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const topicNotifications = "notifications"

// Bus is the in-process NotificationSink. Presentation subscribes to it;
// publishing never waits for a reader. Delivery order between two
// notifications is not guaranteed.
type Bus struct {
	pubSub *gochannel.GoChannel
	logger logger.ILogger
}

func NewBus(log logger.ILogger) *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NewStdLogger(false, false),
		),
		logger: log,
	}
}

func (b *Bus) Notify(n entity.Notification) {
	if n.OccurredAt.IsZero() {
		n.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(n)
	if err != nil {
		b.logger.Error("NotificationBus", "Failed to encode notification", map[string]interface{}{"error": err})
		return
	}

	if err := b.pubSub.Publish(topicNotifications, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
		b.logger.Warn("NotificationBus", "Failed to publish notification", map[string]interface{}{"error": err})
	}
}

// Subscribe streams notifications published after the call until ctx ends or
// the bus is closed.
func (b *Bus) Subscribe(ctx context.Context) (<-chan entity.Notification, error) {
	messages, err := b.pubSub.Subscribe(ctx, topicNotifications)
	if err != nil {
		return nil, fmt.Errorf("subscribe to notifications: %w", err)
	}

	out := make(chan entity.Notification, 16)
	go func() {
		defer close(out)
		for msg := range messages {
			var n entity.Notification
			err := json.Unmarshal(msg.Payload, &n)
			msg.Ack()
			if err != nil {
				b.logger.Warn("NotificationBus", "Dropped undecodable notification", map[string]interface{}{"error": err})
				continue
			}
			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
