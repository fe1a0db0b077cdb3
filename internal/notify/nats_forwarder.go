package notify

import (
	"context"
	"fmt"
	"time"

	"coreader-client/internal/entity"
	"coreader-client/internal/pkg/logger"
	pktNats "coreader-client/pkg/nats"
)

const forwardTimeout = 3 * time.Second

// NatsForwarder mirrors bus notifications to <prefix>.<source>.<level> so other
// processes (dashboards, desktop notifiers) can follow the session.
type NatsForwarder struct {
	publisher *pktNats.Publisher
	prefix    string
	logger    logger.ILogger
}

func NewNatsForwarder(publisher *pktNats.Publisher, prefix string, log logger.ILogger) *NatsForwarder {
	return &NatsForwarder{publisher: publisher, prefix: prefix, logger: log}
}

func (f *NatsForwarder) Subject(n entity.Notification) string {
	return fmt.Sprintf("%s.%s.%s", f.prefix, n.Source, n.Level)
}

// Run forwards until ctx ends or notifications is closed.
func (f *NatsForwarder) Run(ctx context.Context, notifications <-chan entity.Notification) {
	for {
		select {
		case n, ok := <-notifications:
			if !ok {
				return
			}
			f.forward(ctx, n)
		case <-ctx.Done():
			return
		}
	}
}

func (f *NatsForwarder) forward(ctx context.Context, n entity.Notification) {
	ctx, cancel := context.WithTimeout(ctx, forwardTimeout)
	defer cancel()

	if err := f.publisher.Publish(ctx, f.Subject(n), n); err != nil {
		f.logger.Warn("NatsForwarder", "Failed to forward notification", map[string]interface{}{
			"subject": f.Subject(n), "error": err,
		})
	}
}

func (f *NatsForwarder) Close() {
	f.publisher.Close()
}
