package docstore

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// Relay re-broadcasts collection changes across instances through Redis
// pub/sub, so a write on one replica refreshes subscribers on all of them.
// Messages carry the origin instance id; a relay ignores its own broadcasts
// since those changes already refreshed the local hub.
type Relay struct {
	client     *redis.Client
	channel    string
	instanceID string
	hub        *Hub
	logger     *zap.Logger
}

// NewRelay wires a relay to a hub. Call Start to begin receiving.
func NewRelay(client *redis.Client, channel string, hub *Hub, logger *zap.Logger) *Relay {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Relay{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		hub:        hub,
		logger:     logger,
	}
	hub.setBroadcast(r.Broadcast)
	return r
}

// Start consumes remote change messages until the context is cancelled.
func (r *Relay) Start(ctx context.Context) {
	pubsub := r.client.Subscribe(ctx, r.channel)
	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				origin, collection, found := strings.Cut(msg.Payload, "|")
				if !found || origin == r.instanceID {
					continue
				}
				r.hub.notifyLocal(collection)
			}
		}
	}()
}

// Broadcast publishes a collection change to the other instances.
func (r *Relay) Broadcast(collection string) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	payload := r.instanceID + "|" + collection
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn("relay publish failed", zap.String("collection", collection), zap.Error(err))
	}
}
