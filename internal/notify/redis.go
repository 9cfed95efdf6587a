package notify

import (
	"context"
	"encoding/json"

	"ordermgmt-be/internal/order"

	"github.com/redis/go-redis/v9"
)

// RedisClient is the slice of *redis.Client the publisher uses.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher PUBLISHes the JSON envelope on one channel so other
// instances (and their websocket clients) see the same events.
type RedisPublisher struct {
	client  RedisClient
	channel string
}

func NewRedisPublisher(client RedisClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

func (p *RedisPublisher) Publish(ctx context.Context, evt order.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, p.channel, data).Err()
}
