package stream

import (
	"context"
	"encoding/json"

	"homehub/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// redisEnvelope carries an event across instances, preserving the
// targeting user id that the wire format omits and the originating
// instance so relays are not re-delivered locally.
type redisEnvelope struct {
	Origin string       `json:"origin"`
	UserID string       `json:"userId,omitempty"`
	Event  models.Event `json:"event"`
}

// Publisher pushes events onto the hub and relays them through Redis so
// every running instance delivers them to its own sessions.
type Publisher struct {
	hub     *Hub
	client  *redis.Client
	channel string
	origin  string
	logger  *zap.Logger
}

// NewPublisher wires a hub to a Redis pub/sub channel. A nil client
// keeps the publisher purely in-process.
func NewPublisher(hub *Hub, client *redis.Client, channel string, logger *zap.Logger) *Publisher {
	return &Publisher{
		hub:     hub,
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		logger:  logger,
	}
}

// Publish delivers the event locally and relays it to other instances.
func (p *Publisher) Publish(ctx context.Context, ev models.Event) {
	p.hub.Publish(ev)

	if p.client == nil {
		return
	}
	payload, err := json.Marshal(redisEnvelope{Origin: p.origin, UserID: ev.UserID, Event: ev})
	if err != nil {
		p.logger.Error("stream: failed to marshal event", zap.Error(err))
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.logger.Warn("stream: failed to relay event", zap.Error(err))
	}
}

// Run consumes relayed events from Redis and republishes them on the
// local hub, skipping this instance's own messages. It blocks until the
// context is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	if p.client == nil {
		return
	}
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env redisEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				p.logger.Warn("stream: dropping malformed relayed event", zap.Error(err))
				continue
			}
			if env.Origin == p.origin {
				continue
			}
			env.Event.UserID = env.UserID
			p.hub.Publish(env.Event)
		}
	}
}
