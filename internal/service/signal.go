package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/forcize/hylo-node"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

// Publish fans a lifecycle event out to every node subscribed to the
// channel.
func (s *SignalService) Publish(ctx context.Context, channel string, event hylo.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err
	}

	return nil
}

// Realtime relays published events to a websocket session. Channel
// names arriving on request replace the session's subscription set;
// matching events are forwarded to output until the context ends or
// request closes.
func (s *SignalService) Realtime(ctx context.Context, request <-chan []string, output chan<- hylo.Event) {
	pubsub := s.rdb.Subscribe(ctx)
	defer pubsub.Close()

	var subscribed []string

	for {
		select {
		case <-ctx.Done():
			return
		case channels, ok := <-request:
			if !ok {
				return
			}
			if len(subscribed) > 0 {
				if err := pubsub.Unsubscribe(ctx, subscribed...); err != nil {
					slog.ErrorContext(
						ctx, "Failed to unsubscribe",
						slog.String("error", err.Error()),
						slog.String("module", "signal"),
					)
				}
			}
			if err := pubsub.Subscribe(ctx, channels...); err != nil {
				slog.ErrorContext(
					ctx, "Failed to subscribe",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			subscribed = channels
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}
			var event hylo.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.ErrorContext(
					ctx, "Failed to decode event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
