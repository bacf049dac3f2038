package inbound

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/shandysiswandi/otplogin/internal/pkg/config"
	"github.com/shandysiswandi/otplogin/internal/pkg/goroutine"
	"github.com/shandysiswandi/otplogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otplogin/internal/pkg/messaging"
	"github.com/shandysiswandi/otplogin/internal/pkg/uid"
	"github.com/shandysiswandi/otplogin/internal/shared/event"
)

// subscriber is implemented by brokers that can register a consumer without
// blocking, such as the memory driver.
type subscriber interface {
	Subscribe(source string, handler messaging.Handler, opts ...messaging.ConsumeOption) (func(), error)
}

// RegisterMQConsumer starts one background consumer per enabled subscription.
// An empty modules.notification.consumer_names enables all of them.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.notification.consumer_names")
	concurrency := max(cfg.GetInt("modules.notification.consumer_concurrency"), 1)

	var consumers = []struct {
		name              string
		topic             string // destination where publisher sent message
		natsConsumerName  string // for nats
		kafkaConsumerName string // for kafka
		handler           messaging.Handler
	}{
		{
			name:              event.OtpIssuedDestinationConsumerNotification,
			topic:             event.OtpIssuedDestination,
			natsConsumerName:  event.OtpIssuedDestinationConsumerNotification,
			kafkaConsumerName: event.OtpIssuedDestinationConsumerNotification,
			handler:           mqHandler.OtpIssuedNotification,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && !slices.Contains(enableConsumerNames, consumer.name) {
			continue
		}

		opts := []messaging.ConsumeOption{
			messaging.WithQueueGroup(consumer.natsConsumerName),
			messaging.WithGroup(consumer.kafkaConsumerName),
			messaging.WithAutoAck(true),
			messaging.WithConcurrency(concurrency),
			messaging.WithMaxInFlight(concurrency),
		}

		// In-process consumers must be live before this returns, otherwise
		// the first publish finds no subscriber.
		if sub, ok := messenger.(subscriber); ok {
			unsubscribe, err := sub.Subscribe(consumer.topic, consumer.handler, opts...)
			if err != nil {
				slog.ErrorContext(ctx, "failed to subscribe consumer", "consumer", consumer.name, "error", err)
				continue
			}

			context.AfterFunc(ctx, unsubscribe)
			slog.InfoContext(ctx, "Subscribed in-process consumer", "consumer", consumer.name)
			continue
		}

		started := routine.Go(ctx, consumer.name, func(pCtx context.Context) error {
			slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
			err := messenger.Consume(pCtx, consumer.topic, consumer.handler, opts...)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		if !started {
			slog.ErrorContext(ctx, "failed to start consumer", "consumer", consumer.name)
		}
	}
}
