// Package messaging provides the in-process event bus
package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/ports/outbound"
)

const (
	metadataType      = "type"
	metadataTimestamp = "timestamp"
)

// Bus implements outbound.MessageBus on a watermill Go channel pub/sub.
// Delivery is at-most-once and lost on restart.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewBus creates a bus with the given per-subscriber buffer
func NewBus(buffer int64, logger *zap.Logger) *Bus {
	logger = logger.Named("event-bus")
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: buffer,
		}, NewZapAdapter(logger)),
		logger: logger,
	}
}

var _ outbound.MessageBus = (*Bus)(nil)

// Publish sends message to every subscriber of topic
func (b *Bus) Publish(ctx context.Context, topic string, m outbound.Message) error {
	id := m.ID
	if id == "" {
		id = watermill.NewUUID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}

	msg := message.NewMessage(id, m.Payload)
	msg.SetContext(ctx)
	for k, v := range m.Metadata {
		msg.Metadata.Set(k, v)
	}
	msg.Metadata.Set(metadataType, m.Type)
	msg.Metadata.Set(metadataTimestamp, m.Timestamp.Format(time.RFC3339Nano))

	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe runs handler for each message on topic until ctx is cancelled or
// the bus is closed. Handler errors nack the message, which gochannel
// redelivers.
func (b *Bus) Subscribe(ctx context.Context, topic string, handler outbound.MessageHandler) error {
	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range messages {
			b.dispatch(topic, msg, handler)
		}
	}()
	return nil
}

func (b *Bus) dispatch(topic string, msg *message.Message, handler outbound.MessageHandler) {
	m := outbound.Message{
		ID:       msg.UUID,
		Type:     msg.Metadata.Get(metadataType),
		Payload:  msg.Payload,
		Metadata: map[string]string(msg.Metadata),
	}
	if ts, err := time.Parse(time.RFC3339Nano, msg.Metadata.Get(metadataTimestamp)); err == nil {
		m.Timestamp = ts
	}

	if err := handler(msg.Context(), m); err != nil {
		b.logger.Warn("Message handler failed",
			zap.String("topic", topic),
			zap.String("message_id", msg.UUID),
			zap.Error(err))
		msg.Nack()
		return
	}
	msg.Ack()
}

// Close stops every subscription and waits for handlers to return
func (b *Bus) Close() error {
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

// ZapAdapter routes watermill logs through zap
type ZapAdapter struct {
	logger *zap.Logger
}

// NewZapAdapter wraps logger
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	return &ZapAdapter{logger: logger}
}

func (a *ZapAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (a *ZapAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, zapFields(fields)...)
}

func (a *ZapAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, zapFields(fields)...)
}

func (a *ZapAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, zapFields(fields)...)
}

func (a *ZapAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &ZapAdapter{logger: a.logger.With(zapFields(fields)...)}
}

func zapFields(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
