package events

import (
	"context"
	"sync"
	"time"

	"smoothie-be/internal/logger"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher is what domain code depends on. The kafka producer and the no-op
// both satisfy it, so the broker stays optional in dev and in tests.
type Publisher interface {
	Publish(ctx context.Context, topic, eventType, correlationID string, payload any)
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, string, any) {}

type Producer struct {
	w        *kafkago.Writer
	producer string
	inbox    chan kafkago.Message
	closeCh  chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewProducer(brokers []string, serviceName string, buf int) *Producer {
	return &Producer{
		w: &kafkago.Writer{
			Addr:         kafkago.TCP(brokers...),
			Balancer:     &kafkago.Hash{},
			RequiredAcks: kafkago.RequireAll,
			Async:        true,
		},
		producer: serviceName,
		inbox:    make(chan kafkago.Message, buf),
		closeCh:  make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				p.mu.Lock()
				p.closed = true
				close(p.inbox)
				p.mu.Unlock()
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m, ok := <-p.inbox:
				if !ok {
					_ = p.w.Close()
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafkago.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		logger.L().Warn("failed to publish event",
			zap.String("topic", m.Topic),
			zap.Error(err),
		)
	}
}

func (p *Producer) Publish(ctx context.Context, topic, eventType, correlationID string, payload any) {
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.producer,
		CorrelationID: correlationID,
		Payload:       MustMarshal(payload),
	}

	msg := kafkago.Message{
		Topic:   topic,
		Key:     PartitionKey(correlationID),
		Value:   MustMarshal(env),
		Time:    time.Now(),
		Headers: []kafkago.Header{{Key: "x-event-type", Value: []byte(eventType)}},
	}

	// Publishes may still arrive while in-flight handlers finish during
	// shutdown; events are best-effort, so drop instead of panicking on the
	// closed inbox or blocking a handler on a full one.
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		logger.FromCtx(ctx).Warn("event dropped, producer closed",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
		)
		return
	}
	select {
	case p.inbox <- msg:
	default:
		logger.FromCtx(ctx).Warn("event dropped, inbox full",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
		)
	}
}

// WaitClosed blocks until the flush goroutine has drained the inbox.
func (p *Producer) WaitClosed() { <-p.closeCh }
