package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// TopicSeatStatus carries seat occupancy snapshots for downstream
// consumers (displays, partner feeds). The SSE emitter serves browsers;
// this topic serves everything else.
const TopicSeatStatus = "busgo.seats.status"

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Balancer: &kafka.LeastBytes{},
	}
	return &Producer{Writer: writer}
}

// Publish writes one message to topic. Callers treat failures as
// non-fatal: occupancy events are fire-and-forget.
func (p *Producer) Publish(topic string, key string, value []byte) error {
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Topic: topic,
			Key:   []byte(key),
			Value: value,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
