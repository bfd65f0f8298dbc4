package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ProducerAPI is what the services publish through; tests swap in fakes.
type ProducerAPI interface {
	Publish(ctx context.Context, key string, value []byte) error
}

type Producer struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	logger.Info("Kafka producer initialized",
		zap.String("topic", topic),
		zap.Strings("brokers", brokers),
	)
	return &Producer{writer: w, topic: topic, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("topic", p.topic),
			zap.String("key", key),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (p *Producer) Close() error {
	p.logger.Info("Closing Kafka producer", zap.String("topic", p.topic))
	return p.writer.Close()
}
