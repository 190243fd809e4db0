package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
)

// Producer publishes outbox events synchronously with full acks so a
// send error lands back on the outbox row for retry.
type Producer struct {
	sp sarama.SyncProducer
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	// Idempotent producers require exactly one in-flight request.
	cfg.Net.MaxOpenRequests = 1

	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: producer: %w", err)
	}
	return &Producer{sp: sp}, nil
}

func (p *Producer) Publish(_ context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	hs := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	_, _, err := p.sp.SendMessage(&sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	})
	return err
}

func (p *Producer) Close() error {
	if p.sp == nil {
		return nil
	}
	return p.sp.Close()
}
