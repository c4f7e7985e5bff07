package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"humesync/internal/metrics"
	"humesync/pkg/errors"
	"humesync/pkg/logger"
)

// Producer handles Kafka message publishing
type Producer struct {
	mu       sync.Mutex
	writers  map[string]*kafka.Writer
	brokers  []string
	clientID string
	log      *logger.Logger
}

// ProducerConfig holds producer configuration
type ProducerConfig struct {
	Brokers  []string
	ClientID string
}

// NewProducer creates a new Kafka producer; writers are opened per topic on first use
func NewProducer(cfg ProducerConfig) *Producer {
	return &Producer{
		writers:  make(map[string]*kafka.Writer),
		brokers:  cfg.Brokers,
		clientID: cfg.ClientID,
		log:      logger.Get().With("component", "kafka_producer"),
	}
}

func (p *Producer) getWriter(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           10 * time.Second,
		AllowAutoTopicCreation: true,
		Transport:              &kafka.Transport{ClientID: p.clientID},
	}

	p.writers[topic] = w
	return w
}

// Publish sends event as JSON, keyed so events for one agent stay ordered
func (p *Producer) Publish(ctx context.Context, topic string, key string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrapf(err, "marshal event for %s", topic)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}

	if err := p.getWriter(topic).WriteMessages(ctx, msg); err != nil {
		metrics.KafkaMessages.WithLabelValues(topic, "error").Inc()
		p.log.Errorf("Failed to publish to %s: %v", topic, err)
		return errors.Wrapf(err, "publish to %s", topic)
	}

	metrics.KafkaMessages.WithLabelValues(topic, "success").Inc()
	p.log.Debugf("Published to %s: %s", topic, key)
	return nil
}

// Close closes all writers
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			p.log.Errorf("Failed to close writer for %s: %v", topic, err)
			errs = append(errs, err)
		}
	}
	p.writers = make(map[string]*kafka.Writer)
	return errors.Join(errs...)
}
