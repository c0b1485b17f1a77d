package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/GhoshChinmay/DisasterSence-sub000/internal/models"
	"github.com/GhoshChinmay/DisasterSence-sub000/internal/observability"
)

// KafkaPublisher pushes every newly ingested disaster onto a Kafka topic so
// downstream consumers (alerting, archival) can react without polling the API.
type KafkaPublisher struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
}

// NewKafkaPublisher creates a producer for the disaster event topic.
func NewKafkaPublisher(brokers []string, topic string, metrics *observability.Metrics) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &KafkaPublisher{writer: w, metrics: metrics}
}

// PublishDisaster serializes one disaster and writes it to the topic, keyed
// by disaster ID so updates for the same disaster stay on one partition.
func (p *KafkaPublisher) PublishDisaster(ctx context.Context, d models.Disaster) error {
	msg, err := serializeToMessage(d)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("error writing disaster event: %w", err)
	}
	p.metrics.EventsPublished.Inc()
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func serializeToMessage(d models.Disaster) (kafkago.Message, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("error serializing disaster event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(d.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "type", Value: []byte(d.Type)},
			{Key: "severity", Value: []byte(d.Severity)},
			{Key: "reported_at", Value: []byte(d.ReportedAt.Format(time.RFC3339))},
		},
	}, nil
}
