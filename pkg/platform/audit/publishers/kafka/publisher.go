// Package kafka publishes audit events to a Kafka topic for downstream
// consumers (SIEM, compliance archiving). Records are keyed by the affected
// identity so per-member ordering survives partitioning.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "concord/pkg/platform/audit"
)

// Publisher implements audit.Store over a Kafka producer.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// payload is the JSON structure published to Kafka.
type payload struct {
	Category  string `json:"category"`
	Action    string `json:"action"`
	Identity  string `json:"identity"`
	ActorID   string `json:"actor_id"`
	RequestID string `json:"request_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

// New connects a producer to the given brokers.
func New(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Append publishes one audit event synchronously.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	body, err := json.Marshal(payload{
		Category:  string(audit.AuditEvent(event.Action).Category()),
		Action:    event.Action,
		Identity:  event.Identity.String(),
		ActorID:   event.ActorID.String(),
		RequestID: event.RequestID,
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Identity.String()),
		Value: body,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the producer.
func (p *Publisher) Close() {
	p.client.Close()
}
