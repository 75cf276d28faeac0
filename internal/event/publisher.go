// Package event publishes domain events to Kafka for downstream consumers
// (CRM sync, broker notifications). Publishing is fire-and-forget: a broker
// outage must never fail a loan submission.
package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ApplicationMatched is emitted after an application has been screened and
// its results persisted.
type ApplicationMatched struct {
	ApplicationID     uuid.UUID `json:"application_id"`
	LoanRequestID     uuid.UUID `json:"loan_request_id"`
	ProgramsEvaluated int       `json:"programs_evaluated"`
	EligiblePrograms  int       `json:"eligible_programs"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// Publisher produces events to a single topic. A nil Publisher is a no-op so
// Kafka stays optional in development.
type Publisher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewPublisher connects to the brokers and ensures the topic exists. Returns
// nil (and no error) when no brokers are configured.
func NewPublisher(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	admin := kadm.NewClient(client)
	if _, err := admin.CreateTopic(ctx, 1, 1, nil, topic); err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		client.Close()
		return nil, fmt.Errorf("ensure topic %s: %w", topic, err)
	}
	return &Publisher{client: client, topic: topic, logger: logger}, nil
}

// PublishMatched emits an ApplicationMatched event, keyed by application ID
// so per-application ordering holds.
func (p *Publisher) PublishMatched(ctx context.Context, evt ApplicationMatched) {
	if p == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal matched event", "error", err.Error())
		return
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(evt.ApplicationID.String()),
		Value: payload,
	}
	p.client.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("publish matched event failed",
				"application_id", evt.ApplicationID.String(),
				"error", err.Error(),
			)
		}
	})
}

// Close flushes pending records and releases the client.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.client.Close()
}
