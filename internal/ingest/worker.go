package ingest

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/brightmill/storefront-insights/internal/eventstore"
	"github.com/brightmill/storefront-insights/pkg/logger"
	"github.com/brightmill/storefront-insights/pkg/metrics"
)

const consumerName = "insights-ingest"

// RowWriter appends validated rows to the event log.
type RowWriter interface {
	Insert(ctx context.Context, row eventstore.EventRow) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Service consumes business events from Pub/Sub, guards against duplicates
// with Redis, and appends one row per event to the event log.
type Service struct {
	subscription *gcppubsub.Subscriber
	writer       RowWriter
	manager      idempotencyChecker
	logg         *logger.Logger
	metrics      *metrics.IngestMetrics
}

// NewService wires the ingest consumer.
func NewService(
	subscription *gcppubsub.Subscriber,
	writer RowWriter,
	manager idempotencyChecker,
	logg *logger.Logger,
	ingestMetrics *metrics.IngestMetrics,
) (*Service, error) {
	if subscription == nil {
		return nil, errors.New("events subscription is required")
	}
	if writer == nil {
		return nil, errors.New("row writer is required")
	}
	if manager == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{
		subscription: subscription,
		writer:       writer,
		manager:      manager,
		logg:         logg,
		metrics:      ingestMetrics,
	}, nil
}

type processResult struct {
	nack bool
}

// Run starts consuming messages until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if s.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

// process handles one message. Malformed messages are acked and counted as
// rejected; only infrastructure failures nack for redelivery.
func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}
	logCtx := s.logg.WithFields(ctx, fields)

	envelope, err := DecodeEnvelope(msg.Data, msg.Attributes)
	if err != nil {
		s.metrics.IncRejected(msg.Attributes["event_kind"], "envelope")
		fields["error"] = err.Error()
		s.logg.Warn(s.logg.WithFields(ctx, fields), "invalid event envelope")
		return processResult{}
	}

	fields["event_id"] = envelope.EventID
	fields["event_kind"] = string(envelope.Kind)
	fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	logCtx = s.logg.WithFields(ctx, fields)

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		s.metrics.IncRejected(string(envelope.Kind), "event_id")
		s.logg.Warn(logCtx, "invalid event id")
		return processResult{}
	}

	already, err := s.manager.CheckAndMarkProcessed(logCtx, consumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		s.logg.Info(logCtx, "event already processed")
		return processResult{}
	}

	row, err := BuildRow(*envelope)
	if err != nil {
		// poison payload, acking avoids an endless redelivery loop
		s.metrics.IncRejected(string(envelope.Kind), "payload")
		s.logg.Warn(logCtx, "invalid event payload: "+err.Error())
		return processResult{}
	}

	if err := s.writer.Insert(logCtx, *row); err != nil {
		s.logg.Error(logCtx, "event append failed", err)
		_ = s.manager.Delete(logCtx, consumerName, eventID)
		return processResult{nack: true}
	}

	s.metrics.IncHandled(string(envelope.Kind))
	s.logg.Info(logCtx, "event appended")
	return processResult{}
}
