package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap/zaptest"

	"github.com/arklim/workflow-resolution/internal/core/domain"
	"github.com/arklim/workflow-resolution/internal/infra/config"
)

type fakeAsyncProducer struct {
	input  chan *sarama.ProducerMessage
	errors chan *sarama.ProducerError
}

func newFakeAsyncProducer() *fakeAsyncProducer {
	return &fakeAsyncProducer{
		input:  make(chan *sarama.ProducerMessage, 1),
		errors: make(chan *sarama.ProducerError, 1),
	}
}

func (f *fakeAsyncProducer) AsyncClose() {}

func (f *fakeAsyncProducer) Close() error { return nil }

func (f *fakeAsyncProducer) Input() chan<- *sarama.ProducerMessage { return f.input }

func (f *fakeAsyncProducer) Successes() <-chan *sarama.ProducerMessage { return nil }

func (f *fakeAsyncProducer) Errors() <-chan *sarama.ProducerError { return f.errors }

func (f *fakeAsyncProducer) IsTransactional() bool { return false }

func (f *fakeAsyncProducer) BeginTxn() error { return nil }

func (f *fakeAsyncProducer) CommitTxn() error { return nil }

func (f *fakeAsyncProducer) AbortTxn() error { return nil }

func (f *fakeAsyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}

func (f *fakeAsyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}

func (f *fakeAsyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag {
	return sarama.ProducerTxnStatusFlag(0)
}

func newTestPublisher(t *testing.T, asyncProducer sarama.AsyncProducer) *EventPublisher {
	t.Helper()

	producer := &Producer{
		producer: asyncProducer,
		logger:   zaptest.NewLogger(t),
		cfg: config.KafkaSettings{
			TopicPrefix: "workflow",
		},
		errChan: make(chan error, 1),
		done:    make(chan struct{}),
	}

	return NewEventPublisher(producer, config.AppSettings{
		Name: "workflow-resolution",
		Env:  "test",
	}, zaptest.NewLogger(t))
}

func TestPublishAssigneeResolved(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	resolvedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	roleID := "r1"
	unitID := "B1"
	event := domain.AssigneeResolvedEvent{
		EventID:       "event-123",
		Strategy:      "CURRENT_BU_ROLE",
		RoleID:        &roleID,
		UnitID:        &unitID,
		InitiatorID:   "u2",
		Candidates:    []string{"u3", "u4"},
		RequiresClaim: true,
		ResolvedAt:    resolvedAt,
		Metadata:      map[string]any{"source": "unit-test"},
	}

	if err := publisher.PublishAssigneeResolved(context.Background(), event); err != nil {
		t.Fatalf("PublishAssigneeResolved returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "workflow.assignee.resolved" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["event_type"]; got != "workflow.assignee.resolved" {
			t.Fatalf("unexpected event_type: %v", got)
		}

		if got := envelope["aggregate_id"]; got != event.InitiatorID {
			t.Fatalf("unexpected aggregate_id: %v", got)
		}

		timestamp, ok := envelope["timestamp"].(string)
		if !ok {
			t.Fatalf("timestamp not a string: %T", envelope["timestamp"])
		}
		if timestamp != resolvedAt.Format(time.RFC3339Nano) {
			t.Fatalf("unexpected timestamp: %s", timestamp)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["strategy"]; got != event.Strategy {
			t.Fatalf("unexpected strategy: %v", got)
		}

		if got := payload["role_id"]; got != roleID {
			t.Fatalf("unexpected role_id: %v", got)
		}

		requiresClaim, ok := payload["requires_claim"].(bool)
		if !ok || !requiresClaim {
			t.Fatalf("unexpected requires_claim: %v", payload["requires_claim"])
		}

		candidates, ok := payload["candidates"].([]any)
		if !ok || len(candidates) != 2 {
			t.Fatalf("unexpected candidates: %v", payload["candidates"])
		}

		if _, present := payload["failure_reason"]; present {
			t.Fatalf("failure_reason should be omitted for resolved outcomes")
		}

		envelopeMetadata, ok := envelope["metadata"].(map[string]any)
		if !ok {
			t.Fatalf("envelope metadata not a map: %T", envelope["metadata"])
		}

		if envelopeMetadata["service"] != "workflow-resolution" {
			t.Fatalf("unexpected metadata service: %v", envelopeMetadata["service"])
		}

		if envelopeMetadata["environment"] != "test" {
			t.Fatalf("unexpected metadata environment: %v", envelopeMetadata["environment"])
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}

func TestPublishUnitMoved(t *testing.T) {
	asyncProducer := newFakeAsyncProducer()
	publisher := newTestPublisher(t, asyncProducer)

	movedAt := time.Date(2026, 3, 11, 14, 30, 0, 0, time.UTC)
	oldParent := "B"
	newParent := "A"
	event := domain.UnitMovedEvent{
		EventID:     "evt-001",
		UnitID:      "B1",
		OldParentID: &oldParent,
		NewParentID: &newParent,
		OldPath:     "/B/B1",
		NewPath:     "/A/B1",
		MovedAt:     movedAt,
	}

	if err := publisher.PublishUnitMoved(context.Background(), event); err != nil {
		t.Fatalf("PublishUnitMoved returned error: %v", err)
	}

	select {
	case msg := <-asyncProducer.input:
		if msg.Topic != "workflow.unit.moved" {
			t.Fatalf("unexpected topic: %s", msg.Topic)
		}

		bytes, err := msg.Value.Encode()
		if err != nil {
			t.Fatalf("Value.Encode returned error: %v", err)
		}

		var envelope map[string]any
		if err := json.Unmarshal(bytes, &envelope); err != nil {
			t.Fatalf("failed to unmarshal envelope: %v", err)
		}

		if got := envelope["aggregate_id"]; got != event.UnitID {
			t.Fatalf("unexpected aggregate_id: %v", got)
		}

		payload, ok := envelope["payload"].(map[string]any)
		if !ok {
			t.Fatalf("payload not a map: %T", envelope["payload"])
		}

		if got := payload["old_path"]; got != event.OldPath {
			t.Fatalf("unexpected old_path: %v", got)
		}

		if got := payload["new_path"]; got != event.NewPath {
			t.Fatalf("unexpected new_path: %v", got)
		}

		if got := payload["new_parent_id"]; got != newParent {
			t.Fatalf("unexpected new_parent_id: %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message on async producer input channel")
	}
}
