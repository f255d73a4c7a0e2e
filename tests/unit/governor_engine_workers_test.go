package unit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	governormemory "agora/contexts/governance/governor-engine/adapters/memory"
	governorworkers "agora/contexts/governance/governor-engine/application/workers"
	"agora/contexts/governance/governor-engine/domain/entities"
	"agora/contexts/governance/governor-engine/ports"
)

type governanceStubSubscriber struct {
	handlers map[string]func(context.Context, ports.EventEnvelope) error
}

func (s *governanceStubSubscriber) Subscribe(
	_ context.Context,
	topic string,
	_ string,
	handler ports.EventHandler,
) error {
	if s.handlers == nil {
		s.handlers = map[string]func(context.Context, ports.EventEnvelope) error{}
	}
	s.handlers[topic] = handler
	return nil
}

type governancePublishCapture struct {
	topics []string
	events []ports.EventEnvelope
}

func (p *governancePublishCapture) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestSupplyConsumerUpdatesTotalSupply(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store := governormemory.NewStore(nil)
	store.SetNow(now)
	if err := store.CreateGovernor(context.Background(), entities.Governor{
		Admin:        "admin-1",
		Manager:      "manager-1",
		VotingPeriod: time.Hour,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		t.Fatalf("seed governor failed: %v", err)
	}

	sub := &governanceStubSubscriber{}
	consumer := governorworkers.SupplyConsumer{
		Subscriber:    sub,
		Dedup:         store,
		Governors:     store,
		Clock:         store,
		ConsumerGroup: "governor-engine-supply-cg",
	}
	if err := consumer.Start(context.Background()); err != nil {
		t.Fatalf("start supply consumer failed: %v", err)
	}
	handler := sub.handlers["token.supply_updated"]
	if handler == nil {
		t.Fatalf("expected token.supply_updated handler registration")
	}

	payload, _ := json.Marshal(map[string]any{"total_supply": 5000})
	if err := handler(context.Background(), ports.EventEnvelope{
		EventID:   "event-supply-1",
		EventType: "token.supply_updated",
		Data:      payload,
	}); err != nil {
		t.Fatalf("supply handler failed: %v", err)
	}

	governor, err := store.GetGovernor(context.Background())
	if err != nil {
		t.Fatalf("load governor failed: %v", err)
	}
	if governor.TotalSupply != 5000 {
		t.Fatalf("expected total supply 5000, got %d", governor.TotalSupply)
	}

	// A replayed event id must be a no-op.
	stale, _ := json.Marshal(map[string]any{"total_supply": 1})
	if err := handler(context.Background(), ports.EventEnvelope{
		EventID:   "event-supply-1",
		EventType: "token.supply_updated",
		Data:      stale,
	}); err != nil {
		t.Fatalf("replayed supply handler failed: %v", err)
	}
	governor, err = store.GetGovernor(context.Background())
	if err != nil {
		t.Fatalf("reload governor failed: %v", err)
	}
	if governor.TotalSupply != 5000 {
		t.Fatalf("expected replay to be deduped, got supply %d", governor.TotalSupply)
	}
}

func TestOutboxRelayPublishesPendingAndMarksPublished(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	store := governormemory.NewStore(nil)
	store.SetNow(now)

	data, _ := json.Marshal(map[string]any{"proposal_id": 3})
	if err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
		EventID:       "event-outbox-1",
		EventType:     "governance.proposal_created",
		OccurredAt:    now,
		SourceService: "governor-engine",
		SchemaVersion: 1,
		PartitionKey:  "3",
		Data:          data,
	}); err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}

	publisher := &governancePublishCapture{}
	relay := governorworkers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     store,
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("outbox relay run failed: %v", err)
	}

	if len(publisher.topics) != 1 || publisher.topics[0] != "governance.proposal_created" {
		t.Fatalf("expected one publish on event-type topic, got %v", publisher.topics)
	}
	if publisher.events[0].EventID != "event-outbox-1" {
		t.Fatalf("unexpected published event id %s", publisher.events[0].EventID)
	}

	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected drained outbox, got %d pending", len(pending))
	}

	// A second pass has nothing to publish.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle outbox relay run failed: %v", err)
	}
	if len(publisher.topics) != 1 {
		t.Fatalf("expected no re-publish, got %v", publisher.topics)
	}
}
