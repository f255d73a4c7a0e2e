package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/governor-engine/application"
	"agora/contexts/governance/governor-engine/ports"
)

const (
	supplyUpdatedTopic = "token.supply_updated"
	defaultSupplyCG    = "governor-engine-supply-cg"
)

// SupplyConsumer tracks the token total supply that serves as the quorum
// denominator. The token ledger publishes supply snapshots; this consumer
// applies them to the governor record with redelivery dedup.
type SupplyConsumer struct {
	Subscriber    ports.EventSubscriber
	Dedup         ports.EventDedupStore
	Governors     ports.GovernorRepository
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Disabled      bool
	Logger        *slog.Logger
}

type supplyUpdatedPayload struct {
	TotalSupply uint64 `json:"total_supply"`
}

func (c SupplyConsumer) Start(ctx context.Context) error {
	logger := application.ResolveLogger(c.Logger)
	if c.Disabled {
		logger.Info("supply consumer disabled by feature flag",
			"event", "governance_supply_consumer_disabled",
			"module", "governance/governor-engine",
			"layer", "worker",
		)
		return nil
	}
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultSupplyCG
	}
	if err := c.Subscriber.Subscribe(ctx, supplyUpdatedTopic, group, c.handleSupplyUpdated); err != nil {
		logger.Error("supply consumer subscribe failed",
			"event", "governance_supply_consumer_subscribe_failed",
			"module", "governance/governor-engine",
			"layer", "worker",
			"topic", supplyUpdatedTopic,
			"consumer_group", group,
			"error", err.Error(),
		)
		return err
	}
	logger.Info("supply consumer subscription active",
		"event", "governance_supply_consumer_started",
		"module", "governance/governor-engine",
		"layer", "worker",
		"topic", supplyUpdatedTopic,
		"consumer_group", group,
	)
	return nil
}

func (c SupplyConsumer) handleSupplyUpdated(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)
	group := strings.TrimSpace(c.ConsumerGroup)
	if group == "" {
		group = defaultSupplyCG
	}
	now := c.now()

	if c.Dedup != nil {
		seen, err := c.Dedup.SeenEvent(ctx, group, event.EventID, now)
		if err != nil {
			return err
		}
		if seen {
			logger.Debug("supply event already processed",
				"event", "governance_supply_event_deduped",
				"module", "governance/governor-engine",
				"layer", "worker",
				"event_id", event.EventID,
			)
			return nil
		}
	}

	var payload supplyUpdatedPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		logger.Error("supply event decode failed",
			"event", "governance_supply_event_decode_failed",
			"module", "governance/governor-engine",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	governor, err := c.Governors.GetGovernor(ctx)
	if err != nil {
		return err
	}
	governor.TotalSupply = payload.TotalSupply
	governor.UpdatedAt = now
	if err := c.Governors.SaveGovernor(ctx, governor); err != nil {
		return err
	}

	if c.Dedup != nil {
		ttl := c.DedupTTL
		if ttl <= 0 {
			ttl = 7 * 24 * time.Hour
		}
		if err := c.Dedup.MarkEventProcessed(ctx, group, event.EventID, now.Add(ttl)); err != nil {
			return err
		}
	}

	logger.Info("governor total supply updated",
		"event", "governance_total_supply_updated",
		"module", "governance/governor-engine",
		"layer", "worker",
		"event_id", event.EventID,
		"total_supply", payload.TotalSupply,
	)
	return nil
}

func (c SupplyConsumer) now() time.Time {
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	return now
}
