package commands

import (
	"encoding/json"
	"time"

	"agora/contexts/governance/governor-engine/ports"
)

const (
	eventProposalCreated        = "governance.proposal_created"
	eventVoteCast               = "governance.vote_cast"
	eventProposalExecuted       = "governance.proposal_executed"
	eventProposalTypeRegistered = "governance.proposal_type_registered"
	eventGovernorInitialized    = "governance.governor_initialized"
)

func newGovernanceEnvelope(
	eventID string,
	eventType string,
	proposalKey string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Events are partitioned by proposal id for stable ordering on
	// proposal-scoped consumers such as indexers.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "governor-engine",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "proposal_id",
		PartitionKey:     proposalKey,
		Data:             payload,
	}, nil
}
