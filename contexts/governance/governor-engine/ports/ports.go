package ports

import (
	"context"
	"encoding/json"
	"time"

	"agora/contexts/governance/governor-engine/domain/entities"
)

// GovernorRepository persists the singleton governor record and its proposal
// type registry. CreateGovernor must reject a second initialization with
// ErrGovernorAlreadyInitialized; RegisterProposalType must reject duplicate
// codes with ErrProposalTypeExists.
type GovernorRepository interface {
	CreateGovernor(ctx context.Context, governor entities.Governor) error
	GetGovernor(ctx context.Context) (entities.Governor, error)
	SaveGovernor(ctx context.Context, governor entities.Governor) error
	RegisterProposalType(ctx context.Context, proposalType entities.ProposalType) error
	GetProposalType(ctx context.Context, code uint8) (entities.ProposalType, error)
	ListProposalTypes(ctx context.Context) ([]entities.ProposalType, error)
}

type ProposalRepository interface {
	CreateProposal(ctx context.Context, proposal entities.Proposal) error
	GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error)
	SaveProposal(ctx context.Context, proposal entities.Proposal) error
	ListProposals(ctx context.Context) ([]entities.Proposal, error)
}

// VoteRepository stores immutable vote records. CreateVote is the uniqueness
// gate: it must reject a second record for the same (voter, proposal) pair
// with ErrDuplicateVote before any tally is touched.
type VoteRepository interface {
	CreateVote(ctx context.Context, vote entities.VoteRecord) error
	GetVote(ctx context.Context, proposalID uint64, voter string) (entities.VoteRecord, error)
	ListVotesByProposal(ctx context.Context, proposalID uint64) ([]entities.VoteRecord, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// VotingPowerOracle resolves an account's voting weight at a reference time.
// Implementations must be deterministic for a fixed (account, at) pair.
type VotingPowerOracle interface {
	WeightOf(ctx context.Context, account string, at time.Time) (uint64, error)
}

// ActionExecutor carries out the action linked to a passed proposal's type.
// Execution failure is the executor's concern; the engine does not roll back
// a proposal's executed state on action failure.
type ActionExecutor interface {
	Execute(ctx context.Context, actionRef string) error
}

// EventEnvelope is the context-local mirror of the canonical event contract
// published to the bus.
type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

type OutboxMessage struct {
	OutboxID    string
	EventType   string
	Payload     []byte
	Status      string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, event EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventHandler func(ctx context.Context, event EventEnvelope) error

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, consumerGroup string, handler EventHandler) error
}

// EventDedupStore guards consumers against redelivered events.
type EventDedupStore interface {
	SeenEvent(ctx context.Context, consumerGroup string, eventID string, now time.Time) (bool, error)
	MarkEventProcessed(ctx context.Context, consumerGroup string, eventID string, expiresAt time.Time) error
}
