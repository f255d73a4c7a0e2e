package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/governance/governor-engine/domain/entities"
	domainerrors "agora/contexts/governance/governor-engine/domain/errors"
	"agora/contexts/governance/governor-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

type dedupKey struct {
	consumerGroup string
	eventID       string
}

type powerSnapshot struct {
	effectiveFrom time.Time
	weight        uint64
}

type voteKey struct {
	proposalID uint64
	voter      string
}

// Store is the in-memory implementation of every governor-engine port. It
// backs unit tests and the NewInMemoryModule wiring; the Set* methods seed
// state that production deployments receive from external collaborators.
type Store struct {
	mu sync.RWMutex

	governor    *entities.Governor
	types       map[uint8]entities.ProposalType
	proposals   map[uint64]entities.Proposal
	votes       map[voteKey]entities.VoteRecord
	outbox      map[string]outboxRecord
	outboxOrder []string
	eventDedup  map[dedupKey]time.Time
	power       map[string][]powerSnapshot

	executedActions []string
	now             time.Time
}

func NewStore(seed []entities.Proposal) *Store {
	proposals := make(map[uint64]entities.Proposal, len(seed))
	for _, proposal := range seed {
		proposals[proposal.ID] = proposal
	}
	return &Store{
		types:      make(map[uint8]entities.ProposalType),
		proposals:  proposals,
		votes:      make(map[voteKey]entities.VoteRecord),
		outbox:     make(map[string]outboxRecord),
		eventDedup: make(map[dedupKey]time.Time),
		power:      make(map[string][]powerSnapshot),
	}
}

// SetNow pins the store clock; the zero value falls back to wall-clock UTC.
func (s *Store) SetNow(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now.UTC()
}

// SetVotingPower seeds a voting power snapshot effective from the given time.
func (s *Store) SetVotingPower(account string, effectiveFrom time.Time, weight uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account = strings.TrimSpace(account)
	snapshots := append(s.power[account], powerSnapshot{effectiveFrom: effectiveFrom.UTC(), weight: weight})
	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].effectiveFrom.Before(snapshots[j].effectiveFrom)
	})
	s.power[account] = snapshots
}

// SetProposalCanceled flips the canceled marker. No engine operation sets it;
// the flag belongs to an external moderation collaborator, and this seeder
// keeps the executed/canceled guard testable.
func (s *Store) SetProposalCanceled(proposalID uint64, canceled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return
	}
	proposal.Canceled = canceled
	s.proposals[proposalID] = proposal
}

// SetTotalSupply seeds the quorum denominator normally maintained by the
// supply consumer.
func (s *Store) SetTotalSupply(total uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.governor == nil {
		return
	}
	s.governor.TotalSupply = total
}

// ExecutedActions returns the action references dispatched through Execute.
func (s *Store) ExecutedActions() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.executedActions...)
}

func (s *Store) CreateGovernor(_ context.Context, governor entities.Governor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.governor != nil {
		return domainerrors.ErrGovernorAlreadyInitialized
	}
	copied := governor
	s.governor = &copied
	return nil
}

func (s *Store) GetGovernor(_ context.Context) (entities.Governor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.governor == nil {
		return entities.Governor{}, domainerrors.ErrGovernorNotInitialized
	}
	return *s.governor, nil
}

func (s *Store) SaveGovernor(_ context.Context, governor entities.Governor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.governor == nil {
		return domainerrors.ErrGovernorNotInitialized
	}
	copied := governor
	s.governor = &copied
	return nil
}

func (s *Store) RegisterProposalType(_ context.Context, proposalType entities.ProposalType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.types[proposalType.Code]; exists {
		return domainerrors.ErrProposalTypeExists
	}
	s.types[proposalType.Code] = proposalType
	return nil
}

func (s *Store) GetProposalType(_ context.Context, code uint8) (entities.ProposalType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposalType, ok := s.types[code]
	if !ok {
		return entities.ProposalType{}, domainerrors.ErrInvalidProposalType
	}
	return proposalType, nil
}

func (s *Store) ListProposalTypes(_ context.Context) ([]entities.ProposalType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	types := make([]entities.ProposalType, 0, len(s.types))
	for _, proposalType := range s.types {
		types = append(types, proposalType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Code < types[j].Code })
	return types, nil
}

func (s *Store) CreateProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.proposals[proposal.ID]; exists {
		return domainerrors.ErrInvalidProposalInput
	}
	s.proposals[proposal.ID] = proposal
	return nil
}

func (s *Store) GetProposal(_ context.Context, proposalID uint64) (entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposal, ok := s.proposals[proposalID]
	if !ok {
		return entities.Proposal{}, domainerrors.ErrProposalNotFound
	}
	return proposal, nil
}

func (s *Store) SaveProposal(_ context.Context, proposal entities.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[proposal.ID]; !ok {
		return domainerrors.ErrProposalNotFound
	}
	s.proposals[proposal.ID] = proposal
	return nil
}

func (s *Store) ListProposals(_ context.Context) ([]entities.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	proposals := make([]entities.Proposal, 0, len(s.proposals))
	for _, proposal := range s.proposals {
		proposals = append(proposals, proposal)
	}
	sort.Slice(proposals, func(i, j int) bool { return proposals[i].ID < proposals[j].ID })
	return proposals, nil
}

func (s *Store) CreateVote(_ context.Context, vote entities.VoteRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey{proposalID: vote.ProposalID, voter: vote.Voter}
	if _, exists := s.votes[key]; exists {
		return domainerrors.ErrDuplicateVote
	}
	s.votes[key] = vote
	return nil
}

func (s *Store) GetVote(_ context.Context, proposalID uint64, voter string) (entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voteKey{proposalID: proposalID, voter: strings.TrimSpace(voter)}]
	if !ok {
		return entities.VoteRecord{}, domainerrors.ErrVoteNotFound
	}
	return vote, nil
}

func (s *Store) ListVotesByProposal(_ context.Context, proposalID uint64) ([]entities.VoteRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	votes := make([]entities.VoteRecord, 0)
	for key, vote := range s.votes {
		if key.proposalID == proposalID {
			votes = append(votes, vote)
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].Voter < votes[j].Voter })
	return votes, nil
}

func (s *Store) WeightOf(_ context.Context, account string, at time.Time) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshots := s.power[strings.TrimSpace(account)]
	var weight uint64
	for _, snapshot := range snapshots {
		if snapshot.effectiveFrom.After(at.UTC()) {
			break
		}
		weight = snapshot.weight
	}
	return weight, nil
}

func (s *Store) Execute(_ context.Context, actionRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executedActions = append(s.executedActions, actionRef)
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[event.EventID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  event.EventID,
			EventType: event.EventType,
			Payload:   payload,
			Status:    "pending",
			CreatedAt: event.OccurredAt,
		},
	}
	s.outboxOrder = append(s.outboxOrder, event.EventID)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make([]ports.OutboxMessage, 0)
	for _, id := range s.outboxOrder {
		record, ok := s.outbox[id]
		if !ok || record.published {
			continue
		}
		pending = append(pending, record.message)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[outboxID]
	if !ok {
		return nil
	}
	record.published = true
	record.message.Status = "published"
	publishedCopy := publishedAt.UTC()
	record.message.PublishedAt = &publishedCopy
	s.outbox[outboxID] = record
	return nil
}

func (s *Store) SeenEvent(_ context.Context, consumerGroup string, eventID string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiresAt, ok := s.eventDedup[dedupKey{consumerGroup: consumerGroup, eventID: eventID}]
	if !ok {
		return false, nil
	}
	return now.Before(expiresAt), nil
}

func (s *Store) MarkEventProcessed(_ context.Context, consumerGroup string, eventID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventDedup[dedupKey{consumerGroup: consumerGroup, eventID: eventID}] = expiresAt
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.now.IsZero() {
		return time.Now().UTC()
	}
	return s.now
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
