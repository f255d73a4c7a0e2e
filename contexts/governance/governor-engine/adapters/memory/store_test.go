package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/governance/governor-engine/domain/entities"
	domainerrors "agora/contexts/governance/governor-engine/domain/errors"
	"agora/contexts/governance/governor-engine/ports"
)

func TestStoreWeightOfPicksLatestSnapshotAtOrBefore(t *testing.T) {
	store := NewStore(nil)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	store.SetVotingPower("alice", base, 10)
	store.SetVotingPower("alice", base.Add(time.Hour), 40)
	store.SetVotingPower("alice", base.Add(2*time.Hour), 25)

	cases := []struct {
		at     time.Time
		weight uint64
	}{
		{base.Add(-time.Minute), 0},
		{base, 10},
		{base.Add(90 * time.Minute), 40},
		{base.Add(2 * time.Hour), 25},
		{base.Add(24 * time.Hour), 25},
	}
	for _, tc := range cases {
		weight, err := store.WeightOf(context.Background(), "alice", tc.at)
		if err != nil {
			t.Fatalf("weight lookup at %s failed: %v", tc.at, err)
		}
		if weight != tc.weight {
			t.Fatalf("weight at %s: expected %d, got %d", tc.at, tc.weight, weight)
		}
	}

	weight, err := store.WeightOf(context.Background(), "nobody", base)
	if err != nil {
		t.Fatalf("unknown account lookup failed: %v", err)
	}
	if weight != 0 {
		t.Fatalf("expected zero weight for unknown account, got %d", weight)
	}
}

func TestStoreSingleGovernorRow(t *testing.T) {
	store := NewStore(nil)
	governor := entities.Governor{Admin: "admin-1", Manager: "manager-1", VotingPeriod: time.Hour}

	if err := store.CreateGovernor(context.Background(), governor); err != nil {
		t.Fatalf("create governor failed: %v", err)
	}
	if err := store.CreateGovernor(context.Background(), governor); !errors.Is(err, domainerrors.ErrGovernorAlreadyInitialized) {
		t.Fatalf("expected already initialized, got %v", err)
	}
}

func TestStoreRejectsDuplicateVotePerProposal(t *testing.T) {
	store := NewStore(nil)
	vote := entities.VoteRecord{Voter: "bob", ProposalID: 1, Support: true, Weight: 5}

	if err := store.CreateVote(context.Background(), vote); err != nil {
		t.Fatalf("create vote failed: %v", err)
	}
	if err := store.CreateVote(context.Background(), vote); !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected duplicate vote, got %v", err)
	}

	// Same voter on a different proposal is a distinct record.
	other := vote
	other.ProposalID = 2
	if err := store.CreateVote(context.Background(), other); err != nil {
		t.Fatalf("vote on second proposal failed: %v", err)
	}
}

func TestStoreOutboxPendingOrderAndPublish(t *testing.T) {
	store := NewStore(nil)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for _, id := range []string{"event-a", "event-b", "event-c"} {
		if err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:    id,
			EventType:  "governance.vote_cast",
			OccurredAt: now,
		}); err != nil {
			t.Fatalf("append outbox %s failed: %v", id, err)
		}
	}

	pending, err := store.ListPendingOutbox(context.Background(), 2)
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if len(pending) != 2 || pending[0].OutboxID != "event-a" || pending[1].OutboxID != "event-b" {
		t.Fatalf("expected first two rows in append order, got %+v", pending)
	}

	if err := store.MarkOutboxPublished(context.Background(), "event-a", now.Add(time.Minute)); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}
	pending, err = store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending after publish failed: %v", err)
	}
	if len(pending) != 2 || pending[0].OutboxID != "event-b" {
		t.Fatalf("expected published row excluded, got %+v", pending)
	}
}

func TestStoreEventDedupHonorsExpiry(t *testing.T) {
	store := NewStore(nil)
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	seen, err := store.SeenEvent(context.Background(), "cg", "event-1", now)
	if err != nil || seen {
		t.Fatalf("expected unseen event, got seen=%v err=%v", seen, err)
	}
	if err := store.MarkEventProcessed(context.Background(), "cg", "event-1", now.Add(time.Hour)); err != nil {
		t.Fatalf("mark processed failed: %v", err)
	}
	seen, err = store.SeenEvent(context.Background(), "cg", "event-1", now.Add(30*time.Minute))
	if err != nil || !seen {
		t.Fatalf("expected seen inside ttl, got seen=%v err=%v", seen, err)
	}
	seen, err = store.SeenEvent(context.Background(), "cg", "event-1", now.Add(2*time.Hour))
	if err != nil || seen {
		t.Fatalf("expected expired entry unseen, got seen=%v err=%v", seen, err)
	}
}
