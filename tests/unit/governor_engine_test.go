package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	governorengine "agora/contexts/governance/governor-engine"
	domainerrors "agora/contexts/governance/governor-engine/domain/errors"
	httptransport "agora/contexts/governance/governor-engine/transport/http"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newGovernedModule(t *testing.T) governorengine.Module {
	t.Helper()
	module := governorengine.NewInMemoryModule(nil, nil)
	module.Store.SetNow(baseTime)

	_, err := module.Handler.InitializeGovernorHandler(context.Background(), "admin-1", httptransport.InitializeGovernorRequest{
		Admin:             "admin-1",
		Manager:           "manager-1",
		VotingDelaySecs:   60,
		VotingPeriodSecs:  3600,
		ProposalThreshold: 10,
	})
	if err != nil {
		t.Fatalf("initialize governor failed: %v", err)
	}
	module.Store.SetTotalSupply(1000)

	_, err = module.Handler.RegisterProposalTypeHandler(context.Background(), "admin-1", httptransport.RegisterProposalTypeRequest{
		Code:        1,
		QuorumBps:   2000,
		ApprovalBps: 5000,
		Name:        "treasury",
		ActionRef:   "action://treasury/disburse",
	})
	if err != nil {
		t.Fatalf("register proposal type failed: %v", err)
	}
	return module
}

func TestGovernorProposalLifecyclePasses(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("alice", baseTime.Add(-time.Hour), 50)
	module.Store.SetVotingPower("bob", baseTime.Add(-time.Hour), 150)
	module.Store.SetVotingPower("carol", baseTime.Add(-time.Hour), 100)

	proposal, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: "Fund the security audit",
		TypeCode:    1,
	})
	if err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}
	if proposal.ProposalID != 0 {
		t.Fatalf("expected first proposal id 0, got %d", proposal.ProposalID)
	}

	governor, err := module.Handler.GovernorInfoHandler(context.Background())
	if err != nil {
		t.Fatalf("governor info failed: %v", err)
	}
	if governor.ProposalCount != 1 {
		t.Fatalf("expected proposal count 1, got %d", governor.ProposalCount)
	}

	module.Store.SetNow(baseTime.Add(2 * time.Minute))
	forVote, err := module.Handler.CastVoteHandler(context.Background(), "bob", 0, httptransport.CastVoteRequest{Support: true})
	if err != nil {
		t.Fatalf("cast support vote failed: %v", err)
	}
	if forVote.Weight != 150 {
		t.Fatalf("expected bob weight 150, got %d", forVote.Weight)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), "carol", 0, httptransport.CastVoteRequest{Support: false}); err != nil {
		t.Fatalf("cast against vote failed: %v", err)
	}

	if _, err := module.Handler.CastVoteHandler(context.Background(), "bob", 0, httptransport.CastVoteRequest{Support: false}); !errors.Is(err, domainerrors.ErrDuplicateVote) {
		t.Fatalf("expected duplicate vote error, got %v", err)
	}

	results, err := module.Handler.ProposalResultsHandler(context.Background(), 0)
	if err != nil {
		t.Fatalf("proposal results failed: %v", err)
	}
	if results.ForVotes != 150 || results.AgainstVotes != 100 {
		t.Fatalf("duplicate vote mutated tallies: %d for, %d against", results.ForVotes, results.AgainstVotes)
	}
	if results.QuorumNeeded != 200 {
		t.Fatalf("expected quorum needed 200, got %d", results.QuorumNeeded)
	}
	if results.ApprovalBps != 6000 {
		t.Fatalf("expected approval 6000 bps, got %d", results.ApprovalBps)
	}

	module.Store.SetNow(baseTime.Add(time.Minute + time.Hour + time.Second))
	executed, err := module.Handler.ExecuteProposalHandler(context.Background(), "admin-1", 0)
	if err != nil {
		t.Fatalf("execute proposal failed: %v", err)
	}
	if !executed.Executed {
		t.Fatalf("expected executed proposal")
	}
	actions := module.Store.ExecutedActions()
	if len(actions) != 1 || actions[0] != "action://treasury/disburse" {
		t.Fatalf("expected dispatched treasury action, got %v", actions)
	}

	if _, err := module.Handler.ExecuteProposalHandler(context.Background(), "admin-1", 0); !errors.Is(err, domainerrors.ErrProposalAlreadyExecuted) {
		t.Fatalf("expected already executed error, got %v", err)
	}
}

func TestGovernorQuorumNotReached(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("alice", baseTime.Add(-time.Hour), 50)
	module.Store.SetVotingPower("bob", baseTime.Add(-time.Hour), 40)

	if _, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: "Rotate the multisig keys",
		TypeCode:    1,
	}); err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}

	module.Store.SetNow(baseTime.Add(2 * time.Minute))
	if _, err := module.Handler.CastVoteHandler(context.Background(), "bob", 0, httptransport.CastVoteRequest{Support: true}); err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}

	module.Store.SetNow(baseTime.Add(2 * time.Hour))
	if _, err := module.Handler.ExecuteProposalHandler(context.Background(), "admin-1", 0); !errors.Is(err, domainerrors.ErrQuorumNotReached) {
		t.Fatalf("expected quorum error, got %v", err)
	}
}

func TestGovernorApprovalThresholdNotMet(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("alice", baseTime.Add(-time.Hour), 50)
	module.Store.SetVotingPower("bob", baseTime.Add(-time.Hour), 120)
	module.Store.SetVotingPower("carol", baseTime.Add(-time.Hour), 130)

	if _, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: "Raise the platform fee",
		TypeCode:    1,
	}); err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}

	module.Store.SetNow(baseTime.Add(2 * time.Minute))
	if _, err := module.Handler.CastVoteHandler(context.Background(), "bob", 0, httptransport.CastVoteRequest{Support: true}); err != nil {
		t.Fatalf("cast support vote failed: %v", err)
	}
	if _, err := module.Handler.CastVoteHandler(context.Background(), "carol", 0, httptransport.CastVoteRequest{Support: false}); err != nil {
		t.Fatalf("cast against vote failed: %v", err)
	}

	module.Store.SetNow(baseTime.Add(2 * time.Hour))
	if _, err := module.Handler.ExecuteProposalHandler(context.Background(), "admin-1", 0); !errors.Is(err, domainerrors.ErrApprovalThresholdNotMet) {
		t.Fatalf("expected approval threshold error, got %v", err)
	}
}

func TestGovernorZeroCastNeverPasses(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("alice", baseTime.Add(-time.Hour), 50)

	if _, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: "Unopposed but unattended",
		TypeCode:    1,
	}); err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}

	module.Store.SetNow(baseTime.Add(2 * time.Hour))
	if _, err := module.Handler.ExecuteProposalHandler(context.Background(), "admin-1", 0); !errors.Is(err, domainerrors.ErrQuorumNotReached) {
		t.Fatalf("expected quorum error for zero cast votes, got %v", err)
	}
}

func TestGovernorManagerBypassesThreshold(t *testing.T) {
	module := newGovernedModule(t)

	proposal, err := module.Handler.CreateProposalHandler(context.Background(), "manager-1", httptransport.CreateProposalRequest{
		Description: "Bootstrap proposal before power distribution",
		TypeCode:    1,
	})
	if err != nil {
		t.Fatalf("manager proposal failed: %v", err)
	}
	if proposal.Proposer != "manager-1" {
		t.Fatalf("unexpected proposer %s", proposal.Proposer)
	}
}

func TestGovernorInsufficientProposerVotes(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("dave", baseTime.Add(-time.Hour), 9)

	if _, err := module.Handler.CreateProposalHandler(context.Background(), "dave", httptransport.CreateProposalRequest{
		Description: "Below the proposal threshold",
		TypeCode:    1,
	}); !errors.Is(err, domainerrors.ErrInsufficientProposerVotes) {
		t.Fatalf("expected insufficient proposer votes, got %v", err)
	}
}

func TestGovernorUnknownTypeRejectedBeforePowerCheck(t *testing.T) {
	module := newGovernedModule(t)

	if _, err := module.Handler.CreateProposalHandler(context.Background(), "powerless", httptransport.CreateProposalRequest{
		Description: "Uses a type nobody registered",
		TypeCode:    9,
	}); !errors.Is(err, domainerrors.ErrInvalidProposalType) {
		t.Fatalf("expected invalid proposal type, got %v", err)
	}
}

func TestGovernorVotingWindowEdges(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("alice", baseTime.Add(-time.Hour), 50)
	module.Store.SetVotingPower("bob", baseTime.Add(-time.Hour), 30)
	module.Store.SetVotingPower("carol", baseTime.Add(-time.Hour), 30)
	module.Store.SetVotingPower("dave", baseTime.Add(-time.Hour), 30)

	if _, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: "Window edge proposal",
		TypeCode:    1,
	}); err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}
	start := baseTime.Add(time.Minute)
	end := start.Add(time.Hour)

	module.Store.SetNow(start.Add(-time.Second))
	if _, err := module.Handler.CastVoteHandler(context.Background(), "bob", 0, httptransport.CastVoteRequest{Support: true}); !errors.Is(err, domainerrors.ErrVotingPeriodInactive) {
		t.Fatalf("expected closed window before start, got %v", err)
	}

	module.Store.SetNow(start)
	if _, err := module.Handler.CastVoteHandler(context.Background(), "bob", 0, httptransport.CastVoteRequest{Support: true}); err != nil {
		t.Fatalf("vote at exact start failed: %v", err)
	}

	module.Store.SetNow(end)
	if _, err := module.Handler.CastVoteHandler(context.Background(), "carol", 0, httptransport.CastVoteRequest{Support: true}); err != nil {
		t.Fatalf("vote at exact end failed: %v", err)
	}
	if _, err := module.Handler.ExecuteProposalHandler(context.Background(), "admin-1", 0); !errors.Is(err, domainerrors.ErrVotingPeriodActive) {
		t.Fatalf("expected active window error at end boundary, got %v", err)
	}

	module.Store.SetNow(end.Add(time.Second))
	if _, err := module.Handler.CastVoteHandler(context.Background(), "dave", 0, httptransport.CastVoteRequest{Support: true}); !errors.Is(err, domainerrors.ErrVotingPeriodInactive) {
		t.Fatalf("expected closed window after end, got %v", err)
	}
}

func TestGovernorWeightSnapshotAtProposalStart(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("alice", baseTime.Add(-time.Hour), 50)
	module.Store.SetVotingPower("bob", baseTime.Add(-time.Hour), 10)

	if _, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: "Snapshot fixed at window open",
		TypeCode:    1,
	}); err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}

	// Power acquired after the window opened must not count.
	module.Store.SetVotingPower("bob", baseTime.Add(10*time.Minute), 500)

	module.Store.SetNow(baseTime.Add(30 * time.Minute))
	vote, err := module.Handler.CastVoteHandler(context.Background(), "bob", 0, httptransport.CastVoteRequest{Support: true})
	if err != nil {
		t.Fatalf("cast vote failed: %v", err)
	}
	if vote.Weight != 10 {
		t.Fatalf("expected snapshot weight 10, got %d", vote.Weight)
	}
}

func TestGovernorCanceledProposalNotExecutable(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("alice", baseTime.Add(-time.Hour), 50)

	if _, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: "Withdrawn by moderation",
		TypeCode:    1,
	}); err != nil {
		t.Fatalf("create proposal failed: %v", err)
	}
	module.Store.SetProposalCanceled(0, true)

	module.Store.SetNow(baseTime.Add(2 * time.Hour))
	if _, err := module.Handler.ExecuteProposalHandler(context.Background(), "admin-1", 0); !errors.Is(err, domainerrors.ErrProposalCanceled) {
		t.Fatalf("expected canceled proposal error, got %v", err)
	}
}

func TestGovernorRejectsNonAdminTypeRegistration(t *testing.T) {
	module := newGovernedModule(t)

	if _, err := module.Handler.RegisterProposalTypeHandler(context.Background(), "mallory", httptransport.RegisterProposalTypeRequest{
		Code:        7,
		QuorumBps:   1000,
		ApprovalBps: 5000,
		Name:        "rogue",
	}); !errors.Is(err, domainerrors.ErrNotAdmin) {
		t.Fatalf("expected not admin error, got %v", err)
	}
}

func TestGovernorSecondInitializeRejected(t *testing.T) {
	module := newGovernedModule(t)

	if _, err := module.Handler.InitializeGovernorHandler(context.Background(), "admin-2", httptransport.InitializeGovernorRequest{
		Admin:            "admin-2",
		Manager:          "manager-2",
		VotingPeriodSecs: 600,
	}); !errors.Is(err, domainerrors.ErrGovernorAlreadyInitialized) {
		t.Fatalf("expected already initialized error, got %v", err)
	}
}

func TestGovernorDescriptionBounds(t *testing.T) {
	module := newGovernedModule(t)
	module.Store.SetVotingPower("alice", baseTime.Add(-time.Hour), 50)

	long := make([]byte, 201)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: string(long),
		TypeCode:    1,
	}); !errors.Is(err, domainerrors.ErrInvalidDescription) {
		t.Fatalf("expected invalid description for 201 chars, got %v", err)
	}
	if _, err := module.Handler.CreateProposalHandler(context.Background(), "alice", httptransport.CreateProposalRequest{
		Description: string(long[:200]),
		TypeCode:    1,
	}); err != nil {
		t.Fatalf("expected 200 char description accepted, got %v", err)
	}
}
