package entities

import (
	"testing"
	"time"
)

func TestTallyAgainstFloorDivision(t *testing.T) {
	proposal := Proposal{ForVotes: 2, AgainstVotes: 1}
	policy := ProposalType{Quorum: 2500, ApprovalThreshold: 6666}

	tally := proposal.TallyAgainst(policy, 1001)
	if tally.QuorumNeeded != 250 {
		t.Fatalf("expected quorum needed 250, got %d", tally.QuorumNeeded)
	}
	if tally.ApprovalBps != 6666 {
		t.Fatalf("expected approval 6666 bps, got %d", tally.ApprovalBps)
	}
	if !tally.ApprovalMet {
		t.Fatalf("expected approval met at exact threshold")
	}
	if tally.QuorumReached {
		t.Fatalf("expected quorum missed with 3 of 250 cast")
	}
}

func TestTallyQuorumAtExactBoundary(t *testing.T) {
	proposal := Proposal{ForVotes: 150, AgainstVotes: 50}
	policy := ProposalType{Quorum: 2000, ApprovalThreshold: 5000}

	tally := proposal.TallyAgainst(policy, 1000)
	if tally.QuorumNeeded != 200 {
		t.Fatalf("expected quorum needed 200, got %d", tally.QuorumNeeded)
	}
	if !tally.QuorumReached {
		t.Fatalf("expected quorum reached with exactly 200 cast")
	}
	if !tally.Passed() {
		t.Fatalf("expected proposal passed at both boundaries")
	}
}

func TestTallyZeroCastNeverReachesQuorum(t *testing.T) {
	proposal := Proposal{}
	policy := ProposalType{Quorum: 0, ApprovalThreshold: 0}

	tally := proposal.TallyAgainst(policy, 1000)
	if tally.QuorumReached || tally.ApprovalMet || tally.Passed() {
		t.Fatalf("expected zero-cast tally to fail even with zero thresholds: %+v", tally)
	}
	if tally.ApprovalBps != 0 {
		t.Fatalf("expected zero approval fraction, got %d", tally.ApprovalBps)
	}
}

func TestStatusAtTransitions(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	proposal := Proposal{StartTime: start, EndTime: end}

	if got := proposal.StatusAt(start.Add(-time.Second)); got != ProposalStatusPending {
		t.Fatalf("expected pending before start, got %s", got)
	}
	if got := proposal.StatusAt(start); got != ProposalStatusActive {
		t.Fatalf("expected active at start, got %s", got)
	}
	if got := proposal.StatusAt(end); got != ProposalStatusActive {
		t.Fatalf("expected active at end, got %s", got)
	}
	if got := proposal.StatusAt(end.Add(time.Second)); got != ProposalStatusClosed {
		t.Fatalf("expected closed after end, got %s", got)
	}

	proposal.Executed = true
	if got := proposal.StatusAt(start); got != ProposalStatusExecuted {
		t.Fatalf("expected executed status, got %s", got)
	}
	proposal.Canceled = true
	if got := proposal.StatusAt(start); got != ProposalStatusCanceled {
		t.Fatalf("expected canceled to win over executed, got %s", got)
	}
}

func TestVotingOpenAtInclusiveEdges(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	proposal := Proposal{StartTime: start, EndTime: end}

	cases := []struct {
		at   time.Time
		open bool
	}{
		{start.Add(-time.Nanosecond), false},
		{start, true},
		{start.Add(30 * time.Minute), true},
		{end, true},
		{end.Add(time.Nanosecond), false},
	}
	for _, tc := range cases {
		if got := proposal.VotingOpenAt(tc.at); got != tc.open {
			t.Fatalf("window open at %s: expected %v, got %v", tc.at, tc.open, got)
		}
	}
}

func TestProposalTypeValidFractions(t *testing.T) {
	if !(ProposalType{Quorum: 10000, ApprovalThreshold: 10000}).ValidFractions() {
		t.Fatalf("expected full-denominator fractions to be valid")
	}
	if (ProposalType{Quorum: 10001}).ValidFractions() {
		t.Fatalf("expected quorum above denominator to be invalid")
	}
	if (ProposalType{ApprovalThreshold: 10001}).ValidFractions() {
		t.Fatalf("expected approval above denominator to be invalid")
	}
}
