package entities

import "time"

// MaxDescriptionLen bounds proposal descriptions at the persisted column size.
const MaxDescriptionLen = 200

type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusActive   ProposalStatus = "active"
	ProposalStatusClosed   ProposalStatus = "closed"
	ProposalStatusExecuted ProposalStatus = "executed"
	ProposalStatusCanceled ProposalStatus = "canceled"
)

// Proposal is one governance item's lifecycle record. StartTime/EndTime are
// fixed at creation; ForVotes/AgainstVotes only grow; Executed and Canceled
// are mutually exclusive terminal markers.
type Proposal struct {
	ID           uint64
	Proposer     string
	Description  string
	TypeCode     uint8
	StartTime    time.Time
	EndTime      time.Time
	ForVotes     uint64
	AgainstVotes uint64
	Executed     bool
	Canceled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StatusAt derives the lifecycle state for a reference time. Whether a closed
// proposal succeeded or was defeated is not stored; it is computed from the
// tally against the proposal type policy, see TallyAgainst.
func (p Proposal) StatusAt(now time.Time) ProposalStatus {
	switch {
	case p.Canceled:
		return ProposalStatusCanceled
	case p.Executed:
		return ProposalStatusExecuted
	case now.Before(p.StartTime):
		return ProposalStatusPending
	case now.After(p.EndTime):
		return ProposalStatusClosed
	default:
		return ProposalStatusActive
	}
}

// VotingOpenAt reports whether the voting window is open, inclusive on both
// ends.
func (p Proposal) VotingOpenAt(now time.Time) bool {
	return !now.Before(p.StartTime) && !now.After(p.EndTime)
}

// Tally is the outcome evaluation of a proposal against its type policy and
// the recorded total supply. All arithmetic is integer basis-point math with
// floor division.
type Tally struct {
	ForVotes      uint64
	AgainstVotes  uint64
	TotalCast     uint64
	QuorumNeeded  uint64
	ApprovalBps   uint64
	QuorumReached bool
	ApprovalMet   bool
}

func (t Tally) Passed() bool {
	return t.QuorumReached && t.ApprovalMet
}

// TallyAgainst evaluates the proposal tally under the given type policy.
// A proposal with zero cast votes never reaches quorum, which also keeps the
// approval fraction well-defined.
func (p Proposal) TallyAgainst(pt ProposalType, totalSupply uint64) Tally {
	tally := Tally{
		ForVotes:     p.ForVotes,
		AgainstVotes: p.AgainstVotes,
		TotalCast:    p.ForVotes + p.AgainstVotes,
		QuorumNeeded: totalSupply * uint64(pt.Quorum) / BpsDenominator,
	}
	if tally.TotalCast == 0 {
		return tally
	}
	tally.ApprovalBps = tally.ForVotes * BpsDenominator / tally.TotalCast
	tally.QuorumReached = tally.TotalCast >= tally.QuorumNeeded
	tally.ApprovalMet = tally.ApprovalBps >= uint64(pt.ApprovalThreshold)
	return tally
}
