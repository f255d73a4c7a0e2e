package entities

import "time"

// Governor is the per-deployment root of the governance engine. It owns the
// proposal type registry, issues sequential proposal ids, and carries the
// timing policy every proposal inherits at creation.
type Governor struct {
	Admin             string
	Manager           string
	VotingDelay       time.Duration
	VotingPeriod      time.Duration
	ProposalThreshold uint64
	ProposalCount     uint64
	TotalSupply       uint64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BpsDenominator is the denominator for all fractional policy parameters.
// Quorum and approval thresholds are expressed in parts per 10000.
const BpsDenominator = 10000

// ProposalType is a named policy bundle selectable per proposal. Quorum and
// ApprovalThreshold are basis points (0..10000). ActionRef optionally names an
// external action carried out when a proposal of this type passes.
type ProposalType struct {
	Code              uint8
	Quorum            uint16
	ApprovalThreshold uint16
	Name              string
	ActionRef         string
	CreatedAt         time.Time
}

func (pt ProposalType) ValidFractions() bool {
	return pt.Quorum <= BpsDenominator && pt.ApprovalThreshold <= BpsDenominator
}
