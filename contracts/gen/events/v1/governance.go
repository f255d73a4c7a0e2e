package v1

// Payload shapes carried in Envelope.Data for governance topics.
// This package is generated-contract-only and must stay backward compatible.

// GovernorInitialized is published on "governance.governor_initialized".
type GovernorInitialized struct {
	Admin             string `json:"admin"`
	Manager           string `json:"manager"`
	VotingDelay       string `json:"voting_delay"`
	VotingPeriod      string `json:"voting_period"`
	ProposalThreshold uint64 `json:"proposal_threshold"`
}

// ProposalTypeRegistered is published on "governance.proposal_type_registered".
type ProposalTypeRegistered struct {
	TypeCode          uint8  `json:"type_code"`
	Quorum            uint16 `json:"quorum"`
	ApprovalThreshold uint16 `json:"approval_threshold"`
	Name              string `json:"name"`
	ActionRef         string `json:"action_ref"`
}

// ProposalCreated is published on "governance.proposal_created".
type ProposalCreated struct {
	ProposalID  uint64 `json:"proposal_id"`
	Proposer    string `json:"proposer"`
	Description string `json:"description"`
	TypeCode    uint8  `json:"type_code"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// VoteCast is published on "governance.vote_cast".
type VoteCast struct {
	ProposalID uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	Support    bool   `json:"support"`
	Weight     uint64 `json:"weight"`
}

// ProposalExecuted is published on "governance.proposal_executed".
type ProposalExecuted struct {
	ProposalID   uint64 `json:"proposal_id"`
	ForVotes     uint64 `json:"for_votes"`
	AgainstVotes uint64 `json:"against_votes"`
	QuorumNeeded uint64 `json:"quorum_needed"`
	ApprovalBps  uint64 `json:"approval_bps"`
}

// SupplyUpdated is consumed from "token.supply_updated".
type SupplyUpdated struct {
	TotalSupply uint64 `json:"total_supply"`
}
