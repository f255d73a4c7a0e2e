package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type InitializeGovernorRequest struct {
	Admin             string `json:"admin"`
	Manager           string `json:"manager"`
	VotingDelaySecs   int64  `json:"voting_delay_secs"`
	VotingPeriodSecs  int64  `json:"voting_period_secs"`
	ProposalThreshold uint64 `json:"proposal_threshold"`
}

type ProposalTypeItem struct {
	Code        uint8  `json:"code"`
	QuorumBps   uint16 `json:"quorum_bps"`
	ApprovalBps uint16 `json:"approval_threshold_bps"`
	Name        string `json:"name"`
	ActionRef   string `json:"action_ref,omitempty"`
}

type GovernorResponse struct {
	Admin             string             `json:"admin"`
	Manager           string             `json:"manager"`
	VotingDelaySecs   int64              `json:"voting_delay_secs"`
	VotingPeriodSecs  int64              `json:"voting_period_secs"`
	ProposalThreshold uint64             `json:"proposal_threshold"`
	ProposalCount     uint64             `json:"proposal_count"`
	TotalSupply       uint64             `json:"total_supply"`
	ProposalTypes     []ProposalTypeItem `json:"proposal_types,omitempty"`
}

type RegisterProposalTypeRequest struct {
	Code        uint8  `json:"code"`
	QuorumBps   uint16 `json:"quorum_bps"`
	ApprovalBps uint16 `json:"approval_threshold_bps"`
	Name        string `json:"name"`
	ActionRef   string `json:"action_ref,omitempty"`
}

type CreateProposalRequest struct {
	Description string `json:"description"`
	TypeCode    uint8  `json:"type_code"`
}

type ProposalResponse struct {
	ProposalID   uint64 `json:"proposal_id"`
	Proposer     string `json:"proposer"`
	Description  string `json:"description"`
	TypeCode     uint8  `json:"type_code"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	ForVotes     uint64 `json:"for_votes"`
	AgainstVotes uint64 `json:"against_votes"`
	Executed     bool   `json:"executed"`
	Canceled     bool   `json:"canceled"`
	Status       string `json:"status,omitempty"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type CastVoteRequest struct {
	Support bool `json:"support"`
}

type VoteResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	Support    bool   `json:"support"`
	Weight     uint64 `json:"weight"`
	CreatedAt  string `json:"created_at"`
}

type VoteListResponse struct {
	Items []VoteResponse `json:"items"`
}

type ProposalResultsResponse struct {
	ProposalID    uint64 `json:"proposal_id"`
	Status        string `json:"status"`
	TypeCode      uint8  `json:"type_code"`
	ForVotes      uint64 `json:"for_votes"`
	AgainstVotes  uint64 `json:"against_votes"`
	TotalCast     uint64 `json:"total_cast"`
	QuorumNeeded  uint64 `json:"quorum_needed"`
	ApprovalBps   uint64 `json:"approval_bps"`
	QuorumReached bool   `json:"quorum_reached"`
	ApprovalMet   bool   `json:"approval_met"`
	Passed        bool   `json:"passed"`
}
