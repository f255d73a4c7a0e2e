package entities

import "time"

// VoteRecord is the immutable decision of one voter on one proposal. Weight is
// the voter's power snapshotted at the proposal's StartTime, so every vote on
// a proposal is comparable regardless of when it was cast inside the window.
// At most one record exists per (voter, proposal) pair.
type VoteRecord struct {
	Voter      string
	ProposalID uint64
	Support    bool
	Weight     uint64
	CreatedAt  time.Time
}
