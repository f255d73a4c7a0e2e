package errors

import "errors"

var (
	// Governor lifecycle.
	ErrGovernorNotInitialized     = errors.New("governor is not initialized")
	ErrGovernorAlreadyInitialized = errors.New("governor is already initialized")
	ErrInvalidGovernorInput       = errors.New("invalid governor input")
	ErrInvalidVotingPeriod        = errors.New("voting period must be positive")
	ErrNotAdmin                   = errors.New("actor is not the governor admin")

	// Proposal type registry.
	ErrInvalidProposalType       = errors.New("invalid proposal type")
	ErrProposalTypeExists        = errors.New("proposal type code is already registered")
	ErrInvalidProposalTypeConfig = errors.New("invalid proposal type configuration")

	// Proposal lifecycle.
	ErrInvalidProposalInput      = errors.New("invalid proposal input")
	ErrInvalidDescription        = errors.New("proposal description is empty or too long")
	ErrInsufficientProposerVotes = errors.New("proposer does not have enough votes to create a proposal")
	ErrProposalNotFound          = errors.New("proposal not found")
	ErrProposalAlreadyExecuted   = errors.New("proposal has already been executed")
	ErrProposalCanceled          = errors.New("proposal has been canceled")

	// Voting.
	ErrInvalidVoteInput     = errors.New("invalid vote input")
	ErrVotingPeriodInactive = errors.New("voting period is not active")
	ErrVotingPeriodActive   = errors.New("voting period is still active")
	ErrDuplicateVote        = errors.New("voter has already voted on this proposal")
	ErrVoteNotFound         = errors.New("vote not found")

	// Outcome evaluation.
	ErrQuorumNotReached        = errors.New("quorum not reached")
	ErrApprovalThresholdNotMet = errors.New("approval threshold not met")
)
