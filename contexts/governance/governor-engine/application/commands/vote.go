package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "agora/contexts/governance/governor-engine/application"
	"agora/contexts/governance/governor-engine/domain/entities"
	domainerrors "agora/contexts/governance/governor-engine/domain/errors"
	"agora/contexts/governance/governor-engine/ports"
)

type CastVoteCommand struct {
	ProposalID uint64
	Voter      string
	Support    bool
}

// VoteUseCase records voter decisions inside a proposal's voting window.
type VoteUseCase struct {
	Proposals ports.ProposalRepository
	Votes     ports.VoteRepository
	Oracle    ports.VotingPowerOracle
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// CastVote snapshots the voter's weight at the proposal's StartTime and adds
// it to the matching tally. The vote record is inserted before the tally is
// updated, so a duplicate vote is rejected by the uniqueness gate with no
// partial effect. A zero-weight vote is recorded and contributes nothing.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (entities.VoteRecord, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.Voter)
	logger.Info("vote cast processing started",
		"event", "governance_vote_cast_started",
		"module", "governance/governor-engine",
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"voter", voter,
		"support", cmd.Support,
	)
	if voter == "" {
		return entities.VoteRecord{}, domainerrors.ErrInvalidVoteInput
	}

	proposal, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return entities.VoteRecord{}, err
	}
	now := uc.now()
	if !proposal.VotingOpenAt(now) {
		logger.Warn("vote cast rejected: window closed",
			"event", "governance_vote_cast_window_closed",
			"module", "governance/governor-engine",
			"layer", "application",
			"proposal_id", proposal.ID,
			"voter", voter,
			"start_time", proposal.StartTime.UTC().Format(time.RFC3339),
			"end_time", proposal.EndTime.UTC().Format(time.RFC3339),
		)
		return entities.VoteRecord{}, domainerrors.ErrVotingPeriodInactive
	}

	weight, err := uc.Oracle.WeightOf(ctx, voter, proposal.StartTime)
	if err != nil {
		logger.Error("voter weight lookup failed",
			"event", "governance_voter_weight_lookup_failed",
			"module", "governance/governor-engine",
			"layer", "application",
			"proposal_id", proposal.ID,
			"voter", voter,
			"error", err.Error(),
		)
		return entities.VoteRecord{}, err
	}

	vote := entities.VoteRecord{
		Voter:      voter,
		ProposalID: proposal.ID,
		Support:    cmd.Support,
		Weight:     weight,
		CreatedAt:  now,
	}
	if err := uc.Votes.CreateVote(ctx, vote); err != nil {
		return entities.VoteRecord{}, err
	}

	if cmd.Support {
		proposal.ForVotes += weight
	} else {
		proposal.AgainstVotes += weight
	}
	proposal.UpdatedAt = now
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return entities.VoteRecord{}, err
	}
	if err := uc.appendEvent(ctx, vote, now); err != nil {
		return entities.VoteRecord{}, err
	}

	logger.Info("vote cast",
		"event", "governance_vote_cast",
		"module", "governance/governor-engine",
		"layer", "application",
		"proposal_id", vote.ProposalID,
		"voter", vote.Voter,
		"support", vote.Support,
		"weight", vote.Weight,
	)
	return vote, nil
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc VoteUseCase) appendEvent(ctx context.Context, vote entities.VoteRecord, occurredAt time.Time) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newGovernanceEnvelope(eventID, eventVoteCast, proposalKey(vote.ProposalID), occurredAt, map[string]any{
		"proposal_id": vote.ProposalID,
		"voter":       vote.Voter,
		"support":     vote.Support,
		"weight":      vote.Weight,
	})
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
