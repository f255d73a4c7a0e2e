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

type CreateProposalCommand struct {
	Proposer    string
	Description string
	TypeCode    uint8
}

type ExecuteProposalCommand struct {
	ProposalID uint64
	Executor   string
}

// ProposalUseCase orchestrates proposal creation and execution. Every
// precondition is checked before the first write; a failed operation leaves no
// partial state behind.
type ProposalUseCase struct {
	Governors ports.GovernorRepository
	Proposals ports.ProposalRepository
	Oracle    ports.VotingPowerOracle
	Actions   ports.ActionExecutor
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

// CreateProposal allocates the next proposal id and opens a voting window
// derived from the governor's delay and period. The proposer must hold at
// least the proposal threshold of voting power at submission time; the
// governor's manager is exempt so a trusted operator can seed proposals
// before power is distributed.
func (uc ProposalUseCase) CreateProposal(ctx context.Context, cmd CreateProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	proposer := strings.TrimSpace(cmd.Proposer)
	description := strings.TrimSpace(cmd.Description)
	logger.Info("proposal create processing started",
		"event", "governance_proposal_create_started",
		"module", "governance/governor-engine",
		"layer", "application",
		"proposer", proposer,
		"type_code", cmd.TypeCode,
	)
	if proposer == "" {
		return entities.Proposal{}, domainerrors.ErrInvalidProposalInput
	}
	if description == "" || len(description) > entities.MaxDescriptionLen {
		return entities.Proposal{}, domainerrors.ErrInvalidDescription
	}

	governor, err := uc.Governors.GetGovernor(ctx)
	if err != nil {
		return entities.Proposal{}, err
	}
	if _, err := uc.Governors.GetProposalType(ctx, cmd.TypeCode); err != nil {
		logger.Warn("proposal create rejected: unknown type",
			"event", "governance_proposal_create_invalid_type",
			"module", "governance/governor-engine",
			"layer", "application",
			"proposer", proposer,
			"type_code", cmd.TypeCode,
		)
		return entities.Proposal{}, err
	}

	now := uc.now()
	if !strings.EqualFold(proposer, governor.Manager) {
		weight, err := uc.Oracle.WeightOf(ctx, proposer, now)
		if err != nil {
			logger.Error("proposer weight lookup failed",
				"event", "governance_proposer_weight_lookup_failed",
				"module", "governance/governor-engine",
				"layer", "application",
				"proposer", proposer,
				"error", err.Error(),
			)
			return entities.Proposal{}, err
		}
		if weight < governor.ProposalThreshold {
			logger.Warn("proposal create rejected: insufficient votes",
				"event", "governance_proposal_create_insufficient_votes",
				"module", "governance/governor-engine",
				"layer", "application",
				"proposer", proposer,
				"weight", weight,
				"proposal_threshold", governor.ProposalThreshold,
			)
			return entities.Proposal{}, domainerrors.ErrInsufficientProposerVotes
		}
	}

	proposal := entities.Proposal{
		ID:          governor.ProposalCount,
		Proposer:    proposer,
		Description: description,
		TypeCode:    cmd.TypeCode,
		StartTime:   now.Add(governor.VotingDelay),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	proposal.EndTime = proposal.StartTime.Add(governor.VotingPeriod)

	if err := uc.Proposals.CreateProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}
	governor.ProposalCount++
	governor.UpdatedAt = now
	if err := uc.Governors.SaveGovernor(ctx, governor); err != nil {
		return entities.Proposal{}, err
	}
	if err := uc.appendEvent(ctx, eventProposalCreated, proposal, now, map[string]any{
		"proposer":    proposal.Proposer,
		"description": proposal.Description,
		"type_code":   proposal.TypeCode,
		"start_time":  proposal.StartTime.UTC().Format(time.RFC3339),
		"end_time":    proposal.EndTime.UTC().Format(time.RFC3339),
	}); err != nil {
		return entities.Proposal{}, err
	}

	logger.Info("proposal created",
		"event", "governance_proposal_created",
		"module", "governance/governor-engine",
		"layer", "application",
		"proposal_id", proposal.ID,
		"proposer", proposal.Proposer,
		"type_code", proposal.TypeCode,
		"start_time", proposal.StartTime.UTC().Format(time.RFC3339),
		"end_time", proposal.EndTime.UTC().Format(time.RFC3339),
	)
	return proposal, nil
}

// ExecuteProposal finalizes a proposal once its window has closed. The checks
// run in a fixed order: executed, canceled, window still open, type lookup,
// quorum, approval. Only after all of them pass is the executed flag stored
// and the linked action dispatched.
func (uc ProposalUseCase) ExecuteProposal(ctx context.Context, cmd ExecuteProposalCommand) (entities.Proposal, error) {
	logger := application.ResolveLogger(uc.Logger)
	logger.Info("proposal execute processing started",
		"event", "governance_proposal_execute_started",
		"module", "governance/governor-engine",
		"layer", "application",
		"proposal_id", cmd.ProposalID,
		"executor", strings.TrimSpace(cmd.Executor),
	)

	proposal, err := uc.Proposals.GetProposal(ctx, cmd.ProposalID)
	if err != nil {
		return entities.Proposal{}, err
	}
	if proposal.Executed {
		return entities.Proposal{}, domainerrors.ErrProposalAlreadyExecuted
	}
	if proposal.Canceled {
		return entities.Proposal{}, domainerrors.ErrProposalCanceled
	}
	now := uc.now()
	if !now.After(proposal.EndTime) {
		return entities.Proposal{}, domainerrors.ErrVotingPeriodActive
	}

	governor, err := uc.Governors.GetGovernor(ctx)
	if err != nil {
		return entities.Proposal{}, err
	}
	// A registry entry that disappeared after creation is a configuration
	// fault and must surface, never default.
	proposalType, err := uc.Governors.GetProposalType(ctx, proposal.TypeCode)
	if err != nil {
		logger.Error("proposal type missing at execution",
			"event", "governance_proposal_execute_type_missing",
			"module", "governance/governor-engine",
			"layer", "application",
			"proposal_id", proposal.ID,
			"type_code", proposal.TypeCode,
		)
		return entities.Proposal{}, err
	}

	tally := proposal.TallyAgainst(proposalType, governor.TotalSupply)
	if !tally.QuorumReached {
		logger.Info("proposal execution rejected: quorum not reached",
			"event", "governance_proposal_execute_quorum_not_reached",
			"module", "governance/governor-engine",
			"layer", "application",
			"proposal_id", proposal.ID,
			"total_cast", tally.TotalCast,
			"quorum_needed", tally.QuorumNeeded,
		)
		return entities.Proposal{}, domainerrors.ErrQuorumNotReached
	}
	if !tally.ApprovalMet {
		logger.Info("proposal execution rejected: approval threshold not met",
			"event", "governance_proposal_execute_approval_not_met",
			"module", "governance/governor-engine",
			"layer", "application",
			"proposal_id", proposal.ID,
			"approval_bps", tally.ApprovalBps,
			"approval_threshold", proposalType.ApprovalThreshold,
		)
		return entities.Proposal{}, domainerrors.ErrApprovalThresholdNotMet
	}

	proposal.Executed = true
	proposal.UpdatedAt = now
	if err := uc.Proposals.SaveProposal(ctx, proposal); err != nil {
		return entities.Proposal{}, err
	}
	if err := uc.appendEvent(ctx, eventProposalExecuted, proposal, now, map[string]any{
		"for_votes":     proposal.ForVotes,
		"against_votes": proposal.AgainstVotes,
		"quorum_needed": tally.QuorumNeeded,
		"approval_bps":  tally.ApprovalBps,
	}); err != nil {
		return entities.Proposal{}, err
	}

	// The action dispatch is fire-and-forget: the executed flag above is
	// final and is not rolled back when the executor fails.
	if proposalType.ActionRef != "" && uc.Actions != nil {
		if err := uc.Actions.Execute(ctx, proposalType.ActionRef); err != nil {
			logger.Warn("proposal action execution failed",
				"event", "governance_proposal_action_failed",
				"module", "governance/governor-engine",
				"layer", "application",
				"proposal_id", proposal.ID,
				"action_ref", proposalType.ActionRef,
				"error", err.Error(),
			)
		}
	}

	logger.Info("proposal executed",
		"event", "governance_proposal_executed",
		"module", "governance/governor-engine",
		"layer", "application",
		"proposal_id", proposal.ID,
		"for_votes", proposal.ForVotes,
		"against_votes", proposal.AgainstVotes,
	)
	return proposal, nil
}

func (uc ProposalUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc ProposalUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	proposal entities.Proposal,
	occurredAt time.Time,
	data map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	data["proposal_id"] = proposal.ID
	envelope, err := newGovernanceEnvelope(eventID, eventType, proposalKey(proposal.ID), occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}
