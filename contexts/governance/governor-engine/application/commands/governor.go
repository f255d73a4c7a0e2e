package commands

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	application "agora/contexts/governance/governor-engine/application"
	"agora/contexts/governance/governor-engine/domain/entities"
	domainerrors "agora/contexts/governance/governor-engine/domain/errors"
	"agora/contexts/governance/governor-engine/ports"
)

// InitializeGovernorCommand is the one-time deployment configuration. The
// storage layer rejects a second initialization.
type InitializeGovernorCommand struct {
	Admin             string
	Manager           string
	VotingDelay       time.Duration
	VotingPeriod      time.Duration
	ProposalThreshold uint64
}

// RegisterProposalTypeCommand adds a policy bundle to the governor's registry.
// Only the governor admin may register types.
type RegisterProposalTypeCommand struct {
	Actor             string
	Code              uint8
	Quorum            uint16
	ApprovalThreshold uint16
	Name              string
	ActionRef         string
}

// GovernorUseCase owns governor construction and registry administration.
type GovernorUseCase struct {
	Governors ports.GovernorRepository
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc GovernorUseCase) Initialize(ctx context.Context, cmd InitializeGovernorCommand) (entities.Governor, error) {
	logger := application.ResolveLogger(uc.Logger)
	admin := strings.TrimSpace(cmd.Admin)
	manager := strings.TrimSpace(cmd.Manager)
	if admin == "" || manager == "" {
		logger.Warn("governor initialize validation failed",
			"event", "governance_initialize_validation_failed",
			"module", "governance/governor-engine",
			"layer", "application",
			"admin", admin,
			"manager", manager,
		)
		return entities.Governor{}, domainerrors.ErrInvalidGovernorInput
	}
	if cmd.VotingPeriod <= 0 {
		return entities.Governor{}, domainerrors.ErrInvalidVotingPeriod
	}
	if cmd.VotingDelay < 0 {
		return entities.Governor{}, domainerrors.ErrInvalidGovernorInput
	}

	now := uc.now()
	governor := entities.Governor{
		Admin:             admin,
		Manager:           manager,
		VotingDelay:       cmd.VotingDelay,
		VotingPeriod:      cmd.VotingPeriod,
		ProposalThreshold: cmd.ProposalThreshold,
		ProposalCount:     0,
		TotalSupply:       0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.Governors.CreateGovernor(ctx, governor); err != nil {
		return entities.Governor{}, err
	}
	if err := uc.appendEvent(ctx, eventGovernorInitialized, "", now, map[string]any{
		"admin":              governor.Admin,
		"manager":            governor.Manager,
		"voting_delay":       governor.VotingDelay.String(),
		"voting_period":      governor.VotingPeriod.String(),
		"proposal_threshold": governor.ProposalThreshold,
	}); err != nil {
		return entities.Governor{}, err
	}
	logger.Info("governor initialized",
		"event", "governance_governor_initialized",
		"module", "governance/governor-engine",
		"layer", "application",
		"admin", governor.Admin,
		"manager", governor.Manager,
		"voting_delay", governor.VotingDelay.String(),
		"voting_period", governor.VotingPeriod.String(),
		"proposal_threshold", governor.ProposalThreshold,
	)
	return governor, nil
}

func (uc GovernorUseCase) RegisterProposalType(ctx context.Context, cmd RegisterProposalTypeCommand) (entities.ProposalType, error) {
	logger := application.ResolveLogger(uc.Logger)
	governor, err := uc.Governors.GetGovernor(ctx)
	if err != nil {
		return entities.ProposalType{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(cmd.Actor), governor.Admin) {
		logger.Warn("proposal type registration rejected",
			"event", "governance_proposal_type_rejected",
			"module", "governance/governor-engine",
			"layer", "application",
			"actor", strings.TrimSpace(cmd.Actor),
			"type_code", cmd.Code,
		)
		return entities.ProposalType{}, domainerrors.ErrNotAdmin
	}

	proposalType := entities.ProposalType{
		Code:              cmd.Code,
		Quorum:            cmd.Quorum,
		ApprovalThreshold: cmd.ApprovalThreshold,
		Name:              strings.TrimSpace(cmd.Name),
		ActionRef:         strings.TrimSpace(cmd.ActionRef),
		CreatedAt:         uc.now(),
	}
	if proposalType.Name == "" || !proposalType.ValidFractions() {
		return entities.ProposalType{}, domainerrors.ErrInvalidProposalTypeConfig
	}
	if err := uc.Governors.RegisterProposalType(ctx, proposalType); err != nil {
		return entities.ProposalType{}, err
	}
	if err := uc.appendEvent(ctx, eventProposalTypeRegistered, "", proposalType.CreatedAt, map[string]any{
		"type_code":          proposalType.Code,
		"quorum":             proposalType.Quorum,
		"approval_threshold": proposalType.ApprovalThreshold,
		"name":               proposalType.Name,
		"action_ref":         proposalType.ActionRef,
	}); err != nil {
		return entities.ProposalType{}, err
	}
	logger.Info("proposal type registered",
		"event", "governance_proposal_type_registered",
		"module", "governance/governor-engine",
		"layer", "application",
		"type_code", proposalType.Code,
		"quorum", proposalType.Quorum,
		"approval_threshold", proposalType.ApprovalThreshold,
		"name", proposalType.Name,
	)
	return proposalType, nil
}

func (uc GovernorUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc GovernorUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	proposalKey string,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newGovernanceEnvelope(eventID, eventType, proposalKey, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func proposalKey(proposalID uint64) string {
	return strconv.FormatUint(proposalID, 10)
}
