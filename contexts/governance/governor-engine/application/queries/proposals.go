package queries

import (
	"context"
	"sort"
	"time"

	"agora/contexts/governance/governor-engine/domain/entities"
	"agora/contexts/governance/governor-engine/ports"
)

// GovernorView pairs the governor record with its ordered type registry.
type GovernorView struct {
	Governor      entities.Governor
	ProposalTypes []entities.ProposalType
}

type ProposalView struct {
	Proposal entities.Proposal
	Status   entities.ProposalStatus
}

// ResultsView is a read-only tally preview. It applies the same arithmetic as
// execution without transitioning any state, so callers can inspect where a
// proposal stands at any point.
type ResultsView struct {
	Proposal entities.Proposal
	Status   entities.ProposalStatus
	Type     entities.ProposalType
	Tally    entities.Tally
}

type ProposalQueryUseCase struct {
	Governors ports.GovernorRepository
	Proposals ports.ProposalRepository
	Votes     ports.VoteRepository
	Clock     ports.Clock
}

func (uc ProposalQueryUseCase) GovernorInfo(ctx context.Context) (GovernorView, error) {
	governor, err := uc.Governors.GetGovernor(ctx)
	if err != nil {
		return GovernorView{}, err
	}
	types, err := uc.Governors.ListProposalTypes(ctx)
	if err != nil {
		return GovernorView{}, err
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Code < types[j].Code })
	return GovernorView{Governor: governor, ProposalTypes: types}, nil
}

func (uc ProposalQueryUseCase) GetProposal(ctx context.Context, proposalID uint64) (ProposalView, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return ProposalView{}, err
	}
	return ProposalView{Proposal: proposal, Status: proposal.StatusAt(uc.now())}, nil
}

func (uc ProposalQueryUseCase) ListProposals(ctx context.Context) ([]ProposalView, error) {
	proposals, err := uc.Proposals.ListProposals(ctx)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	sort.Slice(proposals, func(i, j int) bool { return proposals[i].ID < proposals[j].ID })
	views := make([]ProposalView, 0, len(proposals))
	for _, proposal := range proposals {
		views = append(views, ProposalView{Proposal: proposal, Status: proposal.StatusAt(now)})
	}
	return views, nil
}

func (uc ProposalQueryUseCase) ProposalResults(ctx context.Context, proposalID uint64) (ResultsView, error) {
	proposal, err := uc.Proposals.GetProposal(ctx, proposalID)
	if err != nil {
		return ResultsView{}, err
	}
	governor, err := uc.Governors.GetGovernor(ctx)
	if err != nil {
		return ResultsView{}, err
	}
	proposalType, err := uc.Governors.GetProposalType(ctx, proposal.TypeCode)
	if err != nil {
		return ResultsView{}, err
	}
	return ResultsView{
		Proposal: proposal,
		Status:   proposal.StatusAt(uc.now()),
		Type:     proposalType,
		Tally:    proposal.TallyAgainst(proposalType, governor.TotalSupply),
	}, nil
}

func (uc ProposalQueryUseCase) ListVotes(ctx context.Context, proposalID uint64) ([]entities.VoteRecord, error) {
	if _, err := uc.Proposals.GetProposal(ctx, proposalID); err != nil {
		return nil, err
	}
	votes, err := uc.Votes.ListVotesByProposal(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	sort.Slice(votes, func(i, j int) bool {
		if votes[i].CreatedAt.Equal(votes[j].CreatedAt) {
			return votes[i].Voter < votes[j].Voter
		}
		return votes[i].CreatedAt.Before(votes[j].CreatedAt)
	})
	return votes, nil
}

func (uc ProposalQueryUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
