package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/governance/governor-engine/application/commands"
	"agora/contexts/governance/governor-engine/application/queries"
	"agora/contexts/governance/governor-engine/domain/entities"
	httptransport "agora/contexts/governance/governor-engine/transport/http"
)

// Handler maps transport DTOs onto use case commands and back. Caller
// identity arrives pre-authenticated from the HTTP layer.
type Handler struct {
	Governor  commands.GovernorUseCase
	Proposals commands.ProposalUseCase
	Votes     commands.VoteUseCase
	Queries   queries.ProposalQueryUseCase
	Logger    *slog.Logger
}

func (h Handler) InitializeGovernorHandler(
	ctx context.Context,
	actorID string,
	req httptransport.InitializeGovernorRequest,
) (httptransport.GovernorResponse, error) {
	admin := req.Admin
	if admin == "" {
		admin = actorID
	}
	governor, err := h.Governor.Initialize(ctx, commands.InitializeGovernorCommand{
		Admin:             admin,
		Manager:           req.Manager,
		VotingDelay:       time.Duration(req.VotingDelaySecs) * time.Second,
		VotingPeriod:      time.Duration(req.VotingPeriodSecs) * time.Second,
		ProposalThreshold: req.ProposalThreshold,
	})
	if err != nil {
		return httptransport.GovernorResponse{}, err
	}
	return governorResponse(governor, nil), nil
}

func (h Handler) GovernorInfoHandler(ctx context.Context) (httptransport.GovernorResponse, error) {
	view, err := h.Queries.GovernorInfo(ctx)
	if err != nil {
		return httptransport.GovernorResponse{}, err
	}
	return governorResponse(view.Governor, view.ProposalTypes), nil
}

func (h Handler) RegisterProposalTypeHandler(
	ctx context.Context,
	actorID string,
	req httptransport.RegisterProposalTypeRequest,
) (httptransport.ProposalTypeItem, error) {
	proposalType, err := h.Governor.RegisterProposalType(ctx, commands.RegisterProposalTypeCommand{
		Actor:             actorID,
		Code:              req.Code,
		Quorum:            req.QuorumBps,
		ApprovalThreshold: req.ApprovalBps,
		Name:              req.Name,
		ActionRef:         req.ActionRef,
	})
	if err != nil {
		return httptransport.ProposalTypeItem{}, err
	}
	return proposalTypeItem(proposalType), nil
}

func (h Handler) CreateProposalHandler(
	ctx context.Context,
	proposerID string,
	req httptransport.CreateProposalRequest,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.CreateProposal(ctx, commands.CreateProposalCommand{
		Proposer:    proposerID,
		Description: req.Description,
		TypeCode:    req.TypeCode,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return proposalResponse(proposal, ""), nil
}

func (h Handler) GetProposalHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResponse, error) {
	view, err := h.Queries.GetProposal(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return proposalResponse(view.Proposal, string(view.Status)), nil
}

func (h Handler) ListProposalsHandler(ctx context.Context) (httptransport.ProposalListResponse, error) {
	views, err := h.Queries.ListProposals(ctx)
	if err != nil {
		return httptransport.ProposalListResponse{}, err
	}
	items := make([]httptransport.ProposalResponse, 0, len(views))
	for _, view := range views {
		items = append(items, proposalResponse(view.Proposal, string(view.Status)))
	}
	return httptransport.ProposalListResponse{Items: items}, nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	voterID string,
	proposalID uint64,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		ProposalID: proposalID,
		Voter:      voterID,
		Support:    req.Support,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return voteResponse(vote), nil
}

func (h Handler) ListVotesHandler(ctx context.Context, proposalID uint64) (httptransport.VoteListResponse, error) {
	votes, err := h.Queries.ListVotes(ctx, proposalID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, voteResponse(vote))
	}
	return httptransport.VoteListResponse{Items: items}, nil
}

func (h Handler) ExecuteProposalHandler(
	ctx context.Context,
	executorID string,
	proposalID uint64,
) (httptransport.ProposalResponse, error) {
	proposal, err := h.Proposals.ExecuteProposal(ctx, commands.ExecuteProposalCommand{
		ProposalID: proposalID,
		Executor:   executorID,
	})
	if err != nil {
		return httptransport.ProposalResponse{}, err
	}
	return proposalResponse(proposal, string(entities.ProposalStatusExecuted)), nil
}

func (h Handler) ProposalResultsHandler(ctx context.Context, proposalID uint64) (httptransport.ProposalResultsResponse, error) {
	view, err := h.Queries.ProposalResults(ctx, proposalID)
	if err != nil {
		return httptransport.ProposalResultsResponse{}, err
	}
	return httptransport.ProposalResultsResponse{
		ProposalID:    view.Proposal.ID,
		Status:        string(view.Status),
		TypeCode:      view.Type.Code,
		ForVotes:      view.Tally.ForVotes,
		AgainstVotes:  view.Tally.AgainstVotes,
		TotalCast:     view.Tally.TotalCast,
		QuorumNeeded:  view.Tally.QuorumNeeded,
		ApprovalBps:   view.Tally.ApprovalBps,
		QuorumReached: view.Tally.QuorumReached,
		ApprovalMet:   view.Tally.ApprovalMet,
		Passed:        view.Tally.Passed(),
	}, nil
}

func governorResponse(governor entities.Governor, types []entities.ProposalType) httptransport.GovernorResponse {
	items := make([]httptransport.ProposalTypeItem, 0, len(types))
	for _, proposalType := range types {
		items = append(items, proposalTypeItem(proposalType))
	}
	return httptransport.GovernorResponse{
		Admin:             governor.Admin,
		Manager:           governor.Manager,
		VotingDelaySecs:   int64(governor.VotingDelay / time.Second),
		VotingPeriodSecs:  int64(governor.VotingPeriod / time.Second),
		ProposalThreshold: governor.ProposalThreshold,
		ProposalCount:     governor.ProposalCount,
		TotalSupply:       governor.TotalSupply,
		ProposalTypes:     items,
	}
}

func proposalTypeItem(proposalType entities.ProposalType) httptransport.ProposalTypeItem {
	return httptransport.ProposalTypeItem{
		Code:        proposalType.Code,
		QuorumBps:   proposalType.Quorum,
		ApprovalBps: proposalType.ApprovalThreshold,
		Name:        proposalType.Name,
		ActionRef:   proposalType.ActionRef,
	}
}

func proposalResponse(proposal entities.Proposal, status string) httptransport.ProposalResponse {
	return httptransport.ProposalResponse{
		ProposalID:   proposal.ID,
		Proposer:     proposal.Proposer,
		Description:  proposal.Description,
		TypeCode:     proposal.TypeCode,
		StartTime:    proposal.StartTime.UTC().Format(time.RFC3339),
		EndTime:      proposal.EndTime.UTC().Format(time.RFC3339),
		ForVotes:     proposal.ForVotes,
		AgainstVotes: proposal.AgainstVotes,
		Executed:     proposal.Executed,
		Canceled:     proposal.Canceled,
		Status:       status,
	}
}

func voteResponse(vote entities.VoteRecord) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		ProposalID: vote.ProposalID,
		Voter:      vote.Voter,
		Support:    vote.Support,
		Weight:     vote.Weight,
		CreatedAt:  vote.CreatedAt.UTC().Format(time.RFC3339),
	}
}
