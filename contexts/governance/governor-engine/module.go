package governorengine

import (
	"log/slog"

	httpadapter "agora/contexts/governance/governor-engine/adapters/http"
	"agora/contexts/governance/governor-engine/adapters/memory"
	"agora/contexts/governance/governor-engine/application/commands"
	"agora/contexts/governance/governor-engine/application/queries"
	"agora/contexts/governance/governor-engine/domain/entities"
	"agora/contexts/governance/governor-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Governors ports.GovernorRepository
	Proposals ports.ProposalRepository
	Votes     ports.VoteRepository
	Oracle    ports.VotingPowerOracle
	Actions   ports.ActionExecutor
	Outbox    ports.OutboxWriter
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func NewModule(deps Dependencies) Module {
	governorUseCase := commands.GovernorUseCase{
		Governors: deps.Governors,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	proposalUseCase := commands.ProposalUseCase{
		Governors: deps.Governors,
		Proposals: deps.Proposals,
		Oracle:    deps.Oracle,
		Actions:   deps.Actions,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Proposals: deps.Proposals,
		Votes:     deps.Votes,
		Oracle:    deps.Oracle,
		Outbox:    deps.Outbox,
		Clock:     deps.Clock,
		IDGen:     deps.IDGen,
		Logger:    deps.Logger,
	}
	queryUseCase := queries.ProposalQueryUseCase{
		Governors: deps.Governors,
		Proposals: deps.Proposals,
		Votes:     deps.Votes,
		Clock:     deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Governor:  governorUseCase,
			Proposals: proposalUseCase,
			Votes:     voteUseCase,
			Queries:   queryUseCase,
			Logger:    deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Proposal, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Governors: store,
		Proposals: store,
		Votes:     store,
		Oracle:    store,
		Actions:   store,
		Outbox:    store,
		Clock:     store,
		IDGen:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
