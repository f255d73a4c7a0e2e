package postgresadapter

import (
	"time"

	"agora/contexts/governance/governor-engine/domain/entities"
)

// governorModel is a single-row table; the fixed id enforces at most one
// governor per deployment at the storage layer.
type governorModel struct {
	ID                int16 `gorm:"primaryKey;column:id"`
	Admin             string
	Manager           string
	VotingDelaySecs   int64 `gorm:"column:voting_delay_secs"`
	VotingPeriodSecs  int64 `gorm:"column:voting_period_secs"`
	ProposalThreshold uint64
	ProposalCount     uint64
	TotalSupply       uint64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (governorModel) TableName() string { return "governance_governor" }

const governorRowID = int16(1)

func governorModelFromEntity(governor entities.Governor) governorModel {
	return governorModel{
		ID:                governorRowID,
		Admin:             governor.Admin,
		Manager:           governor.Manager,
		VotingDelaySecs:   int64(governor.VotingDelay / time.Second),
		VotingPeriodSecs:  int64(governor.VotingPeriod / time.Second),
		ProposalThreshold: governor.ProposalThreshold,
		ProposalCount:     governor.ProposalCount,
		TotalSupply:       governor.TotalSupply,
		CreatedAt:         governor.CreatedAt.UTC(),
		UpdatedAt:         governor.UpdatedAt.UTC(),
	}
}

func (m governorModel) toEntity() entities.Governor {
	return entities.Governor{
		Admin:             m.Admin,
		Manager:           m.Manager,
		VotingDelay:       time.Duration(m.VotingDelaySecs) * time.Second,
		VotingPeriod:      time.Duration(m.VotingPeriodSecs) * time.Second,
		ProposalThreshold: m.ProposalThreshold,
		ProposalCount:     m.ProposalCount,
		TotalSupply:       m.TotalSupply,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}
}

type proposalTypeModel struct {
	Code              int16  `gorm:"primaryKey;column:code"`
	Quorum            uint16 `gorm:"column:quorum_bps"`
	ApprovalThreshold uint16 `gorm:"column:approval_threshold_bps"`
	Name              string `gorm:"size:64"`
	ActionRef         string `gorm:"size:128"`
	CreatedAt         time.Time
}

func (proposalTypeModel) TableName() string { return "governance_proposal_types" }

func proposalTypeModelFromEntity(proposalType entities.ProposalType) proposalTypeModel {
	return proposalTypeModel{
		Code:              int16(proposalType.Code),
		Quorum:            proposalType.Quorum,
		ApprovalThreshold: proposalType.ApprovalThreshold,
		Name:              proposalType.Name,
		ActionRef:         proposalType.ActionRef,
		CreatedAt:         proposalType.CreatedAt.UTC(),
	}
}

func (m proposalTypeModel) toEntity() entities.ProposalType {
	return entities.ProposalType{
		Code:              uint8(m.Code),
		Quorum:            m.Quorum,
		ApprovalThreshold: m.ApprovalThreshold,
		Name:              m.Name,
		ActionRef:         m.ActionRef,
		CreatedAt:         m.CreatedAt.UTC(),
	}
}

type proposalModel struct {
	ID           uint64 `gorm:"primaryKey;column:id;autoIncrement:false"`
	Proposer     string `gorm:"index"`
	Description  string `gorm:"size:200"`
	TypeCode     int16  `gorm:"column:type_code"`
	StartTime    time.Time
	EndTime      time.Time
	ForVotes     uint64
	AgainstVotes uint64
	Executed     bool
	Canceled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (proposalModel) TableName() string { return "governance_proposals" }

func proposalModelFromEntity(proposal entities.Proposal) proposalModel {
	return proposalModel{
		ID:           proposal.ID,
		Proposer:     proposal.Proposer,
		Description:  proposal.Description,
		TypeCode:     int16(proposal.TypeCode),
		StartTime:    proposal.StartTime.UTC(),
		EndTime:      proposal.EndTime.UTC(),
		ForVotes:     proposal.ForVotes,
		AgainstVotes: proposal.AgainstVotes,
		Executed:     proposal.Executed,
		Canceled:     proposal.Canceled,
		CreatedAt:    proposal.CreatedAt.UTC(),
		UpdatedAt:    proposal.UpdatedAt.UTC(),
	}
}

func (m proposalModel) toEntity() entities.Proposal {
	return entities.Proposal{
		ID:           m.ID,
		Proposer:     m.Proposer,
		Description:  m.Description,
		TypeCode:     uint8(m.TypeCode),
		StartTime:    m.StartTime.UTC(),
		EndTime:      m.EndTime.UTC(),
		ForVotes:     m.ForVotes,
		AgainstVotes: m.AgainstVotes,
		Executed:     m.Executed,
		Canceled:     m.Canceled,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

// voteModel uses (proposal_id, voter) as the primary key, which is the
// storage-level guarantee of at most one vote record per pair.
type voteModel struct {
	ProposalID uint64 `gorm:"primaryKey;column:proposal_id;autoIncrement:false"`
	Voter      string `gorm:"primaryKey;column:voter;size:128"`
	Support    bool
	Weight     uint64
	CreatedAt  time.Time
}

func (voteModel) TableName() string { return "governance_votes" }

func voteModelFromEntity(vote entities.VoteRecord) voteModel {
	return voteModel{
		ProposalID: vote.ProposalID,
		Voter:      vote.Voter,
		Support:    vote.Support,
		Weight:     vote.Weight,
		CreatedAt:  vote.CreatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.VoteRecord {
	return entities.VoteRecord{
		ProposalID: m.ProposalID,
		Voter:      m.Voter,
		Support:    m.Support,
		Weight:     m.Weight,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type outboxModel struct {
	ID          string `gorm:"primaryKey;column:id;size:36"`
	EventType   string `gorm:"size:64;index"`
	Payload     []byte
	Status      string `gorm:"size:16;index"`
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (outboxModel) TableName() string { return "governance_outbox" }

type eventDedupModel struct {
	ConsumerGroup string `gorm:"primaryKey;column:consumer_group;size:64"`
	EventID       string `gorm:"primaryKey;column:event_id;size:36"`
	ExpiresAt     time.Time
}

func (eventDedupModel) TableName() string { return "governance_event_dedup" }

// powerSnapshotModel stores voting power snapshots keyed by account and the
// time they take effect. WeightOf resolves the newest snapshot at or before
// the reference time, which keeps the oracle deterministic per (account, at).
type powerSnapshotModel struct {
	Account       string    `gorm:"primaryKey;column:account;size:128"`
	EffectiveFrom time.Time `gorm:"primaryKey;column:effective_from"`
	Weight        uint64
}

func (powerSnapshotModel) TableName() string { return "governance_power_snapshots" }
