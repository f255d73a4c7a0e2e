package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/governance/governor-engine/domain/entities"
	domainerrors "agora/contexts/governance/governor-engine/domain/errors"
	"agora/contexts/governance/governor-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository implements the governor-engine persistence and oracle ports on
// postgres. Uniqueness invariants (single governor, one vote per pair,
// unique type codes) ride on primary key constraints.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the governance tables. Called from bootstrap.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&governorModel{},
		&proposalTypeModel{},
		&proposalModel{},
		&voteModel{},
		&outboxModel{},
		&eventDedupModel{},
		&powerSnapshotModel{},
	)
}

func (r *Repository) CreateGovernor(ctx context.Context, governor entities.Governor) error {
	row := governorModelFromEntity(governor)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrGovernorAlreadyInitialized
		}
		return r.logError("governance_repo_create_governor_failed", err,
			"admin", governor.Admin,
		)
	}
	return nil
}

func (r *Repository) GetGovernor(ctx context.Context) (entities.Governor, error) {
	var row governorModel
	err := r.db.WithContext(ctx).
		Where("id = ?", governorRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Governor{}, domainerrors.ErrGovernorNotInitialized
		}
		return entities.Governor{}, r.logError("governance_repo_get_governor_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveGovernor(ctx context.Context, governor entities.Governor) error {
	row := governorModelFromEntity(governor)
	result := r.db.WithContext(ctx).
		Model(&governorModel{}).
		Where("id = ?", governorRowID).
		Updates(map[string]any{
			"proposal_count": row.ProposalCount,
			"total_supply":   row.TotalSupply,
			"updated_at":     row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("governance_repo_save_governor_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrGovernorNotInitialized
	}
	return nil
}

func (r *Repository) RegisterProposalType(ctx context.Context, proposalType entities.ProposalType) error {
	row := proposalTypeModelFromEntity(proposalType)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrProposalTypeExists
		}
		return r.logError("governance_repo_register_type_failed", err,
			"type_code", proposalType.Code,
		)
	}
	return nil
}

func (r *Repository) GetProposalType(ctx context.Context, code uint8) (entities.ProposalType, error) {
	var row proposalTypeModel
	err := r.db.WithContext(ctx).
		Where("code = ?", int16(code)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ProposalType{}, domainerrors.ErrInvalidProposalType
		}
		return entities.ProposalType{}, r.logError("governance_repo_get_type_failed", err,
			"type_code", code,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListProposalTypes(ctx context.Context) ([]entities.ProposalType, error) {
	var rows []proposalTypeModel
	err := r.db.WithContext(ctx).
		Order("code asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("governance_repo_list_types_failed", err)
	}
	types := make([]entities.ProposalType, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.toEntity())
	}
	return types, nil
}

func (r *Repository) CreateProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidProposalInput
		}
		return r.logError("governance_repo_create_proposal_failed", err,
			"proposal_id", proposal.ID,
			"proposer", proposal.Proposer,
		)
	}
	return nil
}

func (r *Repository) GetProposal(ctx context.Context, proposalID uint64) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", proposalID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("governance_repo_get_proposal_failed", err,
			"proposal_id", proposalID,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalModelFromEntity(proposal)
	update := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"for_votes":     row.ForVotes,
			"against_votes": row.AgainstVotes,
			"executed":      row.Executed,
			"canceled":      row.Canceled,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row)
	if update.Error != nil {
		return r.logError("governance_repo_save_proposal_failed", update.Error,
			"proposal_id", proposal.ID,
		)
	}
	return nil
}

func (r *Repository) ListProposals(ctx context.Context) ([]entities.Proposal, error) {
	var rows []proposalModel
	err := r.db.WithContext(ctx).
		Order("id asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("governance_repo_list_proposals_failed", err)
	}
	proposals := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		proposals = append(proposals, row.toEntity())
	}
	return proposals, nil
}

// CreateVote is a strict insert: the composite primary key turns a repeat
// vote into a unique violation, mapped to the domain's duplicate-vote error
// before any tally was touched.
func (r *Repository) CreateVote(ctx context.Context, vote entities.VoteRecord) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("governance_repo_create_vote_failed", err,
			"proposal_id", vote.ProposalID,
			"voter", vote.Voter,
		)
	}
	return nil
}

func (r *Repository) GetVote(ctx context.Context, proposalID uint64, voter string) (entities.VoteRecord, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ? AND voter = ?", proposalID, strings.TrimSpace(voter)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.VoteRecord{}, domainerrors.ErrVoteNotFound
		}
		return entities.VoteRecord{}, r.logError("governance_repo_get_vote_failed", err,
			"proposal_id", proposalID,
			"voter", voter,
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListVotesByProposal(ctx context.Context, proposalID uint64) ([]entities.VoteRecord, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("created_at asc, voter asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("governance_repo_list_votes_failed", err,
			"proposal_id", proposalID,
		)
	}
	votes := make([]entities.VoteRecord, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, row.toEntity())
	}
	return votes, nil
}

func (r *Repository) WeightOf(ctx context.Context, account string, at time.Time) (uint64, error) {
	var row powerSnapshotModel
	err := r.db.WithContext(ctx).
		Where("account = ? AND effective_from <= ?", strings.TrimSpace(account), at.UTC()).
		Order("effective_from desc").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("governance_repo_weight_lookup_failed", err,
			"account", account,
		)
	}
	return row.Weight, nil
}

// SavePowerSnapshot upserts a voting power snapshot; the token ledger feed
// writes through this when balances change.
func (r *Repository) SavePowerSnapshot(ctx context.Context, account string, effectiveFrom time.Time, weight uint64) error {
	row := powerSnapshotModel{
		Account:       strings.TrimSpace(account),
		EffectiveFrom: effectiveFrom.UTC(),
		Weight:        weight,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account"}, {Name: "effective_from"}},
		DoUpdates: clause.Assignments(map[string]any{
			"weight": row.Weight,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_save_snapshot_failed", create.Error,
			"account", account,
		)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, event ports.EventEnvelope) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:        event.EventID,
		EventType: event.EventType,
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: event.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("governance_repo_append_outbox_failed", err,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at asc").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("governance_repo_list_outbox_failed", err)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:    row.ID,
			EventType:   row.EventType,
			Payload:     row.Payload,
			Status:      row.Status,
			CreatedAt:   row.CreatedAt.UTC(),
			PublishedAt: row.PublishedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	published := publishedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &published,
		})
	if result.Error != nil {
		return r.logError("governance_repo_mark_outbox_failed", result.Error,
			"outbox_id", outboxID,
		)
	}
	return nil
}

func (r *Repository) SeenEvent(ctx context.Context, consumerGroup string, eventID string, now time.Time) (bool, error) {
	var row eventDedupModel
	err := r.db.WithContext(ctx).
		Where("consumer_group = ? AND event_id = ?", consumerGroup, eventID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, r.logError("governance_repo_seen_event_failed", err,
			"event_id", eventID,
		)
	}
	return now.Before(row.ExpiresAt), nil
}

func (r *Repository) MarkEventProcessed(ctx context.Context, consumerGroup string, eventID string, expiresAt time.Time) error {
	row := eventDedupModel{
		ConsumerGroup: consumerGroup,
		EventID:       eventID,
		ExpiresAt:     expiresAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "consumer_group"}, {Name: "event_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"expires_at": row.ExpiresAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("governance_repo_mark_event_failed", create.Error,
			"event_id", eventID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance/governor-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("governance repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
