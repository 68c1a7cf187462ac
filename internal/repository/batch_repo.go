package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// BatchRepository exposes batch, session and roster lookups.
type BatchRepository interface {
	GetByID(ctx context.Context, id uint) (models.Batch, error)
	ListSessions(ctx context.Context, batchID uint) ([]models.BatchSession, error)
	GetSession(ctx context.Context, batchID, sessionID uint) (models.BatchSession, error)
	CreateSession(ctx context.Context, session *models.BatchSession) error
	UpdateSession(ctx context.Context, batchID, sessionID uint, updates map[string]interface{}) (models.BatchSession, error)
	Roster(ctx context.Context, batchID uint, personType models.PersonType) ([]models.PersonSummary, error)
	OnRoster(ctx context.Context, batchID uint, personType models.PersonType, personID uint) (bool, error)
}

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository constructs the batch repository.
func NewBatchRepository(db *gorm.DB) BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) GetByID(ctx context.Context, id uint) (models.Batch, error) {
	var batch models.Batch
	if err := conn(ctx, r.db).Where("id = ?", id).First(&batch).Error; err != nil {
		return models.Batch{}, err
	}
	return batch, nil
}

func (r *batchRepository) ListSessions(ctx context.Context, batchID uint) ([]models.BatchSession, error) {
	var sessions []models.BatchSession
	err := conn(ctx, r.db).
		Where("batch_id = ?", batchID).
		Order("date ASC").
		Order("id ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *batchRepository) GetSession(ctx context.Context, batchID, sessionID uint) (models.BatchSession, error) {
	var session models.BatchSession
	err := conn(ctx, r.db).
		Where("id = ?", sessionID).
		Where("batch_id = ?", batchID).
		First(&session).Error
	if err != nil {
		return models.BatchSession{}, err
	}
	return session, nil
}

func (r *batchRepository) CreateSession(ctx context.Context, session *models.BatchSession) error {
	return conn(ctx, r.db).Create(session).Error
}

func (r *batchRepository) UpdateSession(ctx context.Context, batchID, sessionID uint, updates map[string]interface{}) (models.BatchSession, error) {
	result := conn(ctx, r.db).Model(&models.BatchSession{}).
		Where("id = ?", sessionID).
		Where("batch_id = ?", batchID).
		Updates(updates)
	if result.Error != nil {
		return models.BatchSession{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.BatchSession{}, gorm.ErrRecordNotFound
	}
	return r.GetSession(ctx, batchID, sessionID)
}

func (r *batchRepository) Roster(ctx context.Context, batchID uint, personType models.PersonType) ([]models.PersonSummary, error) {
	switch personType {
	case models.PersonTypeMember:
		var members []models.Member
		err := conn(ctx, r.db).
			Joins("JOIN batch_members ON batch_members.member_id = members.id").
			Where("batch_members.batch_id = ?", batchID).
			Where("batch_members.deleted_at IS NULL").
			Where("batch_members.status = ?", models.PersonStatusActive).
			Order("members.name ASC").
			Order("members.id ASC").
			Find(&members).Error
		if err != nil {
			return nil, err
		}
		roster := make([]models.PersonSummary, 0, len(members))
		for _, member := range members {
			roster = append(roster, memberSummary(member))
		}
		return roster, nil
	case models.PersonTypePartner:
		var partners []models.Partner
		err := conn(ctx, r.db).
			Joins("JOIN batch_partners ON batch_partners.partner_id = partners.id").
			Where("batch_partners.batch_id = ?", batchID).
			Where("batch_partners.deleted_at IS NULL").
			Where("batch_partners.status = ?", models.PersonStatusActive).
			Order("partners.name ASC").
			Order("partners.id ASC").
			Find(&partners).Error
		if err != nil {
			return nil, err
		}
		roster := make([]models.PersonSummary, 0, len(partners))
		for _, partner := range partners {
			roster = append(roster, partnerSummary(partner))
		}
		return roster, nil
	default:
		return nil, ErrUnknownPersonType
	}
}

func (r *batchRepository) OnRoster(ctx context.Context, batchID uint, personType models.PersonType, personID uint) (bool, error) {
	var total int64
	var err error
	switch personType {
	case models.PersonTypeMember:
		err = conn(ctx, r.db).Model(&models.BatchMember{}).
			Where("batch_id = ? AND member_id = ? AND status = ?", batchID, personID, models.PersonStatusActive).
			Count(&total).Error
	case models.PersonTypePartner:
		err = conn(ctx, r.db).Model(&models.BatchPartner{}).
			Where("batch_id = ? AND partner_id = ? AND status = ?", batchID, personID, models.PersonStatusActive).
			Count(&total).Error
	default:
		return false, ErrUnknownPersonType
	}
	if err != nil {
		return false, err
	}
	return total > 0, nil
}
