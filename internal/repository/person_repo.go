package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// ErrUnknownPersonType is returned for person types other than member or partner.
var ErrUnknownPersonType = errors.New("unknown person type")

// PersonFilter defines filters for listing members or partners.
type PersonFilter struct {
	Search   string
	Status   string
	Today    time.Time
	Page     int
	PageSize int
}

// PersonRepository resolves members and partners behind a single person type switch.
type PersonRepository interface {
	Find(ctx context.Context, personType models.PersonType, id uint) (models.PersonSummary, error)
	SetExcuse(ctx context.Context, personType models.PersonType, id uint, until *time.Time, reason *string) error
}

// MemberRepository exposes persistence helpers for members.
type MemberRepository interface {
	List(ctx context.Context, filter PersonFilter) ([]models.Member, int64, error)
	GetByID(ctx context.Context, id uint) (models.Member, error)
	Create(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Member, error)
	SoftDelete(ctx context.Context, id uint) error
}

// PartnerRepository exposes persistence helpers for partners.
type PartnerRepository interface {
	List(ctx context.Context, filter PersonFilter) ([]models.Partner, int64, error)
	GetByID(ctx context.Context, id uint) (models.Partner, error)
	Create(ctx context.Context, partner *models.Partner) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Partner, error)
	SoftDelete(ctx context.Context, id uint) error
}

type personRepository struct {
	db *gorm.DB
}

// NewPersonRepository constructs the person directory.
func NewPersonRepository(db *gorm.DB) PersonRepository {
	return &personRepository{db: db}
}

func (r *personRepository) Find(ctx context.Context, personType models.PersonType, id uint) (models.PersonSummary, error) {
	switch personType {
	case models.PersonTypeMember:
		var member models.Member
		if err := conn(ctx, r.db).Where("id = ?", id).First(&member).Error; err != nil {
			return models.PersonSummary{}, err
		}
		return memberSummary(member), nil
	case models.PersonTypePartner:
		var partner models.Partner
		if err := conn(ctx, r.db).Where("id = ?", id).First(&partner).Error; err != nil {
			return models.PersonSummary{}, err
		}
		return partnerSummary(partner), nil
	default:
		return models.PersonSummary{}, ErrUnknownPersonType
	}
}

// SetExcuse writes both excuse columns in one statement; nil clears them.
func (r *personRepository) SetExcuse(ctx context.Context, personType models.PersonType, id uint, until *time.Time, reason *string) error {
	updates := map[string]interface{}{
		"excused_until": nil,
		"excuse_reason": nil,
	}
	if until != nil && reason != nil {
		updates["excused_until"] = models.NewDate(*until)
		updates["excuse_reason"] = *reason
	}

	var model interface{}
	switch personType {
	case models.PersonTypeMember:
		model = &models.Member{}
	case models.PersonTypePartner:
		model = &models.Partner{}
	default:
		return ErrUnknownPersonType
	}

	result := conn(ctx, r.db).Model(model).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository constructs the member repository.
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) List(ctx context.Context, filter PersonFilter) ([]models.Member, int64, error) {
	query := applyPersonFilter(conn(ctx, r.db).Model(&models.Member{}), filter)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.Member
	if err := paginate(query, filter.Page, filter.PageSize).Order("name ASC").Order("id ASC").Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *memberRepository) GetByID(ctx context.Context, id uint) (models.Member, error) {
	var member models.Member
	if err := conn(ctx, r.db).Where("id = ?", id).First(&member).Error; err != nil {
		return models.Member{}, err
	}
	return member, nil
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	return conn(ctx, r.db).Create(member).Error
}

func (r *memberRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Member, error) {
	result := conn(ctx, r.db).Model(&models.Member{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Member{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Member{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memberRepository) SoftDelete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&models.Member{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type partnerRepository struct {
	db *gorm.DB
}

// NewPartnerRepository constructs the partner repository.
func NewPartnerRepository(db *gorm.DB) PartnerRepository {
	return &partnerRepository{db: db}
}

func (r *partnerRepository) List(ctx context.Context, filter PersonFilter) ([]models.Partner, int64, error) {
	query := applyPersonFilter(conn(ctx, r.db).Model(&models.Partner{}), filter)

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var partners []models.Partner
	if err := paginate(query, filter.Page, filter.PageSize).Order("name ASC").Order("id ASC").Find(&partners).Error; err != nil {
		return nil, 0, err
	}
	return partners, total, nil
}

func (r *partnerRepository) GetByID(ctx context.Context, id uint) (models.Partner, error) {
	var partner models.Partner
	if err := conn(ctx, r.db).Where("id = ?", id).First(&partner).Error; err != nil {
		return models.Partner{}, err
	}
	return partner, nil
}

func (r *partnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	return conn(ctx, r.db).Create(partner).Error
}

func (r *partnerRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Partner, error) {
	result := conn(ctx, r.db).Model(&models.Partner{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Partner{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Partner{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *partnerRepository) SoftDelete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&models.Partner{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// applyPersonFilter filters on the effective display status, so "paused"
// matches open excuse windows and other statuses exclude them.
func applyPersonFilter(query *gorm.DB, filter PersonFilter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	status := strings.ToLower(strings.TrimSpace(filter.Status))
	if status == "" {
		return query
	}

	today := datatypes.Date(models.DateOf(filter.Today))
	if status == models.PersonStatusPaused {
		return query.Where("excused_until IS NOT NULL AND excused_until >= ?", today)
	}
	return query.
		Where("status = ?", status).
		Where("excused_until IS NULL OR excused_until < ?", today)
}

func memberSummary(member models.Member) models.PersonSummary {
	return models.PersonSummary{
		ID:     member.ID,
		Type:   models.PersonTypeMember,
		Name:   member.Name,
		Status: member.Status,
		Excuse: member.Excuse,
	}
}

func partnerSummary(partner models.Partner) models.PersonSummary {
	return models.PersonSummary{
		ID:     partner.ID,
		Type:   models.PersonTypePartner,
		Name:   partner.Name,
		Status: partner.Status,
		Excuse: partner.Excuse,
	}
}
