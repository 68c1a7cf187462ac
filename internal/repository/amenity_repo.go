package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// AmenityFilter defines filters for listing amenities.
type AmenityFilter struct {
	Search   string
	Status   string
	Page     int
	PageSize int
}

// AmenityRepository exposes persistence helpers for amenities.
type AmenityRepository interface {
	List(ctx context.Context, filter AmenityFilter) ([]models.Amenity, int64, error)
	GetByID(ctx context.Context, id uint) (models.Amenity, error)
	Create(ctx context.Context, amenity *models.Amenity) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Amenity, error)
}

type amenityRepository struct {
	db *gorm.DB
}

// NewAmenityRepository constructs the amenity repository.
func NewAmenityRepository(db *gorm.DB) AmenityRepository {
	return &amenityRepository{db: db}
}

func (r *amenityRepository) List(ctx context.Context, filter AmenityFilter) ([]models.Amenity, int64, error) {
	query := conn(ctx, r.db).Model(&models.Amenity{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var amenities []models.Amenity
	if err := paginate(query, filter.Page, filter.PageSize).Order("name ASC").Find(&amenities).Error; err != nil {
		return nil, 0, err
	}
	return amenities, total, nil
}

func (r *amenityRepository) GetByID(ctx context.Context, id uint) (models.Amenity, error) {
	var amenity models.Amenity
	if err := conn(ctx, r.db).Where("id = ?", id).First(&amenity).Error; err != nil {
		return models.Amenity{}, err
	}
	return amenity, nil
}

func (r *amenityRepository) Create(ctx context.Context, amenity *models.Amenity) error {
	return conn(ctx, r.db).Create(amenity).Error
}

func (r *amenityRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (models.Amenity, error) {
	result := conn(ctx, r.db).Model(&models.Amenity{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return models.Amenity{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.Amenity{}, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}
