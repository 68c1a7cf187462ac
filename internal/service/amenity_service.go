package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

// AmenityService manages venue amenities.
type AmenityService interface {
	List(ctx context.Context, req dto.AmenityListRequest) (dto.AmenityListResponse, error)
	Create(ctx context.Context, req dto.AmenityCreateRequest, actor *ActivityActor) (dto.AmenityResponse, error)
	BulkUpdate(ctx context.Context, req dto.AmenityBulkUpdateRequest, actor *ActivityActor) ([]dto.AmenityResponse, error)
}

type amenityService struct {
	tx        repository.Transactor
	repo      repository.AmenityRepository
	activity  ActivityRecorder
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAmenityService constructs the amenity service.
func NewAmenityService(tx repository.Transactor, repo repository.AmenityRepository, activity ActivityRecorder, validator *validator.Validate, logger zerolog.Logger) AmenityService {
	return &amenityService{
		tx:        tx,
		repo:      repo,
		activity:  activity,
		validator: validator,
		logger:    logger.With().Str("component", "amenity_service").Logger(),
	}
}

func (s *amenityService) List(ctx context.Context, req dto.AmenityListRequest) (dto.AmenityListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AmenityListResponse{}, err
	}

	amenities, total, err := s.repo.List(ctx, repository.AmenityFilter{
		Search:   strings.TrimSpace(req.Search),
		Status:   req.Status,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.AmenityListResponse{}, storageError("amenities", err)
	}

	items := make([]dto.AmenityResponse, 0, len(amenities))
	for _, amenity := range amenities {
		items = append(items, dto.NewAmenityResponse(amenity))
	}
	return dto.AmenityListResponse{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *amenityService) Create(ctx context.Context, req dto.AmenityCreateRequest, actor *ActivityActor) (dto.AmenityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.AmenityResponse{}, err
	}

	amenity := models.Amenity{
		VenueID:     req.VenueID,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Status:      req.Status,
	}
	if amenity.Status == "" {
		amenity.Status = models.AmenityStatusAvailable
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, &amenity); err != nil {
			return storageError("amenity", err)
		}
		id := amenity.ID
		return s.activity.Record(ctx, ActivityEntry{
			Action:      "Amenity Created",
			Category:    models.CategoryAmenityManagement,
			TargetLabel: amenity.Name,
			Details:     fmt.Sprintf("Created amenity %s", amenity.Name),
			NewValues:   amenity.AuditValues(),
			EntityType:  "amenity",
			EntityID:    &id,
			Actor:       actor,
		})
	})
	if err != nil {
		return dto.AmenityResponse{}, err
	}
	return dto.NewAmenityResponse(amenity), nil
}

// BulkUpdate applies every item or none. Audit entries roll back with the rows.
func (s *amenityService) BulkUpdate(ctx context.Context, req dto.AmenityBulkUpdateRequest, actor *ActivityActor) ([]dto.AmenityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	responses := make([]dto.AmenityResponse, 0, len(req.Items))
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for i, item := range req.Items {
			before, err := s.repo.GetByID(ctx, item.ID)
			if err != nil {
				return storageError(fmt.Sprintf("amenity %d", item.ID), err)
			}

			updates := amenityUpdates(item)
			if len(updates) == 0 {
				responses = append(responses, dto.NewAmenityResponse(before))
				continue
			}

			updated, err := s.repo.Update(ctx, item.ID, updates)
			if err != nil {
				s.logger.Error().Err(err).Int("item", i).Uint("amenity_id", item.ID).Msg("bulk amenity update failed")
				return storageError(fmt.Sprintf("amenity %d", item.ID), err)
			}

			oldValues, newValues := DiffValues(before.AuditValues(), updated.AuditValues())
			if len(newValues) > 0 {
				id := updated.ID
				if err := s.activity.Record(ctx, ActivityEntry{
					Action:      "Amenity Updated",
					Category:    models.CategoryAmenityManagement,
					TargetLabel: updated.Name,
					Details:     DescribeChanges("amenity "+updated.Name, oldValues, newValues),
					OldValues:   oldValues,
					NewValues:   newValues,
					EntityType:  "amenity",
					EntityID:    &id,
					Actor:       actor,
				}); err != nil {
					return err
				}
			}
			responses = append(responses, dto.NewAmenityResponse(updated))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func amenityUpdates(item dto.AmenityBulkUpdateItem) map[string]interface{} {
	updates := make(map[string]interface{})
	if item.Name != nil {
		updates["name"] = strings.TrimSpace(*item.Name)
	}
	if item.Description != nil {
		updates["description"] = strings.TrimSpace(*item.Description)
	}
	if item.Status != nil {
		updates["status"] = *item.Status
	}
	return updates
}
