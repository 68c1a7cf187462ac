package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

// PartnerService orchestrates admin partner management use cases.
type PartnerService interface {
	List(ctx context.Context, req dto.PersonListRequest) (dto.PersonListResponse, error)
	Get(ctx context.Context, id uint) (dto.PersonResponse, error)
	Create(ctx context.Context, payload dto.PartnerCreateRequest, actor *ActivityActor) (dto.PersonResponse, error)
	Update(ctx context.Context, id uint, payload dto.PartnerUpdateRequest, actor *ActivityActor) (dto.PersonResponse, error)
	Delete(ctx context.Context, id uint, actor *ActivityActor) error
}

type partnerService struct {
	validator *validator.Validate
	records   personRecords[models.Partner]
}

// NewPartnerService constructs the partner service.
func NewPartnerService(tx repository.Transactor, repo repository.PartnerRepository, validator *validator.Validate, activity ActivityRecorder, clk clock.Clock, logger zerolog.Logger) PartnerService {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &partnerService{
		validator: validator,
		records: personRecords[models.Partner]{
			kind:     models.PersonTypePartner,
			category: models.CategoryPartnerManagement,
			tx:       tx,
			repo:     repo,
			activity: activity,
			clock:    clk,
			logger:   logger.With().Str("component", "partner_service").Logger(),
			respond:  dto.NewPartnerResponse,
		},
	}
}

func (s *partnerService) List(ctx context.Context, req dto.PersonListRequest) (dto.PersonListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PersonListResponse{}, err
	}
	return s.records.list(ctx, req)
}

func (s *partnerService) Get(ctx context.Context, id uint) (dto.PersonResponse, error) {
	return s.records.get(ctx, id)
}

func (s *partnerService) Create(ctx context.Context, payload dto.PartnerCreateRequest, actor *ActivityActor) (dto.PersonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PersonResponse{}, err
	}
	return s.records.create(ctx, models.Partner{
		Name:           strings.TrimSpace(payload.Name),
		Email:          strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:          strings.TrimSpace(payload.Phone),
		Specialization: strings.TrimSpace(payload.Specialization),
		Status:         statusOrDefault(payload.Status),
	}, actor)
}

func (s *partnerService) Update(ctx context.Context, id uint, payload dto.PartnerUpdateRequest, actor *ActivityActor) (dto.PersonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PersonResponse{}, err
	}
	updates := contactUpdates(payload.Name, payload.Email, payload.Phone, payload.Status)
	if payload.Specialization != nil {
		updates["specialization"] = strings.TrimSpace(*payload.Specialization)
	}
	return s.records.update(ctx, id, updates, actor)
}

func (s *partnerService) Delete(ctx context.Context, id uint, actor *ActivityActor) error {
	return s.records.delete(ctx, id, actor)
}
