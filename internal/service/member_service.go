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

// MemberService orchestrates admin member management use cases.
type MemberService interface {
	List(ctx context.Context, req dto.PersonListRequest) (dto.PersonListResponse, error)
	Get(ctx context.Context, id uint) (dto.PersonResponse, error)
	Create(ctx context.Context, payload dto.MemberCreateRequest, actor *ActivityActor) (dto.PersonResponse, error)
	Update(ctx context.Context, id uint, payload dto.MemberUpdateRequest, actor *ActivityActor) (dto.PersonResponse, error)
	Delete(ctx context.Context, id uint, actor *ActivityActor) error
}

type memberService struct {
	validator *validator.Validate
	records   personRecords[models.Member]
}

// NewMemberService constructs the member service.
func NewMemberService(tx repository.Transactor, repo repository.MemberRepository, validator *validator.Validate, activity ActivityRecorder, clk clock.Clock, logger zerolog.Logger) MemberService {
	if clk == nil {
		clk = clock.System(nil)
	}
	return &memberService{
		validator: validator,
		records: personRecords[models.Member]{
			kind:     models.PersonTypeMember,
			category: models.CategoryMemberManagement,
			tx:       tx,
			repo:     repo,
			activity: activity,
			clock:    clk,
			logger:   logger.With().Str("component", "member_service").Logger(),
			respond:  dto.NewMemberResponse,
		},
	}
}

func (s *memberService) List(ctx context.Context, req dto.PersonListRequest) (dto.PersonListResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.PersonListResponse{}, err
	}
	return s.records.list(ctx, req)
}

func (s *memberService) Get(ctx context.Context, id uint) (dto.PersonResponse, error) {
	return s.records.get(ctx, id)
}

func (s *memberService) Create(ctx context.Context, payload dto.MemberCreateRequest, actor *ActivityActor) (dto.PersonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PersonResponse{}, err
	}
	return s.records.create(ctx, models.Member{
		Name:         strings.TrimSpace(payload.Name),
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		Phone:        strings.TrimSpace(payload.Phone),
		GuardianName: strings.TrimSpace(payload.GuardianName),
		Status:       statusOrDefault(payload.Status),
	}, actor)
}

func (s *memberService) Update(ctx context.Context, id uint, payload dto.MemberUpdateRequest, actor *ActivityActor) (dto.PersonResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PersonResponse{}, err
	}
	updates := contactUpdates(payload.Name, payload.Email, payload.Phone, payload.Status)
	if payload.GuardianName != nil {
		updates["guardian_name"] = strings.TrimSpace(*payload.GuardianName)
	}
	return s.records.update(ctx, id, updates, actor)
}

func (s *memberService) Delete(ctx context.Context, id uint, actor *ActivityActor) error {
	return s.records.delete(ctx, id, actor)
}
