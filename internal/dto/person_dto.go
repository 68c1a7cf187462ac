package dto

import (
	"time"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// PersonListRequest defines filters for listing members or partners.
type PersonListRequest struct {
	Page     int
	PageSize int
	Search   string
	Status   string `validate:"omitempty,oneof=active inactive blacklisted paused"`
}

// PersonResponse serializes a member or partner for admin endpoints.
type PersonResponse struct {
	ID              uint       `json:"id"`
	Type            string     `json:"type"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	GuardianName    string     `json:"guardian_name,omitempty"`
	Specialization  string     `json:"specialization,omitempty"`
	Status          string     `json:"status"`
	DisplayStatus   string     `json:"display_status"`
	EffectivePaused bool       `json:"effectively_paused"`
	ExcusedUntil    *string    `json:"excused_until"`
	ExcuseReason    *string    `json:"excuse_reason"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// PersonListResponse wraps a paginated person listing.
type PersonListResponse struct {
	Items      []PersonResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// MemberCreateRequest captures the payload to enroll a new member.
type MemberCreateRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=255"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,max=32"`
	GuardianName string `json:"guardian_name" validate:"omitempty,max=255"`
	Status       string `json:"status" validate:"omitempty,oneof=active inactive blacklisted"`
}

// MemberUpdateRequest captures partial member updates.
type MemberUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=32"`
	GuardianName *string `json:"guardian_name" validate:"omitempty,max=255"`
	Status       *string `json:"status" validate:"omitempty,oneof=active inactive blacklisted"`
}

// PartnerCreateRequest captures the payload to register a partner.
type PartnerCreateRequest struct {
	Name           string `json:"name" validate:"required,min=2,max=255"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone" validate:"omitempty,max=32"`
	Specialization string `json:"specialization" validate:"omitempty,max=255"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive blacklisted"`
}

// PartnerUpdateRequest captures partial partner updates.
type PartnerUpdateRequest struct {
	Name           *string `json:"name" validate:"omitempty,min=2,max=255"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=32"`
	Specialization *string `json:"specialization" validate:"omitempty,max=255"`
	Status         *string `json:"status" validate:"omitempty,oneof=active inactive blacklisted"`
}

// ExcuseToggleRequest pauses or resumes a member or partner.
type ExcuseToggleRequest struct {
	PersonType string `json:"person_type" validate:"required,oneof=member partner"`
	PersonID   uint   `json:"person_id" validate:"required"`
	Action     string `json:"action" validate:"required,oneof=pause resume"`
	Reason     string `json:"reason" validate:"omitempty,max=1000"`
	EndDate    string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

// NewMemberResponse converts a member into a DTO evaluated against today.
func NewMemberResponse(member models.Member, today time.Time) PersonResponse {
	response := newPersonResponse(models.PersonTypeMember, member.ID, member.Name, member.Status, member.Excuse, today)
	response.Email = member.Email
	response.Phone = member.Phone
	response.GuardianName = member.GuardianName
	response.CreatedAt = member.CreatedAt
	response.UpdatedAt = member.UpdatedAt
	if member.DeletedAt.Valid {
		deletedAt := member.DeletedAt.Time
		response.DeletedAt = &deletedAt
	}
	return response
}

// NewPartnerResponse converts a partner into a DTO evaluated against today.
func NewPartnerResponse(partner models.Partner, today time.Time) PersonResponse {
	response := newPersonResponse(models.PersonTypePartner, partner.ID, partner.Name, partner.Status, partner.Excuse, today)
	response.Email = partner.Email
	response.Phone = partner.Phone
	response.Specialization = partner.Specialization
	response.CreatedAt = partner.CreatedAt
	response.UpdatedAt = partner.UpdatedAt
	if partner.DeletedAt.Valid {
		deletedAt := partner.DeletedAt.Time
		response.DeletedAt = &deletedAt
	}
	return response
}

// NewPersonSummaryResponse converts a roster summary into a DTO.
func NewPersonSummaryResponse(person models.PersonSummary, today time.Time) PersonResponse {
	return newPersonResponse(person.Type, person.ID, person.Name, person.Status, person.Excuse, today)
}

func newPersonResponse(personType models.PersonType, id uint, name, status string, excuse models.Excuse, today time.Time) PersonResponse {
	return PersonResponse{
		ID:              id,
		Type:            string(personType),
		Name:            name,
		Status:          status,
		DisplayStatus:   excuse.EffectiveStatus(status, today),
		EffectivePaused: excuse.PausedOn(today),
		ExcusedUntil:    ExcusedUntilString(excuse),
		ExcuseReason:    excuse.ExcuseReason,
	}
}

// ExcusedUntilString renders the excuse end date, nil when not paused.
func ExcusedUntilString(excuse models.Excuse) *string {
	until, ok := excuse.ExcusedUntilDate()
	if !ok {
		return nil
	}
	formatted := models.FormatDate(until)
	return &formatted
}
