package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/edutrack-admin-api/internal/clock"
	"github.com/noah-isme/edutrack-admin-api/internal/dto"
	"github.com/noah-isme/edutrack-admin-api/internal/models"
	"github.com/noah-isme/edutrack-admin-api/internal/repository"
)

type auditedPerson interface {
	RecordID() uint
	AuditLabel() string
	AuditValues() map[string]interface{}
}

// personStore is satisfied by both repository.MemberRepository and repository.PartnerRepository.
type personStore[T any] interface {
	List(ctx context.Context, filter repository.PersonFilter) ([]T, int64, error)
	GetByID(ctx context.Context, id uint) (T, error)
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, id uint, updates map[string]interface{}) (T, error)
	SoftDelete(ctx context.Context, id uint) error
}

// personRecords runs the diff-logged CRUD shared by members and partners.
// Every write and its activity entry commit together.
type personRecords[T auditedPerson] struct {
	kind     models.PersonType
	category models.ActivityCategory
	tx       repository.Transactor
	repo     personStore[T]
	activity ActivityRecorder
	clock    clock.Clock
	logger   zerolog.Logger
	respond  func(T, time.Time) dto.PersonResponse
}

func (p personRecords[T]) noun() string {
	return string(p.kind)
}

func (p personRecords[T]) action(verb string) string {
	noun := p.noun()
	return strings.ToUpper(noun[:1]) + noun[1:] + " " + verb
}

func (p personRecords[T]) list(ctx context.Context, req dto.PersonListRequest) (dto.PersonListResponse, error) {
	today := clock.Today(p.clock)
	rows, total, err := p.repo.List(ctx, repository.PersonFilter{
		Search:   strings.TrimSpace(req.Search),
		Status:   req.Status,
		Today:    today,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return dto.PersonListResponse{}, storageError(p.noun()+"s", err)
	}

	items := make([]dto.PersonResponse, 0, len(rows))
	for _, row := range rows {
		items = append(items, p.respond(row, today))
	}
	return dto.PersonListResponse{Items: items, Pagination: dto.NewPaginationMeta(req.Page, req.PageSize, total)}, nil
}

func (p personRecords[T]) get(ctx context.Context, id uint) (dto.PersonResponse, error) {
	record, err := p.repo.GetByID(ctx, id)
	if err != nil {
		return dto.PersonResponse{}, storageError(fmt.Sprintf("%s %d", p.noun(), id), err)
	}
	return p.respond(record, clock.Today(p.clock)), nil
}

func (p personRecords[T]) create(ctx context.Context, record T, actor *ActivityActor) (dto.PersonResponse, error) {
	err := p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := p.repo.Create(ctx, &record); err != nil {
			return storageError(p.noun(), err)
		}
		id := record.RecordID()
		return p.activity.Record(ctx, ActivityEntry{
			Action:      p.action("Created"),
			Category:    p.category,
			TargetLabel: record.AuditLabel(),
			Details:     fmt.Sprintf("Created %s %s", p.noun(), record.AuditLabel()),
			NewValues:   record.AuditValues(),
			EntityType:  p.noun(),
			EntityID:    &id,
			Actor:       actor,
		})
	})
	if err != nil {
		return dto.PersonResponse{}, err
	}
	return p.respond(record, clock.Today(p.clock)), nil
}

// update applies updates and logs only the fields that changed; an update
// that changes nothing writes no entry.
func (p personRecords[T]) update(ctx context.Context, id uint, updates map[string]interface{}, actor *ActivityActor) (dto.PersonResponse, error) {
	var updated T
	err := p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		before, err := p.repo.GetByID(ctx, id)
		if err != nil {
			return storageError(fmt.Sprintf("%s %d", p.noun(), id), err)
		}
		if len(updates) == 0 {
			updated = before
			return nil
		}

		updated, err = p.repo.Update(ctx, id, updates)
		if err != nil {
			p.logger.Error().Err(err).Uint(p.noun()+"_id", id).Msg("failed to update " + p.noun())
			return storageError(fmt.Sprintf("%s %d", p.noun(), id), err)
		}

		oldValues, newValues := DiffValues(before.AuditValues(), updated.AuditValues())
		if len(ChangedFields(newValues)) == 0 {
			return nil
		}
		return p.activity.Record(ctx, ActivityEntry{
			Action:      p.action("Updated"),
			Category:    p.category,
			TargetLabel: updated.AuditLabel(),
			Details:     DescribeChanges(p.noun()+" "+updated.AuditLabel(), oldValues, newValues),
			OldValues:   oldValues,
			NewValues:   newValues,
			EntityType:  p.noun(),
			EntityID:    &id,
			Actor:       actor,
		})
	})
	if err != nil {
		return dto.PersonResponse{}, err
	}
	return p.respond(updated, clock.Today(p.clock)), nil
}

func (p personRecords[T]) delete(ctx context.Context, id uint, actor *ActivityActor) error {
	return p.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		record, err := p.repo.GetByID(ctx, id)
		if err != nil {
			return storageError(fmt.Sprintf("%s %d", p.noun(), id), err)
		}
		if err := p.repo.SoftDelete(ctx, id); err != nil {
			return storageError(fmt.Sprintf("%s %d", p.noun(), id), err)
		}
		return p.activity.Record(ctx, ActivityEntry{
			Action:      p.action("Deleted"),
			Category:    p.category,
			TargetLabel: record.AuditLabel(),
			Details:     fmt.Sprintf("Deleted %s %s", p.noun(), record.AuditLabel()),
			OldValues:   record.AuditValues(),
			EntityType:  p.noun(),
			EntityID:    &id,
			Actor:       actor,
		})
	})
}

// contactUpdates collects the trimmed fields members and partners share.
func contactUpdates(name, email, phone, status *string) map[string]interface{} {
	updates := make(map[string]interface{})
	if name != nil {
		updates["name"] = strings.TrimSpace(*name)
	}
	if email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*email))
	}
	if phone != nil {
		updates["phone"] = strings.TrimSpace(*phone)
	}
	if status != nil {
		updates["status"] = strings.ToLower(strings.TrimSpace(*status))
	}
	return updates
}

func statusOrDefault(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return models.PersonStatusActive
	}
	return status
}
