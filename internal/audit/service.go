package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"github.com/angelmondragon/simpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/angelmondragon/simpos-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Service records and lists audit entries.
type Service interface {
	// Record appends an entry inside tx so it commits or rolls back with the
	// mutation it describes.
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.AuditEntry, error)
	List(ctx context.Context, params pagination.Params) (*ListResult, error)
}

// RecordInput captures the immutable data an audit entry requires.
type RecordInput struct {
	UserID      int64             `json:"user_id"`
	Action      enums.AuditAction `json:"action"`
	Description string            `json:"description"`
}

// ListResult is one page of audit entries, newest first.
type ListResult struct {
	Entries    []models.AuditEntry `json:"entries"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService wires an audit service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*models.AuditEntry, error) {
	if input.UserID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Action.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid audit action %q", input.Action))
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audit description is required")
	}

	entry := &models.AuditEntry{
		UserID:      input.UserID,
		Action:      input.Action,
		Description: description,
	}
	if err := s.repo.WithTx(tx).Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record audit entry")
	}
	return entry, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListResult, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	entries, err := s.repo.List(ctx, pagination.LimitWithBuffer(limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit entries")
	}

	result := &ListResult{Entries: entries}
	if len(entries) > limit {
		last := entries[limit-1]
		result.Entries = entries[:limit]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	if result.Entries == nil {
		result.Entries = []models.AuditEntry{}
	}
	return result, nil
}
