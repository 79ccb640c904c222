package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/simpos-backend/pkg/db/models"
	"github.com/angelmondragon/simpos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/simpos-backend/pkg/errors"
	"github.com/angelmondragon/simpos-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeRepository struct {
	createFn func(ctx context.Context, entry *models.AuditEntry) error
	boundTx  *gorm.DB
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	f.boundTx = tx
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.AuditEntry, error) {
	return nil, nil
}

func TestService_Record(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	var created *models.AuditEntry
	repo.createFn = func(ctx context.Context, entry *models.AuditEntry) error {
		created = entry
		return nil
	}

	tx := &gorm.DB{}
	got, err := svc.Record(context.Background(), tx, RecordInput{
		UserID:      7,
		Action:      enums.AuditActionSaleCreated,
		Description: "  sale 12 created, total 17.00  ",
	})
	if err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if created == nil || got != created {
		t.Fatal("expected the created entry to be returned")
	}
	if created.UserID != 7 || created.Action != enums.AuditActionSaleCreated {
		t.Fatalf("unexpected entry data: %+v", created)
	}
	if created.Description != "sale 12 created, total 17.00" {
		t.Fatalf("description not trimmed: %q", created.Description)
	}
	if repo.boundTx != tx {
		t.Fatal("entry must be written through the caller's transaction")
	}
}

func TestService_RecordValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	tests := []struct {
		name  string
		input RecordInput
	}{
		{name: "missing user", input: RecordInput{Action: enums.AuditActionSaleCreated, Description: "x"}},
		{name: "invalid action", input: RecordInput{UserID: 1, Action: "sale.exploded", Description: "x"}},
		{name: "blank description", input: RecordInput{UserID: 1, Action: enums.AuditActionSaleCancelled, Description: "   "}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Record(context.Background(), nil, tc.input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error for %s, got %v", tc.name, err)
			}
		})
	}
}

func TestService_RecordRepoError(t *testing.T) {
	expectedErr := errors.New("boom")
	repo := &fakeRepository{createFn: func(ctx context.Context, entry *models.AuditEntry) error {
		return expectedErr
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	_, err = svc.Record(context.Background(), nil, RecordInput{UserID: 1, Action: enums.AuditActionSaleRefunded, Description: "refund"})
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}

func TestService_ListPagesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		entry := models.AuditEntry{
			UserID:      1,
			Action:      enums.AuditActionSaleCreated,
			Description: "entry",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(&entry).Error)
	}
	// same timestamp as the newest entry, tie broken by id
	tie := models.AuditEntry{UserID: 1, Action: enums.AuditActionSaleCancelled, Description: "tie", CreatedAt: base.Add(4 * time.Minute)}
	require.NoError(t, db.Create(&tie).Error)

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	first, err := svc.List(ctx, pagination.Params{Limit: 4})
	require.NoError(t, err)
	require.Len(t, first.Entries, 4)
	assert.Equal(t, tie.ID, first.Entries[0].ID)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(ctx, pagination.Params{Limit: 4, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Entries, 2)
	assert.Empty(t, second.NextCursor)

	seen := map[int64]bool{}
	for _, e := range append(first.Entries, second.Entries...) {
		assert.False(t, seen[e.ID], "entry %d listed twice", e.ID)
		seen[e.ID] = true
	}
	assert.Len(t, seen, 6)
}

func TestService_ListRejectsBadCursor(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	require.NoError(t, err)

	_, err = svc.List(context.Background(), pagination.Params{Cursor: "%%%"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRecordRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	txErr := db.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.Record(ctx, tx, RecordInput{UserID: 3, Action: enums.AuditActionSaleCreated, Description: "doomed"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, txErr)

	var count int64
	require.NoError(t, db.Model(&models.AuditEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:audit_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.AuditEntry{}))
	return db
}
