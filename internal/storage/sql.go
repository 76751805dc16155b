package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mindflowai/mindflow/internal/models"
	"github.com/mindflowai/mindflow/internal/reference"
)

// stageBatchSize bounds the rows per INSERT so a statement stays under the
// bind variable limit of SQLite (32766) and Postgres (65535)
const stageBatchSize = 500

// SQLStorage implements Store on a gorm database
type SQLStorage struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLStorage opens the database behind dialector and migrates the schema
func NewSQLStorage(dialector gorm.Dialector, logger *slog.Logger) (*SQLStorage, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&models.StagedReference{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	logger.Debug("SQL storage ready", "dialect", dialector.Name())

	return &SQLStorage{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Stage implements Store
func (s *SQLStorage) Stage(ctx context.Context, refs []reference.Reference) error {
	if len(refs) == 0 {
		return nil
	}

	// Later duplicates of a file win, matching the file backend
	byKey := make(map[string]int, len(refs))
	records := make([]*models.StagedReference, 0, len(refs))
	now := s.now()
	for _, ref := range refs {
		record := models.NewStagedReference(ref, now)
		if i, seen := byKey[record.AbsPath]; seen {
			records[i] = record
			continue
		}
		byKey[record.AbsPath] = len(records)
		records = append(records, record)
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "abs_path"}},
			DoUpdates: clause.AssignmentColumns([]string{"path", "type", "content_hash", "text", "size_bytes", "staged_at"}),
		}).
		CreateInBatches(records, stageBatchSize).Error
	if err != nil {
		s.logger.Error("Storage write failed", "operation", "stage", "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	s.logger.Debug("References staged", "count", len(records))
	return nil
}

// List implements Store
func (s *SQLStorage) List(ctx context.Context) ([]*models.StagedReference, error) {
	var records []*models.StagedReference
	if err := s.db.WithContext(ctx).Order("abs_path").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return records, nil
}

// Remove implements Store
func (s *SQLStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("abs_path IN ?", keys).
		Delete(&models.StagedReference{}).Error
	if err != nil {
		s.logger.Error("Storage write failed", "operation", "remove", "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Clear implements Store
func (s *SQLStorage) Clear(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.StagedReference{}).Error
	if err != nil {
		s.logger.Error("Storage write failed", "operation", "clear", "error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Count implements Store
func (s *SQLStorage) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.StagedReference{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return int(count), nil
}

// Close implements Store
func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
