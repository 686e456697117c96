package services

import (
	"context"
	"fmt"
	"time"

	"rental-pricing-api/config"
	"rental-pricing-api/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PredictionLogService persists one row per served prediction request.
// A service without a database records nothing.
type PredictionLogService struct {
	db *gorm.DB
}

// OpenPredictionLog connects to Postgres and migrates the log table.
func OpenPredictionLog(cfg config.DatabaseConfig) (*PredictionLogService, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db handle: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return NewPredictionLogService(db)
}

// NewPredictionLogService migrates the log table on an open connection.
func NewPredictionLogService(db *gorm.DB) (*PredictionLogService, error) {
	if err := db.AutoMigrate(&models.PredictionLog{}); err != nil {
		return nil, fmt.Errorf("failed to migrate prediction log: %w", err)
	}
	return &PredictionLogService{db: db}, nil
}

func (s *PredictionLogService) Enabled() bool {
	return s != nil && s.db != nil
}

func (s *PredictionLogService) Record(ctx context.Context, entry *models.PredictionLog) error {
	if !s.Enabled() {
		return nil
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

// Recent returns up to limit log rows created before the cursor, newest
// first. A nil cursor starts from the latest row.
func (s *PredictionLogService) Recent(ctx context.Context, limit int, before *time.Time) ([]models.PredictionLog, error) {
	if !s.Enabled() {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}
	var rows []models.PredictionLog
	err := query.Find(&rows).Error
	return rows, err
}

func (s *PredictionLogService) Close() error {
	if !s.Enabled() {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
