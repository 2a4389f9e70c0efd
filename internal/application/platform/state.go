package platform

import (
	"context"
	"errors"
	"fmt"

	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/infrastructure/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func initial() domain.PlatformState {
	return domain.PlatformState{ID: domain.PlatformStateID, NextISAID: 1}
}

// Lock returns the platform state row locked for the rest of tx, creating it on first use.
func Lock(tx *gorm.DB) (*domain.PlatformState, error) {
	seed := initial()
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return nil, fmt.Errorf("seed platform state: %w", err)
	}
	var st domain.PlatformState
	if err := database.ForUpdate(tx).Where("id = ?", domain.PlatformStateID).First(&st).Error; err != nil {
		return nil, fmt.Errorf("lock platform state: %w", err)
	}
	return &st, nil
}

// Snapshot reads the committed platform state without writing. Before the first
// mutation it reports the initial values (next id 1, empty treasury).
func Snapshot(ctx context.Context, db *gorm.DB) (*domain.PlatformState, error) {
	var st domain.PlatformState
	err := db.WithContext(ctx).Where("id = ?", domain.PlatformStateID).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		st = initial()
		return &st, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}
