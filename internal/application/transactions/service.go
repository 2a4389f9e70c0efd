package transactions

import (
	"context"
	"encoding/json"
	"fmt"

	"edutoken-backend/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultLimit = 100

type Service struct {
	DB *gorm.DB
}

// Record appends ev inside tx. data, when non-nil, is stored as the event's JSON payload.
func Record(tx *gorm.DB, ev *domain.LedgerEvent, data map[string]interface{}) error {
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encode event data: %w", err)
		}
		ev.EventData = datatypes.JSON(b)
	}
	if err := tx.Create(ev).Error; err != nil {
		return fmt.Errorf("record %s event: %w", ev.Type, err)
	}
	return nil
}

// ViewISAEvents returns the audit trail of one ISA, newest first.
func (s *Service) ViewISAEvents(ctx context.Context, isaID uint64, limit int) ([]domain.LedgerEvent, error) {
	var out []domain.LedgerEvent
	err := s.DB.WithContext(ctx).
		Where("isa_id = ?", isaID).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	return out, err
}

// ViewPrincipalEvents returns events where principal is the sender or the receiver.
func (s *Service) ViewPrincipalEvents(ctx context.Context, principal string, limit int) ([]domain.LedgerEvent, error) {
	var out []domain.LedgerEvent
	err := s.DB.WithContext(ctx).
		Where("from_principal = ? OR to_principal = ?", principal, principal).
		Order("created_at DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	return out, err
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > defaultLimit {
		return defaultLimit
	}
	return limit
}

// Principal returns a pointer for the nullable principal columns.
func Principal(s string) *string {
	return &s
}
