package treasury

import (
	"context"
	"fmt"

	"edutoken-backend/internal/application/platform"
	"edutoken-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// CreditTx adds amount to the treasury inside tx and returns the new balance.
func CreditTx(tx *gorm.DB, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	st, err := platform.Lock(tx)
	if err != nil {
		return 0, err
	}
	balance := st.TreasuryBalance + amount
	if balance < st.TreasuryBalance {
		return 0, domain.ErrInvalidAmount
	}
	if err := tx.Model(st).Update("treasury_balance", balance).Error; err != nil {
		return 0, fmt.Errorf("credit treasury: %w", err)
	}
	return balance, nil
}

// Credit is the operator entry point for depositing into the treasury.
func (s *Service) Credit(ctx context.Context, amount int64) (int64, error) {
	var balance int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = CreditTx(tx, amount)
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Info().Int64("amount", amount).Int64("balance", balance).Msg("Treasury credited")
	return balance, nil
}

func (s *Service) Balance(ctx context.Context) (int64, error) {
	st, err := platform.Snapshot(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	return st.TreasuryBalance, nil
}
