package tokens

import (
	"context"
	"fmt"
	"sort"
	"time"

	"edutoken-backend/internal/application/registry"
	"edutoken-backend/internal/application/transactions"
	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/infrastructure/database"
	"edutoken-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
	// OnActivate, when set, runs after the commit that fully funds an ISA.
	OnActivate func(isaID uint64)
}

// Invest sells units of an unfunded ISA to investor and returns the capital committed.
// The purchase that sells the last unit commits whatever is left of the funding amount,
// so total_raised equals funding_amount exactly when the supply is gone.
func (s *Service) Invest(ctx context.Context, isaID uint64, investor string, units int64) (int64, error) {
	var capital int64
	var activated bool

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		isa, err := registry.Lock(tx, isaID)
		if err != nil {
			return err
		}
		if isa.IsActive {
			return domain.ErrAlreadyFunded
		}
		if units <= 0 {
			return domain.ErrInvalidAmount
		}
		if units > isa.UnitsAvailable() {
			return domain.ErrExceedsAvailableSupply
		}
		if !validation.IsValidPrincipal(investor) {
			return domain.ErrUnauthorized
		}

		sold := isa.UnitsSold + units
		if sold == domain.TotalSupply {
			capital = isa.FundingAmount - isa.TotalRaised
		} else {
			capital = units * isa.FundingAmount / domain.TotalSupply
		}

		if err := credit(tx, isaID, investor, units); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"units_sold":   sold,
			"total_raised": isa.TotalRaised + capital,
		}
		if sold == domain.TotalSupply {
			updates["is_active"] = true
			updates["activated_at"] = time.Now()
			activated = true
		}
		if err := tx.Model(isa).Updates(updates).Error; err != nil {
			return fmt.Errorf("update isa funding: %w", err)
		}

		return transactions.Record(tx, &domain.LedgerEvent{
			Type:        domain.EventInvest,
			ISAID:       isaID,
			ToPrincipal: transactions.Principal(investor),
			Units:       units,
			Amount:      capital,
		}, nil)
	})
	if err != nil {
		return 0, err
	}

	log.Info().Uint64("isa_id", isaID).Str("investor", investor).Int64("units", units).Int64("capital", capital).Msg("Investment recorded")
	if activated {
		log.Info().Uint64("isa_id", isaID).Msg("ISA fully funded and activated")
		if s.OnActivate != nil {
			s.OnActivate(isaID)
		}
	}
	return capital, nil
}

// Transfer moves units between two holders of the same ISA. A transfer to oneself
// passes the same checks and changes nothing.
func (s *Service) Transfer(ctx context.Context, isaID uint64, from, to string, units int64) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := registry.Lock(tx, isaID); err != nil {
			return err
		}
		if units <= 0 {
			return domain.ErrInvalidAmount
		}
		if !validation.IsValidPrincipal(to) {
			return domain.ErrInvalidAmount
		}

		// Lock both rows in principal order so concurrent opposite transfers cannot deadlock.
		ordered := []string{from, to}
		sort.Strings(ordered)
		held := map[string]int64{}
		for _, p := range ordered {
			if _, ok := held[p]; ok {
				continue
			}
			bal, err := lockBalance(tx, isaID, p)
			if err != nil {
				return err
			}
			held[p] = bal
		}

		if held[from] < units {
			return domain.ErrInsufficientBalance
		}
		if from == to {
			return nil
		}

		if err := debit(tx, isaID, from, units); err != nil {
			return err
		}
		if err := credit(tx, isaID, to, units); err != nil {
			return err
		}

		return transactions.Record(tx, &domain.LedgerEvent{
			Type:          domain.EventTransfer,
			ISAID:         isaID,
			FromPrincipal: transactions.Principal(from),
			ToPrincipal:   transactions.Principal(to),
			Units:         units,
		}, nil)
	})
	if err != nil {
		return err
	}

	log.Info().Uint64("isa_id", isaID).Str("from", from).Str("to", to).Int64("units", units).Msg("Tokens transferred")
	return nil
}

// Balance returns the investor's units in the ISA; no holding reads as zero.
func (s *Service) Balance(ctx context.Context, isaID uint64, investor string) (int64, error) {
	var h domain.TokenHolding
	err := s.DB.WithContext(ctx).
		Where("isa_id = ? AND investor = ?", isaID, investor).
		Limit(1).
		Find(&h).Error
	if err != nil {
		return 0, err
	}
	return h.Balance, nil
}

// Holders lists the non-zero holdings of an ISA, largest first.
func (s *Service) Holders(ctx context.Context, isaID uint64) ([]domain.TokenHolding, error) {
	var out []domain.TokenHolding
	err := s.DB.WithContext(ctx).
		Where("isa_id = ? AND balance > 0", isaID).
		Order("balance DESC, investor ASC").
		Find(&out).Error
	return out, err
}

// Portfolio lists every non-zero holding of one investor.
func (s *Service) Portfolio(ctx context.Context, investor string) ([]domain.TokenHolding, error) {
	var out []domain.TokenHolding
	err := s.DB.WithContext(ctx).
		Where("investor = ? AND balance > 0", investor).
		Order("isa_id ASC").
		Find(&out).Error
	return out, err
}

// findHolding locks the holding row if it exists. A missing holding is not an error.
func findHolding(tx *gorm.DB, isaID uint64, investor string) (*domain.TokenHolding, error) {
	var h domain.TokenHolding
	res := database.ForUpdate(tx).
		Where("isa_id = ? AND investor = ?", isaID, investor).
		Limit(1).
		Find(&h)
	if res.Error != nil {
		return nil, fmt.Errorf("load holding: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &h, nil
}

func lockBalance(tx *gorm.DB, isaID uint64, investor string) (int64, error) {
	h, err := findHolding(tx, isaID, investor)
	if err != nil || h == nil {
		return 0, err
	}
	return h.Balance, nil
}

func credit(tx *gorm.DB, isaID uint64, investor string, units int64) error {
	h, err := findHolding(tx, isaID, investor)
	if err != nil {
		return err
	}
	if h == nil {
		h = &domain.TokenHolding{ISAID: isaID, Investor: investor, Balance: units}
		if err := tx.Create(h).Error; err != nil {
			return fmt.Errorf("create holding: %w", err)
		}
		return nil
	}
	return tx.Model(h).Update("balance", h.Balance+units).Error
}

func debit(tx *gorm.DB, isaID uint64, investor string, units int64) error {
	res := tx.Model(&domain.TokenHolding{}).
		Where("isa_id = ? AND investor = ? AND balance >= ?", isaID, investor, units).
		Update("balance", gorm.Expr("balance - ?", units))
	if res.Error != nil {
		return fmt.Errorf("debit holding: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrInsufficientBalance
	}
	return nil
}
