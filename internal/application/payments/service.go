package payments

import (
	"context"
	"errors"
	"fmt"
	"math"

	"edutoken-backend/internal/application/registry"
	"edutoken-backend/internal/application/transactions"
	"edutoken-backend/internal/application/treasury"
	"edutoken-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
	// FeeBP is the platform's cut of each payment, in basis points. Zero disables it.
	FeeBP int64
}

// Preview computes the payment for income at the ISA's share rate, ignoring the
// cap and the minimum income threshold.
func (s *Service) Preview(ctx context.Context, isaID uint64, income int64) (int64, error) {
	var isa domain.ISA
	err := s.DB.WithContext(ctx).Where("id = ?", isaID).First(&isa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if income < 0 || overflows(income, isa.IncomeShareBP) {
		return 0, domain.ErrInvalidAmount
	}
	return income * isa.IncomeShareBP / domain.BasisPoints, nil
}

// ReportIncomeAndPay records the student's income for period and settles the payment
// it implies, clipped to what remains under the cap. It returns the amount paid.
func (s *Service) ReportIncomeAndPay(ctx context.Context, caller string, isaID uint64, income, period int64) (int64, error) {
	if s.FeeBP < 0 || s.FeeBP > domain.BasisPoints {
		return 0, fmt.Errorf("platform fee %d bp outside 0..%d", s.FeeBP, domain.BasisPoints)
	}

	var report domain.IncomeReport
	var capped bool

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		isa, err := registry.Lock(tx, isaID)
		if err != nil {
			return err
		}
		if caller != isa.Student {
			return domain.ErrUnauthorized
		}
		if period < 1 {
			return domain.ErrInvalidPeriod
		}
		if income < isa.MinimumIncome {
			return domain.ErrBelowMinimumIncome
		}
		if overflows(income, isa.IncomeShareBP) {
			return domain.ErrInvalidAmount
		}

		var n int64
		if err := tx.Model(&domain.IncomeReport{}).
			Where("isa_id = ? AND period = ?", isaID, period).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check period: %w", err)
		}
		if n > 0 {
			return domain.ErrPeriodAlreadyReported
		}

		due := income * isa.IncomeShareBP / domain.BasisPoints
		made := due
		if remaining := isa.RemainingCap(); made > remaining {
			made = remaining
			capped = true
		}
		fee := made * s.FeeBP / domain.BasisPoints

		report = domain.IncomeReport{
			ISAID:          isaID,
			Period:         period,
			ReportedIncome: income,
			PaymentDue:     due,
			PaymentMade:    made,
			PlatformFee:    fee,
		}
		if err := tx.Create(&report).Error; err != nil {
			return fmt.Errorf("insert income report: %w", err)
		}
		if made > 0 {
			if err := tx.Model(isa).Update("total_paid", isa.TotalPaid+made).Error; err != nil {
				return fmt.Errorf("update total paid: %w", err)
			}
		}

		p := period
		if err := transactions.Record(tx, &domain.LedgerEvent{
			Type:          domain.EventPayment,
			ISAID:         isaID,
			FromPrincipal: transactions.Principal(caller),
			Amount:        made,
			Period:        &p,
		}, map[string]interface{}{
			"reported_income": income,
			"payment_due":     due,
		}); err != nil {
			return err
		}

		if fee > 0 {
			balance, err := treasury.CreditTx(tx, fee)
			if err != nil {
				return err
			}
			if err := transactions.Record(tx, &domain.LedgerEvent{
				Type:   domain.EventFee,
				ISAID:  isaID,
				Amount: fee,
				Period: &p,
			}, map[string]interface{}{
				"fee_bp":           s.FeeBP,
				"treasury_balance": balance,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	ev := log.Info().Uint64("isa_id", isaID).Int64("period", period).Int64("payment_due", report.PaymentDue).Int64("payment_made", report.PaymentMade)
	if capped {
		ev.Msg("Payment clipped at cap")
	} else {
		ev.Msg("Payment recorded")
	}
	if report.PlatformFee > 0 {
		log.Info().Uint64("isa_id", isaID).Int64("fee", report.PlatformFee).Msg("Platform fee credited")
	}
	return report.PaymentMade, nil
}

// GetReport returns the report for (isaID, period), or nil when none exists.
func (s *Service) GetReport(ctx context.Context, isaID uint64, period int64) (*domain.IncomeReport, error) {
	var r domain.IncomeReport
	err := s.DB.WithContext(ctx).
		Where("isa_id = ? AND period = ?", isaID, period).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) ListReports(ctx context.Context, isaID uint64) ([]domain.IncomeReport, error) {
	var out []domain.IncomeReport
	err := s.DB.WithContext(ctx).
		Where("isa_id = ?", isaID).
		Order("period ASC").
		Find(&out).Error
	return out, err
}

func overflows(income, bp int64) bool {
	return bp > 0 && income > math.MaxInt64/bp
}
