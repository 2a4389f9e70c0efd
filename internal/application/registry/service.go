package registry

import (
	"context"
	"errors"
	"fmt"
	"math"

	"edutoken-backend/internal/application/platform"
	"edutoken-backend/internal/application/transactions"
	"edutoken-backend/internal/domain"
	"edutoken-backend/internal/infrastructure/database"
	"edutoken-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Limits are the platform bounds an ISA must satisfy at creation. Amounts are in minor units.
type Limits struct {
	MinFunding       int64
	MaxFunding       int64
	MinShareBP       int64
	MaxShareBP       int64
	MaxTermMonths    int64
	MaxMinIncome     int64
	MinCapMultipleBP int64 // payment cap must be at least funding * this / 10000
}

// DefaultLimits: $10,000–$100M funding, 1%–20% share, up to 20 years,
// minimum income up to $1M, cap at least 1x the principal.
func DefaultLimits() Limits {
	return Limits{
		MinFunding:       1_000_000,
		MaxFunding:       10_000_000_000,
		MinShareBP:       100,
		MaxShareBP:       2000,
		MaxTermMonths:    240,
		MaxMinIncome:     100_000_000,
		MinCapMultipleBP: 10000,
	}
}

// Check reports limits that could never admit an ISA or whose cap product overflows.
func (l Limits) Check() error {
	switch {
	case l.MinFunding <= 0 || l.MinFunding > l.MaxFunding:
		return fmt.Errorf("funding limits: need 0 < min (%d) <= max (%d)", l.MinFunding, l.MaxFunding)
	case l.MinShareBP < 0 || l.MinShareBP > l.MaxShareBP || l.MaxShareBP > domain.BasisPoints:
		return fmt.Errorf("share limits: need 0 <= min (%d) <= max (%d) <= %d", l.MinShareBP, l.MaxShareBP, domain.BasisPoints)
	case l.MaxTermMonths <= 0:
		return fmt.Errorf("max term months must be positive, got %d", l.MaxTermMonths)
	case l.MaxMinIncome < 0:
		return fmt.Errorf("max minimum income must not be negative, got %d", l.MaxMinIncome)
	case l.MinCapMultipleBP < 0 || l.MinCapMultipleBP > math.MaxInt64/l.MaxFunding:
		return fmt.Errorf("cap multiple %d bp out of range for max funding %d", l.MinCapMultipleBP, l.MaxFunding)
	}
	return nil
}

// CreateInput carries the terms requested by the student.
type CreateInput struct {
	FundingAmount int64 `json:"funding_amount"`
	IncomeShareBP int64 `json:"income_share_bp"`
	TermMonths    int64 `json:"term_months"`
	MinIncome     int64 `json:"min_income"`
	PaymentCap    int64 `json:"payment_cap"`
}

type Service struct {
	DB     *gorm.DB
	Limits Limits
}

// Validate checks in against the limits. Every violation is ErrInvalidAmount.
func (l Limits) Validate(in CreateInput) error {
	switch {
	case in.FundingAmount < l.MinFunding || in.FundingAmount > l.MaxFunding:
		return domain.ErrInvalidAmount
	case in.IncomeShareBP < l.MinShareBP || in.IncomeShareBP > l.MaxShareBP:
		return domain.ErrInvalidAmount
	case in.TermMonths <= 0 || in.TermMonths > l.MaxTermMonths:
		return domain.ErrInvalidAmount
	case in.MinIncome < 0 || in.MinIncome > l.MaxMinIncome:
		return domain.ErrInvalidAmount
	case in.PaymentCap < in.FundingAmount*l.MinCapMultipleBP/domain.BasisPoints:
		return domain.ErrInvalidAmount
	}
	return nil
}

// Create registers a new ISA for student and returns its id. A failed create
// leaves the id counter untouched.
func (s *Service) Create(ctx context.Context, student string, in CreateInput) (uint64, error) {
	if !validation.IsValidPrincipal(student) {
		return 0, domain.ErrUnauthorized
	}
	if err := s.Limits.Validate(in); err != nil {
		return 0, err
	}

	var id uint64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st, err := platform.Lock(tx)
		if err != nil {
			return err
		}

		isa := domain.ISA{
			ID:            st.NextISAID,
			Student:       student,
			FundingAmount: in.FundingAmount,
			IncomeShareBP: in.IncomeShareBP,
			TermMonths:    in.TermMonths,
			MinimumIncome: in.MinIncome,
			PaymentCap:    in.PaymentCap,
		}
		if err := tx.Create(&isa).Error; err != nil {
			return fmt.Errorf("insert isa: %w", err)
		}
		if err := tx.Model(st).Update("next_isa_id", st.NextISAID+1).Error; err != nil {
			return fmt.Errorf("advance isa id: %w", err)
		}

		if err := transactions.Record(tx, &domain.LedgerEvent{
			Type:        domain.EventCreate,
			ISAID:       isa.ID,
			ToPrincipal: transactions.Principal(student),
			Amount:      isa.FundingAmount,
		}, map[string]interface{}{
			"income_share_bp": isa.IncomeShareBP,
			"term_months":     isa.TermMonths,
			"min_income":      isa.MinimumIncome,
			"payment_cap":     isa.PaymentCap,
		}); err != nil {
			return err
		}

		id = isa.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Uint64("isa_id", id).Str("student", student).Int64("funding_amount", in.FundingAmount).Msg("ISA created")
	return id, nil
}

// Get returns the ISA, or nil when it does not exist.
func (s *Service) Get(ctx context.Context, id uint64) (*domain.ISA, error) {
	var isa domain.ISA
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&isa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &isa, nil
}

// List returns ISAs ordered by id, optionally only those of one student.
func (s *Service) List(ctx context.Context, student string) ([]domain.ISA, error) {
	q := s.DB.WithContext(ctx).Order("id ASC")
	if student != "" {
		q = q.Where("student = ?", student)
	}
	var out []domain.ISA
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// NextID returns the id the next successful Create will assign.
func (s *Service) NextID(ctx context.Context) (uint64, error) {
	st, err := platform.Snapshot(ctx, s.DB)
	if err != nil {
		return 0, err
	}
	return st.NextISAID, nil
}

// Lock loads the ISA locked for the rest of tx. A missing ISA is ErrNotFound.
func Lock(tx *gorm.DB, id uint64) (*domain.ISA, error) {
	var isa domain.ISA
	err := database.ForUpdate(tx).Where("id = ?", id).First(&isa).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load isa %d: %w", id, err)
	}
	return &isa, nil
}
