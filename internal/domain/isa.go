package domain

import "time"

// TotalSupply is the fixed number of ownership units per ISA (1 unit = 0.01%).
const TotalSupply int64 = 10000

// BasisPoints is the denominator for all percentage arithmetic.
const BasisPoints int64 = 10000

// ISA is one income-share agreement. ID is assigned from PlatformState, never auto-incremented.
type ISA struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Student       string     `gorm:"column:student;size:128;not null;index" json:"student"`
	FundingAmount int64      `gorm:"column:funding_amount;not null" json:"funding_amount"`
	IncomeShareBP int64      `gorm:"column:income_share_bp;not null" json:"income_share_percentage"`
	TermMonths    int64      `gorm:"column:term_months;not null" json:"term_months"`
	MinimumIncome int64      `gorm:"column:minimum_income;not null" json:"minimum_income_threshold"`
	PaymentCap    int64      `gorm:"column:payment_cap;not null" json:"payment_cap"`
	TotalRaised   int64      `gorm:"column:total_raised;not null;default:0" json:"total_raised"`
	TotalPaid     int64      `gorm:"column:total_paid;not null;default:0" json:"total_paid"`
	UnitsSold     int64      `gorm:"column:units_sold;not null;default:0" json:"units_sold"`
	IsActive      bool       `gorm:"column:is_active;not null;default:false" json:"is_active"`
	ActivatedAt   *time.Time `gorm:"column:activated_at" json:"activated_at"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (ISA) TableName() string {
	return "isas"
}

// UnitsAvailable is the unsold remainder of the fixed supply.
func (i *ISA) UnitsAvailable() int64 {
	return TotalSupply - i.UnitsSold
}

// RemainingCap is what the student can still be charged; never negative.
func (i *ISA) RemainingCap() int64 {
	if r := i.PaymentCap - i.TotalPaid; r > 0 {
		return r
	}
	return 0
}
