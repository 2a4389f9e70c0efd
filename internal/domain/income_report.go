package domain

import "time"

// IncomeReport is one student declaration for one period, keyed by (isa_id, period).
type IncomeReport struct {
	ISAID          uint64    `gorm:"column:isa_id;primaryKey;autoIncrement:false" json:"isa_id"`
	Period         int64     `gorm:"column:period;primaryKey;autoIncrement:false" json:"period"`
	ReportedIncome int64     `gorm:"column:reported_income;not null" json:"reported_income"`
	PaymentDue     int64     `gorm:"column:payment_due;not null" json:"payment_due"`
	PaymentMade    int64     `gorm:"column:payment_made;not null" json:"payment_made"`
	PlatformFee    int64     `gorm:"column:platform_fee;not null;default:0" json:"platform_fee"`
	ReportedAt     time.Time `gorm:"column:reported_at;autoCreateTime" json:"reported_at"`
}

func (IncomeReport) TableName() string {
	return "income_reports"
}
