package domain

import "time"

// PlatformStateID is the primary key of the single platform_state row.
const PlatformStateID uint = 1

// PlatformState holds the process-wide counters: the next ISA id and the treasury balance.
type PlatformState struct {
	ID              uint      `gorm:"column:id;primaryKey;autoIncrement:false" json:"-"`
	NextISAID       uint64    `gorm:"column:next_isa_id;not null" json:"next_isa_id"`
	TreasuryBalance int64     `gorm:"column:treasury_balance;not null;default:0" json:"treasury_balance"`
	UpdatedAt       time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (PlatformState) TableName() string {
	return "platform_state"
}
