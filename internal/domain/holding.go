package domain

import "time"

// TokenHolding is an investor's unit balance in one ISA, keyed by (isa_id, investor).
// A missing row reads as a zero balance.
type TokenHolding struct {
	ISAID     uint64    `gorm:"column:isa_id;primaryKey;autoIncrement:false" json:"isa_id"`
	Investor  string    `gorm:"column:investor;size:128;primaryKey" json:"investor"`
	Balance   int64     `gorm:"column:balance;not null;default:0" json:"balance"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (TokenHolding) TableName() string {
	return "token_holdings"
}

// ShareBP is the holder's share of the repayment stream in basis points.
// With a supply of 10,000 units one unit is exactly one basis point.
func (h *TokenHolding) ShareBP() int64 {
	return h.Balance * BasisPoints / TotalSupply
}
