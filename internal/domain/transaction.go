package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Ledger event types.
const (
	EventCreate   = "create"
	EventInvest   = "invest"
	EventTransfer = "transfer"
	EventPayment  = "payment"
	EventFee      = "fee"
)

// LedgerEvent is the append-only audit row written in the same transaction as the mutation it records.
type LedgerEvent struct {
	EventID       uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	Type          string         `gorm:"column:type;type:varchar(20);not null;index" json:"type"`
	ISAID         uint64         `gorm:"column:isa_id;not null;index" json:"isa_id"`
	FromPrincipal *string        `gorm:"column:from_principal;size:128;index" json:"from_principal"`
	ToPrincipal   *string        `gorm:"column:to_principal;size:128;index" json:"to_principal"`
	Units         int64          `gorm:"column:units;not null;default:0" json:"units"`
	Amount        int64          `gorm:"column:amount;not null;default:0" json:"amount"`
	Period        *int64         `gorm:"column:period" json:"period"`
	EventData     datatypes.JSON `gorm:"column:event_data" json:"event_data"`
	CreatedAt     time.Time      `gorm:"column:created_at;index" json:"created_at"`
}

func (LedgerEvent) TableName() string {
	return "ledger_events"
}

func (e *LedgerEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
