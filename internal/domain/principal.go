package domain

import "time"

// Principal is a caller identity (student or investor) that can open a session.
type Principal struct {
	Principal    string    `gorm:"column:principal;size:128;primaryKey" json:"principal"`
	DisplayName  string    `gorm:"column:display_name;size:128" json:"display_name"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Principal) TableName() string {
	return "principals"
}
