package model

// Portfolio is the per-user container of assets. Each user has at most one.
type Portfolio struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
}

func (Portfolio) TableName() string {
	return "portfolios"
}
