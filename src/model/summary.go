package model

// Summary is the per-user aggregate record, created together with the user
// and recomputed on demand from the portfolio's assets.
type Summary struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UserID       uint    `gorm:"uniqueIndex;not null" json:"user_id"`
	Invested     float64 `json:"invested"`
	CurrentValue float64 `json:"current_value"`
	ProfitLoss   float64 `json:"profit_loss"`
}

func (Summary) TableName() string {
	return "summaries"
}
