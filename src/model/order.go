package model

import "time"

const (
	OrderTypeBuy  = "buy"
	OrderTypeSell = "sell"
)

// Order is a buy/sell record owned by a user. UserID is fixed at creation
// and never updated afterwards.
type Order struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	InstrumentID uint      `gorm:"index;not null" json:"instrument_id"`
	Type         string    `gorm:"size:10;not null" json:"type"`
	Date         time.Time `json:"date"`
	Volume       float64   `json:"volume"`
	Price        float64   `json:"price"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderCreate is the payload for recording a new order.
type OrderCreate struct {
	InstrumentID uint      `json:"instrument_id"`
	Type         string    `json:"type"`
	Date         time.Time `json:"date"`
	Volume       float64   `json:"volume"`
	Price        float64   `json:"price"`
}

// OrderUpdate carries optional changes; nil fields are left untouched.
type OrderUpdate struct {
	Type   *string    `json:"type,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
	Volume *float64   `json:"volume,omitempty"`
	Price  *float64   `json:"price,omitempty"`
}

// OrdersPublic is the list envelope for orders. Count is the size of the
// filtered result set, unlike the users listing where the count ignores
// filters.
type OrdersPublic struct {
	Data  []Order `json:"data"`
	Count int     `json:"count"`
}
