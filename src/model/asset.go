package model

// Asset is a holding inside a portfolio: an instrument bought at a given
// date, price and volume. PortfolioID and InstrumentID are fixed at creation.
// BuyDate travels and is stored as a dd/mm/yyyy string.
type Asset struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	PortfolioID  uint    `gorm:"index;not null" json:"portfolio_id"`
	InstrumentID uint    `gorm:"index;not null" json:"instrument_id"`
	BuyDate      string  `gorm:"size:10" json:"buy_date"`
	BuyPrice     float64 `json:"buy_price"`
	Volume       float64 `json:"volume"`
}

func (Asset) TableName() string {
	return "assets"
}

// AssetCreate is the payload for adding a holding to a portfolio.
type AssetCreate struct {
	InstrumentID uint    `json:"instrument_id"`
	BuyDate      string  `json:"buy_date"`
	BuyPrice     float64 `json:"buy_price"`
	Volume       float64 `json:"volume"`
}

// AssetUpdate carries optional changes to the mutable asset fields; nil
// fields are left untouched.
type AssetUpdate struct {
	BuyPrice *float64 `json:"buy_price,omitempty"`
	Volume   *float64 `json:"volume,omitempty"`
}

// AssetsPublic is the list envelope for assets.
type AssetsPublic struct {
	Data  []Asset `json:"data"`
	Count int     `json:"count"`
}
