package model

// Instrument is a tradable security with its latest OHLC prices.
type Instrument struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Symbol   string  `gorm:"size:20;uniqueIndex;not null" json:"symbol"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Currency string  `gorm:"size:10" json:"currency"`
}

func (Instrument) TableName() string {
	return "instruments"
}

// InstrumentCreate is the payload for registering a new instrument.
type InstrumentCreate struct {
	Symbol   string  `json:"symbol"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Currency string  `json:"currency"`
}
