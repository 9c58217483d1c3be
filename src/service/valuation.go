package service

import (
	"github.com/shopspring/decimal"

	"investtracker/src/model"
)

// Valuation is the result of pricing a portfolio's holdings.
type Valuation struct {
	Invested     float64
	CurrentValue float64
	ProfitLoss   float64
}

// ComputeValuation prices the given assets against the latest close of their
// instruments. Sums are carried in decimals and rounded to 2 places once, so
// per-asset float error does not accumulate. Assets whose instrument is
// missing from the map are skipped.
func ComputeValuation(assets []model.Asset, instruments map[uint]model.Instrument) Valuation {
	invested := decimal.Zero
	current := decimal.Zero

	for _, asset := range assets {
		volume := decimal.NewFromFloat(asset.Volume)
		invested = invested.Add(decimal.NewFromFloat(asset.BuyPrice).Mul(volume))

		instrument, ok := instruments[asset.InstrumentID]
		if !ok {
			continue
		}
		current = current.Add(decimal.NewFromFloat(instrument.Close).Mul(volume))
	}

	invested = invested.Round(2)
	current = current.Round(2)

	return Valuation{
		Invested:     invested.InexactFloat64(),
		CurrentValue: current.InexactFloat64(),
		ProfitLoss:   current.Sub(invested).Round(2).InexactFloat64(),
	}
}
