package service

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"investtracker/src/connectors"
	"investtracker/src/model"
)

type instrumentPriceStore interface {
	List(ctx context.Context) ([]model.Instrument, error)
	UpdatePrices(ctx context.Context, id uint, open, high, low, close float64) error
}

type quoteGetter interface {
	GetQuote(ctx context.Context, symbol string) (*connectors.Quote, error)
}

// RefreshPrices fetches a fresh quote for every registered instrument and
// stores the new OHLC values. A failed symbol is logged and skipped so one
// bad quote does not block the rest; the last error is returned.
func RefreshPrices(ctx context.Context, instruments instrumentPriceStore, quotes quoteGetter) error {
	all, err := instruments.List(ctx)
	if err != nil {
		return err
	}

	logger.WithField("instruments", len(all)).Info("Refreshing instrument prices")

	var lastErr error
	for _, instrument := range all {
		quote, err := quotes.GetQuote(ctx, instrument.Symbol)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"symbol": instrument.Symbol,
			}).WithError(err).Error("Failed to fetch quote")
			lastErr = err
			continue
		}

		if err := instruments.UpdatePrices(ctx, instrument.ID,
			quote.Open, quote.High, quote.Low, quote.Close); err != nil {
			lastErr = err
			continue
		}

		logger.WithFields(map[string]interface{}{
			"symbol": instrument.Symbol,
			"close":  quote.Close,
		}).Info("Instrument prices updated")
	}

	return lastErr
}
