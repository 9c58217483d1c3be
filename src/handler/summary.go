package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"investtracker/src/model"
	"investtracker/src/service"
)

type summaryStore interface {
	FindByUserID(ctx context.Context, userID uint) (*model.Summary, error)
	Update(ctx context.Context, summary *model.Summary) error
}

// GetSummaryHandler returns a handler that fetches a user's summary record.
func GetSummaryHandler(users userFinder, summaries summaryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := resolveUser(w, r, users)
		if user == nil {
			return
		}

		summary, err := summaries.FindByUserID(r.Context(), user.ID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch summary")
			internalError(w)
			return
		}
		if summary == nil {
			detailError(w, http.StatusBadRequest, "No summary exists for this user.")
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// RefreshSummaryHandler returns a handler that reprices the user's portfolio
// and stores the result on the summary record.
func RefreshSummaryHandler(
	users userFinder,
	portfolios portfolioStore,
	assets assetStore,
	instruments instrumentFinder,
	summaries summaryStore,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := resolvePortfolio(w, r, users, portfolios)
		if portfolio == nil {
			return
		}

		summary, err := summaries.FindByUserID(r.Context(), portfolio.UserID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch summary")
			internalError(w)
			return
		}
		if summary == nil {
			detailError(w, http.StatusBadRequest, "No summary exists for this user.")
			return
		}

		held, err := assets.FindByPortfolio(r.Context(), portfolio.ID)
		if err != nil {
			logger.WithError(err).Error("failed to list assets")
			internalError(w)
			return
		}

		priced := make(map[uint]model.Instrument, len(held))
		for _, asset := range held {
			if _, ok := priced[asset.InstrumentID]; ok {
				continue
			}
			instrument, err := instruments.FindByID(r.Context(), asset.InstrumentID)
			if err != nil {
				logger.WithError(err).Error("failed to fetch instrument")
				internalError(w)
				return
			}
			if instrument != nil {
				priced[asset.InstrumentID] = *instrument
			}
		}

		valuation := service.ComputeValuation(held, priced)
		summary.Invested = valuation.Invested
		summary.CurrentValue = valuation.CurrentValue
		summary.ProfitLoss = valuation.ProfitLoss

		if err := summaries.Update(r.Context(), summary); err != nil {
			logger.WithError(err).Error("failed to update summary")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}
