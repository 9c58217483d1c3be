package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"investtracker/src/model"
)

type userFinder interface {
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

type portfolioStore interface {
	Create(ctx context.Context, portfolio *model.Portfolio) error
	FindByUserID(ctx context.Context, userID uint) (*model.Portfolio, error)
}

// CreatePortfolioHandler returns a handler that opens the single portfolio
// for a user.
func CreatePortfolioHandler(users userFinder, portfolios portfolioStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseIDParam(r, "userID")
		if err != nil {
			detailError(w, http.StatusBadRequest, "Invalid user id.")
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch user")
			internalError(w)
			return
		}
		if user == nil {
			detailError(w, http.StatusBadRequest, "No user exists with this id.")
			return
		}

		existing, err := portfolios.FindByUserID(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch portfolio")
			internalError(w)
			return
		}
		if existing != nil {
			detailError(w, http.StatusBadRequest, "User already has a portfolio.")
			return
		}

		portfolio := &model.Portfolio{UserID: userID}
		if err := portfolios.Create(r.Context(), portfolio); err != nil {
			logger.WithError(err).Error("failed to create portfolio")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, portfolio)
	}
}

// GetPortfolioHandler returns a handler that fetches a user's portfolio.
func GetPortfolioHandler(users userFinder, portfolios portfolioStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseIDParam(r, "userID")
		if err != nil {
			detailError(w, http.StatusBadRequest, "Invalid user id.")
			return
		}

		user, err := users.FindByID(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch user")
			internalError(w)
			return
		}
		if user == nil {
			detailError(w, http.StatusBadRequest, "No user exists with this id.")
			return
		}

		portfolio, err := portfolios.FindByUserID(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch portfolio")
			internalError(w)
			return
		}
		if portfolio == nil {
			detailError(w, http.StatusBadRequest, "User does not have a portfolio.")
			return
		}

		writeJSON(w, http.StatusOK, portfolio)
	}
}
