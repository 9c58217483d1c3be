package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"investtracker/src/model"
)

type assetStore interface {
	Create(ctx context.Context, asset *model.Asset) error
	FindByID(ctx context.Context, id uint) (*model.Asset, error)
	FindByPortfolio(ctx context.Context, portfolioID uint) ([]model.Asset, error)
	Update(ctx context.Context, asset *model.Asset, update model.AssetUpdate) error
	Delete(ctx context.Context, asset *model.Asset) error
	DeleteByPortfolio(ctx context.Context, portfolioID uint) ([]model.Asset, error)
}

type instrumentFinder interface {
	FindByID(ctx context.Context, id uint) (*model.Instrument, error)
}

// resolvePortfolio validates the user id in the path and loads the user's
// portfolio. On failure it writes the error response and returns nil.
func resolvePortfolio(
	w http.ResponseWriter,
	r *http.Request,
	users userFinder,
	portfolios portfolioStore,
) *model.Portfolio {

	userID, err := parseIDParam(r, "userID")
	if err != nil {
		detailError(w, http.StatusBadRequest, "Invalid user id.")
		return nil
	}

	user, err := users.FindByID(r.Context(), userID)
	if err != nil {
		logger.WithError(err).Error("failed to fetch user")
		internalError(w)
		return nil
	}
	if user == nil {
		detailError(w, http.StatusBadRequest, "No user exists with this id.")
		return nil
	}

	portfolio, err := portfolios.FindByUserID(r.Context(), userID)
	if err != nil {
		logger.WithError(err).Error("failed to fetch portfolio")
		internalError(w)
		return nil
	}
	if portfolio == nil {
		detailError(w, http.StatusBadRequest, "User does not have a portfolio.")
		return nil
	}

	return portfolio
}

// resolveAsset loads an asset by the path param and verifies it belongs to
// the given portfolio. On failure it writes the error response and returns
// nil.
func resolveAsset(
	w http.ResponseWriter,
	r *http.Request,
	assets assetStore,
	portfolio *model.Portfolio,
) *model.Asset {

	assetID, err := parseIDParam(r, "assetID")
	if err != nil {
		detailError(w, http.StatusBadRequest, "Invalid asset id.")
		return nil
	}

	asset, err := assets.FindByID(r.Context(), assetID)
	if err != nil {
		logger.WithError(err).Error("failed to fetch asset")
		internalError(w)
		return nil
	}
	if asset == nil || asset.PortfolioID != portfolio.ID {
		detailError(w, http.StatusBadRequest, "No asset exists with this id.")
		return nil
	}

	return asset
}

// ListAssetsHandler returns a handler that lists the assets held in the
// user's portfolio.
func ListAssetsHandler(users userFinder, portfolios portfolioStore, assets assetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := resolvePortfolio(w, r, users, portfolios)
		if portfolio == nil {
			return
		}

		data, err := assets.FindByPortfolio(r.Context(), portfolio.ID)
		if err != nil {
			logger.WithError(err).Error("failed to list assets")
			internalError(w)
			return
		}

		if data == nil {
			data = []model.Asset{}
		}
		writeJSON(w, http.StatusOK, model.AssetsPublic{Data: data, Count: len(data)})
	}
}

// CreateAssetHandler returns a handler that adds a holding to the user's
// portfolio. The referenced instrument must exist.
func CreateAssetHandler(
	users userFinder,
	portfolios portfolioStore,
	instruments instrumentFinder,
	assets assetStore,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := resolvePortfolio(w, r, users, portfolios)
		if portfolio == nil {
			return
		}

		var payload model.AssetCreate
		if err := decodeBody(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid asset create payload")
			detailError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		instrument, err := instruments.FindByID(r.Context(), payload.InstrumentID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch instrument")
			internalError(w)
			return
		}
		if instrument == nil {
			detailError(w, http.StatusBadRequest, "No instrument exists with this id.")
			return
		}

		asset := &model.Asset{
			PortfolioID:  portfolio.ID,
			InstrumentID: instrument.ID,
			BuyDate:      payload.BuyDate,
			BuyPrice:     payload.BuyPrice,
			Volume:       payload.Volume,
		}
		if err := assets.Create(r.Context(), asset); err != nil {
			logger.WithError(err).Error("failed to create asset")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, asset)
	}
}

// DeleteAssetsHandler returns a handler that bulk-deletes every asset in the
// user's portfolio and returns the deleted rows. A second call returns an
// empty list.
func DeleteAssetsHandler(users userFinder, portfolios portfolioStore, assets assetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := resolvePortfolio(w, r, users, portfolios)
		if portfolio == nil {
			return
		}

		deleted, err := assets.DeleteByPortfolio(r.Context(), portfolio.ID)
		if err != nil {
			logger.WithError(err).Error("failed to delete assets")
			internalError(w)
			return
		}

		if deleted == nil {
			deleted = []model.Asset{}
		}
		writeJSON(w, http.StatusOK, model.AssetsPublic{Data: deleted, Count: len(deleted)})
	}
}

// GetAssetHandler returns a handler that fetches a single asset in the
// user's portfolio.
func GetAssetHandler(users userFinder, portfolios portfolioStore, assets assetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := resolvePortfolio(w, r, users, portfolios)
		if portfolio == nil {
			return
		}

		asset := resolveAsset(w, r, assets, portfolio)
		if asset == nil {
			return
		}

		writeJSON(w, http.StatusOK, asset)
	}
}

// UpdateAssetHandler returns a handler for partial updates of buy_price and
// volume. Fields absent from the payload are left untouched.
func UpdateAssetHandler(users userFinder, portfolios portfolioStore, assets assetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := resolvePortfolio(w, r, users, portfolios)
		if portfolio == nil {
			return
		}

		asset := resolveAsset(w, r, assets, portfolio)
		if asset == nil {
			return
		}

		var payload model.AssetUpdate
		if err := decodeBody(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid asset update payload")
			detailError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		if err := assets.Update(r.Context(), asset, payload); err != nil {
			logger.WithError(err).Error("failed to update asset")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, asset)
	}
}

// DeleteAssetHandler returns a handler that deletes one asset and returns
// its pre-deletion representation.
func DeleteAssetHandler(users userFinder, portfolios portfolioStore, assets assetStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		portfolio := resolvePortfolio(w, r, users, portfolios)
		if portfolio == nil {
			return
		}

		asset := resolveAsset(w, r, assets, portfolio)
		if asset == nil {
			return
		}

		if err := assets.Delete(r.Context(), asset); err != nil {
			logger.WithError(err).Error("failed to delete asset")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, asset)
	}
}
