package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investtracker/src/model"
)

// AssetRepository handles persistence for portfolio holdings.
type AssetRepository struct {
	db *gorm.DB
}

// NewAssetRepository creates a new repository instance bound to the given DB.
func NewAssetRepository(db *gorm.DB) *AssetRepository {
	logger.WithField("component", "AssetRepository").
		Debug("Creating new AssetRepository")

	return &AssetRepository{db: db}
}

// Create inserts a new asset. The given asset is updated with the generated
// ID.
func (r *AssetRepository) Create(
	ctx context.Context,
	asset *model.Asset,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":          "AssetRepository",
		"op":            "Create",
		"portfolio_id":  asset.PortfolioID,
		"instrument_id": asset.InstrumentID,
	}).Debug("Creating new asset")

	err := r.db.WithContext(ctx).Create(asset).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "AssetRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create asset")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "AssetRepository",
		"op":       "Create",
		"asset_id": asset.ID,
	}).Info("Asset created successfully")

	return nil
}

// FindByID fetches a single asset by its primary ID.
// Returns (nil, nil) if the asset is not found.
func (r *AssetRepository) FindByID(
	ctx context.Context,
	id uint,
) (*model.Asset, error) {

	var asset model.Asset

	err := r.db.WithContext(ctx).First(&asset, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "AssetRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch asset by ID")

		return nil, err
	}

	return &asset, nil
}

// FindByPortfolio returns all assets held in the given portfolio.
func (r *AssetRepository) FindByPortfolio(
	ctx context.Context,
	portfolioID uint,
) ([]model.Asset, error) {

	var assets []model.Asset

	err := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("id ASC").
		Find(&assets).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "AssetRepository",
			"op":           "FindByPortfolio",
			"portfolio_id": portfolioID,
		}).WithError(err).Error("Failed to fetch assets for portfolio")

		return nil, err
	}

	return assets, nil
}

// Update applies the non-nil fields of the update payload to the given asset
// and persists it. PortfolioID and InstrumentID are never touched.
func (r *AssetRepository) Update(
	ctx context.Context,
	asset *model.Asset,
	update model.AssetUpdate,
) error {

	if update.BuyPrice != nil {
		asset.BuyPrice = *update.BuyPrice
	}
	if update.Volume != nil {
		asset.Volume = *update.Volume
	}

	err := r.db.WithContext(ctx).Save(asset).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "AssetRepository",
			"op":       "Update",
			"asset_id": asset.ID,
		}).WithError(err).Error("Failed to update asset")

		return err
	}

	return nil
}

// Delete removes the given asset row.
func (r *AssetRepository) Delete(
	ctx context.Context,
	asset *model.Asset,
) error {

	err := r.db.WithContext(ctx).Delete(asset).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "AssetRepository",
			"op":       "Delete",
			"asset_id": asset.ID,
		}).WithError(err).Error("Failed to delete asset")

		return err
	}

	return nil
}

// DeleteByPortfolio removes every asset in the given portfolio inside one
// transaction and returns the deleted rows. Deleting an empty portfolio is a
// no-op that returns an empty slice.
func (r *AssetRepository) DeleteByPortfolio(
	ctx context.Context,
	portfolioID uint,
) ([]model.Asset, error) {

	logger.WithFields(map[string]interface{}{
		"repo":         "AssetRepository",
		"op":           "DeleteByPortfolio",
		"portfolio_id": portfolioID,
	}).Info("Deleting all assets in portfolio")

	var deleted []model.Asset

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("portfolio_id = ?", portfolioID).
			Order("id ASC").
			Find(&deleted).Error; err != nil {
			return err
		}

		if len(deleted) == 0 {
			return nil
		}

		return tx.Where("portfolio_id = ?", portfolioID).
			Delete(&model.Asset{}).Error
	})

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":         "AssetRepository",
			"op":           "DeleteByPortfolio",
			"portfolio_id": portfolioID,
		}).WithError(err).Error("Failed to delete assets for portfolio")

		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":         "AssetRepository",
		"op":           "DeleteByPortfolio",
		"portfolio_id": portfolioID,
		"rows_deleted": len(deleted),
	}).Info("Portfolio assets deleted")

	return deleted, nil
}
