package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investtracker/src/model"
)

// InstrumentRepository handles persistence for instruments.
type InstrumentRepository struct {
	db *gorm.DB
}

// NewInstrumentRepository creates a new repository instance bound to the
// given DB.
func NewInstrumentRepository(db *gorm.DB) *InstrumentRepository {
	logger.WithField("component", "InstrumentRepository").
		Debug("Creating new InstrumentRepository")

	return &InstrumentRepository{db: db}
}

// Create inserts a new instrument. The given instrument is updated with the
// generated ID.
func (r *InstrumentRepository) Create(
	ctx context.Context,
	instrument *model.Instrument,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":   "InstrumentRepository",
		"op":     "Create",
		"symbol": instrument.Symbol,
	}).Debug("Creating new instrument")

	err := r.db.WithContext(ctx).Create(instrument).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "InstrumentRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create instrument")

		return err
	}

	return nil
}

// FindByID fetches a single instrument by its primary ID.
// Returns (nil, nil) if the instrument is not found.
func (r *InstrumentRepository) FindByID(
	ctx context.Context,
	id uint,
) (*model.Instrument, error) {

	var instrument model.Instrument

	err := r.db.WithContext(ctx).First(&instrument, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "InstrumentRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch instrument by ID")

		return nil, err
	}

	return &instrument, nil
}

// FindBySymbol fetches an instrument by its unique symbol.
// Returns (nil, nil) if not found.
func (r *InstrumentRepository) FindBySymbol(
	ctx context.Context,
	symbol string,
) (*model.Instrument, error) {

	var instrument model.Instrument

	err := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		First(&instrument).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":   "InstrumentRepository",
			"op":     "FindBySymbol",
			"symbol": symbol,
		}).WithError(err).Error("Failed to fetch instrument by symbol")

		return nil, err
	}

	return &instrument, nil
}

// List returns all registered instruments.
func (r *InstrumentRepository) List(
	ctx context.Context,
) ([]model.Instrument, error) {

	var instruments []model.Instrument

	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&instruments).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "InstrumentRepository",
			"op":   "List",
		}).WithError(err).Error("Failed to list instruments")

		return nil, err
	}

	return instruments, nil
}

// UpdatePrices replaces the OHLC prices of the given instrument ID.
func (r *InstrumentRepository) UpdatePrices(
	ctx context.Context,
	id uint,
	open, high, low, close float64,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":  "InstrumentRepository",
		"op":    "UpdatePrices",
		"id":    id,
		"close": close,
	}).Debug("Updating instrument prices")

	err := r.db.WithContext(ctx).
		Model(&model.Instrument{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"open":  open,
			"high":  high,
			"low":   low,
			"close": close,
		}).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "InstrumentRepository",
			"op":   "UpdatePrices",
			"id":   id,
		}).WithError(err).Error("Failed to update instrument prices")

		return err
	}

	return nil
}

// UpdateCurrency updates only the currency of the given instrument ID.
func (r *InstrumentRepository) UpdateCurrency(
	ctx context.Context,
	id uint,
	currency string,
) error {

	err := r.db.WithContext(ctx).
		Model(&model.Instrument{}).
		Where("id = ?", id).
		Update("currency", currency).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "InstrumentRepository",
			"op":       "UpdateCurrency",
			"id":       id,
			"currency": currency,
		}).WithError(err).Error("Failed to update instrument currency")

		return err
	}

	return nil
}

// Delete removes the given instrument row.
func (r *InstrumentRepository) Delete(
	ctx context.Context,
	instrument *model.Instrument,
) error {

	err := r.db.WithContext(ctx).Delete(instrument).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "InstrumentRepository",
			"op":   "Delete",
			"id":   instrument.ID,
		}).WithError(err).Error("Failed to delete instrument")

		return err
	}

	return nil
}
