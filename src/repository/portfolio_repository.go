package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investtracker/src/model"
)

// PortfolioRepository handles persistence for per-user portfolios.
type PortfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new repository instance bound to the given
// DB.
func NewPortfolioRepository(db *gorm.DB) *PortfolioRepository {
	logger.WithField("component", "PortfolioRepository").
		Debug("Creating new PortfolioRepository")

	return &PortfolioRepository{db: db}
}

// Create inserts a new portfolio. The unique index on user_id enforces the
// one-portfolio-per-user invariant at the engine level.
func (r *PortfolioRepository) Create(
	ctx context.Context,
	portfolio *model.Portfolio,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":    "PortfolioRepository",
		"op":      "Create",
		"user_id": portfolio.UserID,
	}).Debug("Creating new portfolio")

	err := r.db.WithContext(ctx).Create(portfolio).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PortfolioRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create portfolio")

		return err
	}

	return nil
}

// FindByUserID fetches the portfolio owned by the given user.
// Returns (nil, nil) if the user has no portfolio.
func (r *PortfolioRepository) FindByUserID(
	ctx context.Context,
	userID uint,
) (*model.Portfolio, error) {

	var portfolio model.Portfolio

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&portfolio).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "PortfolioRepository",
			"op":      "FindByUserID",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch portfolio by user ID")

		return nil, err
	}

	return &portfolio, nil
}
