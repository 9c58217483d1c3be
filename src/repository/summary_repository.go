package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investtracker/src/model"
)

// SummaryRepository handles persistence for per-user summaries. Summary rows
// are created inside the user creation transaction; this repository only
// reads and updates them.
type SummaryRepository struct {
	db *gorm.DB
}

// NewSummaryRepository creates a new repository instance bound to the given
// DB.
func NewSummaryRepository(db *gorm.DB) *SummaryRepository {
	logger.WithField("component", "SummaryRepository").
		Debug("Creating new SummaryRepository")

	return &SummaryRepository{db: db}
}

// FindByUserID fetches the summary owned by the given user.
// Returns (nil, nil) if no summary exists.
func (r *SummaryRepository) FindByUserID(
	ctx context.Context,
	userID uint,
) (*model.Summary, error) {

	var summary model.Summary

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&summary).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":    "SummaryRepository",
			"op":      "FindByUserID",
			"user_id": userID,
		}).WithError(err).Error("Failed to fetch summary by user ID")

		return nil, err
	}

	return &summary, nil
}

// Update persists the current state of the given summary row.
func (r *SummaryRepository) Update(
	ctx context.Context,
	summary *model.Summary,
) error {

	err := r.db.WithContext(ctx).Save(summary).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "SummaryRepository",
			"op":         "Update",
			"summary_id": summary.ID,
		}).WithError(err).Error("Failed to update summary")

		return err
	}

	return nil
}
