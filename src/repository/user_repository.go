package repository

import (
	"context"
	"errors"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investtracker/src/model"
)

// UserRepository handles persistence for users and the records created or
// destroyed alongside them.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new repository instance bound to the given DB.
func NewUserRepository(db *gorm.DB) *UserRepository {
	logger.WithField("component", "UserRepository").
		Debug("Creating new UserRepository")

	return &UserRepository{db: db}
}

// UserListOptions narrows and paginates the users listing. Email takes
// priority over Username when both are set.
type UserListOptions struct {
	Email    *string
	Username *string
	Skip     int
	Limit    int
}

// CreateWithSummary inserts the user together with its empty summary in one
// transaction; a failed summary insert rolls the user back. The given user is
// updated with the generated ID.
func (r *UserRepository) CreateWithSummary(
	ctx context.Context,
	user *model.User,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":  "UserRepository",
		"op":    "CreateWithSummary",
		"email": user.Email,
	}).Debug("Creating new user with summary")

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&model.Summary{UserID: user.ID}).Error
	})
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "UserRepository",
			"op":   "CreateWithSummary",
		}).WithError(err).Error("Failed to create user")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":    "UserRepository",
		"op":      "CreateWithSummary",
		"user_id": user.ID,
	}).Info("User created successfully")

	return nil
}

// FindByID fetches a single user by its primary ID.
// Returns (nil, nil) if the user is not found.
func (r *UserRepository) FindByID(
	ctx context.Context,
	id uint,
) (*model.User, error) {

	var user model.User

	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo": "UserRepository",
			"op":   "FindByID",
			"id":   id,
		}).WithError(err).Error("Failed to fetch user by ID")

		return nil, err
	}

	return &user, nil
}

// FindByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) FindByEmail(
	ctx context.Context,
	email string,
) (*model.User, error) {

	var user model.User

	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":  "UserRepository",
			"op":    "FindByEmail",
			"email": email,
		}).WithError(err).Error("Failed to fetch user by email")

		return nil, err
	}

	return &user, nil
}

// FindByUsername fetches a user by username. Returns (nil, nil) if not found.
func (r *UserRepository) FindByUsername(
	ctx context.Context,
	username string,
) (*model.User, error) {

	var user model.User

	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "UserRepository",
			"op":       "FindByUsername",
			"username": username,
		}).WithError(err).Error("Failed to fetch user by username")

		return nil, err
	}

	return &user, nil
}

// List returns a page of users plus the total number of user rows. The count
// deliberately ignores both the filter and the pagination; that is the
// listing contract.
func (r *UserRepository) List(
	ctx context.Context,
	options UserListOptions,
) ([]model.User, int64, error) {

	logger.WithFields(map[string]interface{}{
		"repo":  "UserRepository",
		"op":    "List",
		"skip":  options.Skip,
		"limit": options.Limit,
	}).Debug("Listing users")

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.User{}).
		Count(&total).Error; err != nil {

		logger.WithFields(map[string]interface{}{
			"repo": "UserRepository",
			"op":   "List",
		}).WithError(err).Error("Failed to count users")

		return nil, 0, err
	}

	limit := options.Limit
	if limit <= 0 {
		limit = 100
	}

	query := r.db.WithContext(ctx).
		Offset(options.Skip).
		Limit(limit)

	if options.Email != nil {
		query = query.Where("email = ?", *options.Email)
	} else if options.Username != nil {
		query = query.Where("username = ?", *options.Username)
	}

	var users []model.User
	if err := query.Find(&users).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "UserRepository",
			"op":   "List",
		}).WithError(err).Error("Failed to list users")

		return nil, 0, err
	}

	return users, total, nil
}

// Update persists the current state of the given user row.
func (r *UserRepository) Update(
	ctx context.Context,
	user *model.User,
) error {

	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "UserRepository",
			"op":      "Update",
			"user_id": user.ID,
		}).WithError(err).Error("Failed to update user")

		return err
	}

	return nil
}

// DeleteCascade removes the user's orders, portfolio assets, portfolio,
// summary and finally the user row itself in a single transaction.
func (r *UserRepository) DeleteCascade(
	ctx context.Context,
	user *model.User,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":    "UserRepository",
		"op":      "DeleteCascade",
		"user_id": user.ID,
	}).Info("Deleting user and all owned records")

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).
			Delete(&model.Order{}).Error; err != nil {
			return err
		}

		var portfolio model.Portfolio
		err := tx.Where("user_id = ?", user.ID).First(&portfolio).Error
		switch {
		case err == nil:
			if err := tx.Where("portfolio_id = ?", portfolio.ID).
				Delete(&model.Asset{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&portfolio).Error; err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).
			Delete(&model.Summary{}).Error; err != nil {
			return err
		}

		return tx.Delete(user).Error
	})
}
