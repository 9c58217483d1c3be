package repository

import (
	"context"
	"errors"
	"time"

	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"investtracker/src/model"
)

// OrderRepository handles persistence for buy/sell order records.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new repository instance bound to the given DB.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	logger.WithField("component", "OrderRepository").
		Debug("Creating new OrderRepository")

	return &OrderRepository{db: db}
}

// OrderSearchOptions narrows the orders listing. Each optional filter maps to
// an explicit typed column comparison; nil filters are skipped.
type OrderSearchOptions struct {
	UserID       uint
	InstrumentID *uint
	StartDate    *time.Time
	EndDate      *time.Time
	Type         *string
}

// Create inserts a new order. The given order is updated with the generated
// ID.
func (r *OrderRepository) Create(
	ctx context.Context,
	order *model.Order,
) error {

	logger.WithFields(map[string]interface{}{
		"repo":    "OrderRepository",
		"op":      "Create",
		"user_id": order.UserID,
		"type":    order.Type,
		"volume":  order.Volume,
	}).Debug("Creating new order")

	err := r.db.WithContext(ctx).Create(order).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "OrderRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create order")

		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":     "OrderRepository",
		"op":       "Create",
		"order_id": order.ID,
	}).Info("Order created successfully")

	return nil
}

// FindByIDAndUser fetches a single order by its primary ID scoped to the
// owning user. Returns (nil, nil) if no such order exists for that user.
func (r *OrderRepository) FindByIDAndUser(
	ctx context.Context,
	userID uint,
	orderID uint,
) (*model.Order, error) {

	var order model.Order

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "FindByIDAndUser",
			"user_id":  userID,
			"order_id": orderID,
		}).WithError(err).Error("Failed to fetch order by ID and user")

		return nil, err
	}

	return &order, nil
}

// Search returns all orders of a user matching the given filters. The count
// reported to callers is the size of this result set.
func (r *OrderRepository) Search(
	ctx context.Context,
	options OrderSearchOptions,
) ([]model.Order, error) {

	logger.WithFields(map[string]interface{}{
		"repo":    "OrderRepository",
		"op":      "Search",
		"user_id": options.UserID,
	}).Debug("Searching orders")

	query := r.db.WithContext(ctx).
		Where("user_id = ?", options.UserID)

	if options.InstrumentID != nil {
		query = query.Where("instrument_id = ?", *options.InstrumentID)
	}
	if options.StartDate != nil {
		query = query.Where("date >= ?", *options.StartDate)
	}
	if options.EndDate != nil {
		query = query.Where("date <= ?", *options.EndDate)
	}
	if options.Type != nil {
		query = query.Where("type = ?", *options.Type)
	}

	var orders []model.Order
	if err := query.Order("date DESC, id DESC").Find(&orders).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "OrderRepository",
			"op":      "Search",
			"user_id": options.UserID,
		}).WithError(err).Error("Failed to search orders")

		return nil, err
	}

	return orders, nil
}

// Update applies the non-nil fields of the update payload to the given order
// and persists it. UserID and InstrumentID are never touched.
func (r *OrderRepository) Update(
	ctx context.Context,
	order *model.Order,
	update model.OrderUpdate,
) error {

	if update.Type != nil {
		order.Type = *update.Type
	}
	if update.Date != nil {
		order.Date = *update.Date
	}
	if update.Volume != nil {
		order.Volume = *update.Volume
	}
	if update.Price != nil {
		order.Price = *update.Price
	}

	err := r.db.WithContext(ctx).Save(order).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "Update",
			"order_id": order.ID,
		}).WithError(err).Error("Failed to update order")

		return err
	}

	return nil
}

// Delete removes the given order row.
func (r *OrderRepository) Delete(
	ctx context.Context,
	order *model.Order,
) error {

	err := r.db.WithContext(ctx).Delete(order).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":     "OrderRepository",
			"op":       "Delete",
			"order_id": order.ID,
		}).WithError(err).Error("Failed to delete order")

		return err
	}

	return nil
}
