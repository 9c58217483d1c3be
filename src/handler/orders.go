package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	logger "github.com/sirupsen/logrus"

	"investtracker/src/model"
	"investtracker/src/repository"
)

type orderStore interface {
	Create(ctx context.Context, order *model.Order) error
	FindByIDAndUser(ctx context.Context, userID, orderID uint) (*model.Order, error)
	Search(ctx context.Context, options repository.OrderSearchOptions) ([]model.Order, error)
	Update(ctx context.Context, order *model.Order, update model.OrderUpdate) error
	Delete(ctx context.Context, order *model.Order) error
}

// resolveUser validates the user id in the path and loads the user. On
// failure it writes the error response and returns nil.
func resolveUser(w http.ResponseWriter, r *http.Request, users userFinder) *model.User {
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

	return user
}

// ListOrdersHandler returns a handler that lists a user's orders with
// optional filters (instrument_id, start_date, end_date, type). Dates are
// RFC3339. The count in the envelope is the size of the filtered result.
func ListOrdersHandler(users userFinder, orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := resolveUser(w, r, users)
		if user == nil {
			return
		}

		options := repository.OrderSearchOptions{UserID: user.ID}

		if instrumentParam := r.URL.Query().Get("instrument_id"); instrumentParam != "" {
			id, err := strconv.ParseUint(instrumentParam, 10, 64)
			if err != nil {
				detailError(w, http.StatusBadRequest, "Invalid instrument_id parameter.")
				return
			}
			instrumentID := uint(id)
			options.InstrumentID = &instrumentID
		}

		if startParam := r.URL.Query().Get("start_date"); startParam != "" {
			parsed, err := time.Parse(time.RFC3339, startParam)
			if err != nil {
				detailError(w, http.StatusBadRequest, "Invalid start_date parameter.")
				return
			}
			options.StartDate = &parsed
		}

		if endParam := r.URL.Query().Get("end_date"); endParam != "" {
			parsed, err := time.Parse(time.RFC3339, endParam)
			if err != nil {
				detailError(w, http.StatusBadRequest, "Invalid end_date parameter.")
				return
			}
			options.EndDate = &parsed
		}

		if typeParam := r.URL.Query().Get("type"); typeParam != "" {
			options.Type = &typeParam
		}

		data, err := orders.Search(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to search orders")
			internalError(w)
			return
		}

		if data == nil {
			data = []model.Order{}
		}
		writeJSON(w, http.StatusOK, model.OrdersPublic{Data: data, Count: len(data)})
	}
}

// CreateOrderHandler returns a handler that records a buy/sell order for a
// user. The referenced instrument must exist.
func CreateOrderHandler(users userFinder, instruments instrumentFinder, orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := resolveUser(w, r, users)
		if user == nil {
			return
		}

		var payload model.OrderCreate
		if err := decodeBody(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid order create payload")
			detailError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		if payload.Type != model.OrderTypeBuy && payload.Type != model.OrderTypeSell {
			detailError(w, http.StatusBadRequest, "Order type must be buy or sell.")
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

		order := &model.Order{
			UserID:       user.ID,
			InstrumentID: instrument.ID,
			Type:         payload.Type,
			Date:         payload.Date,
			Volume:       payload.Volume,
			Price:        payload.Price,
		}
		if err := orders.Create(r.Context(), order); err != nil {
			logger.WithError(err).Error("failed to create order")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

// resolveOrder loads an order by the path param scoped to the given user. On
// failure it writes the error response and returns nil.
func resolveOrder(w http.ResponseWriter, r *http.Request, orders orderStore, user *model.User) *model.Order {
	orderID, err := parseIDParam(r, "orderID")
	if err != nil {
		detailError(w, http.StatusBadRequest, "Invalid order id.")
		return nil
	}

	order, err := orders.FindByIDAndUser(r.Context(), user.ID, orderID)
	if err != nil {
		logger.WithError(err).Error("failed to fetch order")
		internalError(w)
		return nil
	}
	if order == nil {
		detailError(w, http.StatusBadRequest, "No order exists with this id.")
		return nil
	}

	return order
}

// GetOrderHandler returns a handler that fetches one of the user's orders.
func GetOrderHandler(users userFinder, orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := resolveUser(w, r, users)
		if user == nil {
			return
		}

		order := resolveOrder(w, r, orders, user)
		if order == nil {
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

// UpdateOrderHandler returns a handler for partial order updates. Fields
// absent from the payload are left untouched; user_id never changes.
func UpdateOrderHandler(users userFinder, orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := resolveUser(w, r, users)
		if user == nil {
			return
		}

		order := resolveOrder(w, r, orders, user)
		if order == nil {
			return
		}

		var payload model.OrderUpdate
		if err := decodeBody(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid order update payload")
			detailError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		if payload.Type != nil &&
			*payload.Type != model.OrderTypeBuy && *payload.Type != model.OrderTypeSell {
			detailError(w, http.StatusBadRequest, "Order type must be buy or sell.")
			return
		}

		if err := orders.Update(r.Context(), order, payload); err != nil {
			logger.WithError(err).Error("failed to update order")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}

// DeleteOrderHandler returns a handler that deletes one order and returns
// its pre-deletion representation.
func DeleteOrderHandler(users userFinder, orders orderStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := resolveUser(w, r, users)
		if user == nil {
			return
		}

		order := resolveOrder(w, r, orders, user)
		if order == nil {
			return
		}

		if err := orders.Delete(r.Context(), order); err != nil {
			logger.WithError(err).Error("failed to delete order")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, order)
	}
}
