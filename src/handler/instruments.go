package handler

import (
	"context"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"investtracker/src/model"
)

type instrumentStore interface {
	Create(ctx context.Context, instrument *model.Instrument) error
	FindByID(ctx context.Context, id uint) (*model.Instrument, error)
	FindBySymbol(ctx context.Context, symbol string) (*model.Instrument, error)
	Delete(ctx context.Context, instrument *model.Instrument) error
}

// CreateInstrumentHandler returns a handler that registers an instrument.
// Symbols are unique; a duplicate is rejected before hitting the constraint.
func CreateInstrumentHandler(instruments instrumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.InstrumentCreate
		if err := decodeBody(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid instrument create payload")
			detailError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		if payload.Symbol == "" {
			detailError(w, http.StatusBadRequest, "Symbol is required.")
			return
		}

		existing, err := instruments.FindBySymbol(r.Context(), payload.Symbol)
		if err != nil {
			logger.WithError(err).Error("failed to check for existing instrument")
			internalError(w)
			return
		}
		if existing != nil {
			detailError(w, http.StatusBadRequest,
				"An instrument with this symbol already exists.")
			return
		}

		instrument := &model.Instrument{
			Symbol:   payload.Symbol,
			Open:     payload.Open,
			High:     payload.High,
			Low:      payload.Low,
			Close:    payload.Close,
			Currency: payload.Currency,
		}
		if err := instruments.Create(r.Context(), instrument); err != nil {
			logger.WithError(err).Error("failed to create instrument")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, instrument)
	}
}

// GetInstrumentHandler returns a handler that fetches one instrument by id.
func GetInstrumentHandler(instruments instrumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instrumentID, err := parseIDParam(r, "instrumentID")
		if err != nil {
			detailError(w, http.StatusBadRequest, "Invalid instrument id.")
			return
		}

		instrument, err := instruments.FindByID(r.Context(), instrumentID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch instrument")
			internalError(w)
			return
		}
		if instrument == nil {
			detailError(w, http.StatusBadRequest, "No instrument exists with this id.")
			return
		}

		writeJSON(w, http.StatusOK, instrument)
	}
}

// DeleteInstrumentHandler returns a handler that deletes one instrument and
// returns its pre-deletion representation.
func DeleteInstrumentHandler(instruments instrumentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		instrumentID, err := parseIDParam(r, "instrumentID")
		if err != nil {
			detailError(w, http.StatusBadRequest, "Invalid instrument id.")
			return
		}

		instrument, err := instruments.FindByID(r.Context(), instrumentID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch instrument")
			internalError(w)
			return
		}
		if instrument == nil {
			detailError(w, http.StatusBadRequest, "No instrument exists with this id.")
			return
		}

		if err := instruments.Delete(r.Context(), instrument); err != nil {
			logger.WithError(err).Error("failed to delete instrument")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, instrument)
	}
}
