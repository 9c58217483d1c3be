package handler

import (
	"context"
	"net/http"
	"strconv"

	logger "github.com/sirupsen/logrus"

	"investtracker/src/model"
	"investtracker/src/repository"
	"investtracker/src/security"
)

type userStore interface {
	List(ctx context.Context, options repository.UserListOptions) ([]model.User, int64, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	CreateWithSummary(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	DeleteCascade(ctx context.Context, user *model.User) error
}

// ListUsersHandler returns a handler that lists users with skip/limit
// pagination and an optional email or username filter. Email takes priority
// when both are given. The count in the envelope is the total number of user
// rows, not the size of the filtered page.
func ListUsersHandler(users userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		options := repository.UserListOptions{Limit: 100}

		if skipParam := r.URL.Query().Get("skip"); skipParam != "" {
			parsed, err := strconv.Atoi(skipParam)
			if err != nil || parsed < 0 {
				detailError(w, http.StatusBadRequest, "Invalid skip parameter.")
				return
			}
			options.Skip = parsed
		}

		if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
			parsed, err := strconv.Atoi(limitParam)
			if err != nil || parsed <= 0 {
				detailError(w, http.StatusBadRequest, "Invalid limit parameter.")
				return
			}
			options.Limit = parsed
		}

		if email := r.URL.Query().Get("email"); email != "" {
			options.Email = &email
		} else if username := r.URL.Query().Get("username"); username != "" {
			options.Username = &username
		}

		data, count, err := users.List(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to list users")
			internalError(w)
			return
		}

		if data == nil {
			data = []model.User{}
		}
		writeJSON(w, http.StatusOK, model.UsersPublic{Data: data, Count: count})
	}
}

// CreateUserHandler returns a handler for signup. It rejects duplicate emails
// and creates the user and its summary as one transaction.
func CreateUserHandler(users userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload model.UserCreate
		if err := decodeBody(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid user create payload")
			detailError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		existing, err := users.FindByEmail(r.Context(), payload.Email)
		if err != nil {
			logger.WithError(err).Error("failed to check for existing user")
			internalError(w)
			return
		}
		if existing != nil {
			detailError(w, http.StatusBadRequest,
				"The user with this email already exists in the system.")
			return
		}

		hashed, err := security.HashPassword(payload.Password)
		if err != nil {
			logger.WithError(err).Error("failed to hash password")
			internalError(w)
			return
		}

		user := &model.User{
			Email:          payload.Email,
			Username:       payload.Username,
			HashedPassword: hashed,
		}
		if err := users.CreateWithSummary(r.Context(), user); err != nil {
			logger.WithError(err).Error("failed to create user")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// GetUserHandler returns a handler that fetches a single user by id.
func GetUserHandler(users userStore) http.HandlerFunc {
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

		writeJSON(w, http.StatusOK, user)
	}
}

// UpdateUserHandler returns a handler for partial user updates. At least one
// of username/password must be supplied; both changes apply to the same
// fetched user instance in a single save.
func UpdateUserHandler(users userStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := parseIDParam(r, "userID")
		if err != nil {
			detailError(w, http.StatusBadRequest, "Invalid user id.")
			return
		}

		var payload model.UserUpdate
		if err := decodeBody(r, &payload); err != nil {
			logger.WithError(err).Warn("invalid user update payload")
			detailError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}

		if payload.Username == nil && payload.Password == nil {
			detailError(w, http.StatusBadRequest, "No user details to update.")
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

		if payload.Username != nil {
			user.Username = *payload.Username
		}
		if payload.Password != nil {
			hashed, err := security.HashPassword(*payload.Password)
			if err != nil {
				logger.WithError(err).Error("failed to hash password")
				internalError(w)
				return
			}
			user.HashedPassword = hashed
		}

		if err := users.Update(r.Context(), user); err != nil {
			logger.WithError(err).Error("failed to update user")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

// DeleteUserHandler returns a handler that deletes a user and everything it
// owns: orders, portfolio assets, the portfolio, and the summary.
func DeleteUserHandler(users userStore) http.HandlerFunc {
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
			detailError(w, http.StatusBadRequest, "Unable to find user with id.")
			return
		}

		if err := users.DeleteCascade(r.Context(), user); err != nil {
			logger.WithError(err).Error("failed to delete user")
			internalError(w)
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}
