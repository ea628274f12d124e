package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pawsafety/pawsafety-backend/internal/repository"
	"github.com/pawsafety/pawsafety-backend/internal/services"
	"github.com/pawsafety/pawsafety-backend/pkg/logger"
	"github.com/pawsafety/pawsafety-backend/pkg/middleware"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("Failed to encode response")
	}
}

// writeError maps workflow errors to their status and code; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var fe *services.FriendError
	switch {
	case errors.As(err, &fe):
		writeJSON(w, fe.HTTPStatus, errorResponse{Code: fe.Code, Message: fe.Message})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: "not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL_ERROR", Message: "something went wrong, please try again"})
	}
}

// sessionFromRequest builds the caller session from the authenticated claims.
func sessionFromRequest(w http.ResponseWriter, r *http.Request) (services.Session, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return services.Session{}, false
	}
	return services.Session{UserID: claims.UserID}, true
}
