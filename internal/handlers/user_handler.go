package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/services"
	log "github.com/sirupsen/logrus"
)

// UserHandler serves public profiles along with the caller's relationship to them.
type UserHandler struct {
	Users   *services.UserService
	Friends *services.FriendService
}

func NewUserHandler(users *services.UserService, friends *services.FriendService) *UserHandler {
	return &UserHandler{Users: users, Friends: friends}
}

type profileResponse struct {
	models.PublicUser
	Relationship models.RelationshipState `json:"relationship"`
}

// GetUserHandler returns a user's public profile.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	userID := mux.Vars(r)["id"]

	user, err := h.Users.GetUserByID(r.Context(), userID)
	if err != nil {
		log.WithField("requestedUserID", userID).WithError(err).Warn("Failed to load profile")
		writeError(w, err)
		return
	}

	state := models.StateNone
	if userID != sess.UserID {
		state, err = h.Friends.RelationshipWith(r.Context(), sess, userID)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, profileResponse{PublicUser: user.Public(), Relationship: state})
}
