package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pawsafety/pawsafety-backend/internal/services"
	"github.com/pawsafety/pawsafety-backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

// FriendHandler manages HTTP endpoints related to friend requests.
type FriendHandler struct {
	Service *services.FriendService
}

// NewFriendHandler initializes a new FriendHandler.
func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{Service: service}
}

// SendFriendRequestHandler allows a user to send a friend request.
func (h *FriendHandler) SendFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	recipientID := mux.Vars(r)["id"]

	request, err := h.Service.SendFriendRequest(r.Context(), sess, recipientID)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"userID": sess.UserID, "recipientID": recipientID}).
			WithError(err).Warn("Failed to send friend request")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, request)
}

// CancelFriendRequestHandler withdraws the caller's pending request.
func (h *FriendHandler) CancelFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	recipientID := mux.Vars(r)["id"]

	if err := h.Service.CancelFriendRequest(r.Context(), sess, recipientID); err != nil {
		logger.Log.WithField("userID", sess.UserID).WithError(err).Warn("Failed to cancel friend request")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend request cancelled"})
}

// RespondToFriendRequestHandler allows accepting or rejecting a friend request.
func (h *FriendHandler) RespondToFriendRequestHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	requestID := mux.Vars(r)["id"]

	var body struct {
		Accept *bool `json:"accept"`
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Accept == nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	request, err := h.Service.RespondToRequest(r.Context(), sess, requestID, *body.Accept)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"userID": sess.UserID, "requestID": requestID}).
			WithError(err).Error("Failed to respond to friend request")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, request)
}

// GetPendingRequestsHandler shows all incoming friend requests.
func (h *FriendHandler) GetPendingRequestsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	requests, err := h.Service.GetPendingRequests(r.Context(), sess.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to get pending requests: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// GetSentRequestsHandler shows the caller's outgoing pending requests.
func (h *FriendHandler) GetSentRequestsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	requests, err := h.Service.GetSentRequests(r.Context(), sess.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to get sent requests: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// GetFriendsHandler returns a list of user's friends.
func (h *FriendHandler) GetFriendsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	friends, err := h.Service.GetFriends(r.Context(), sess.UserID)
	if err != nil {
		logger.Log.Errorf("Failed to fetch friends for user %s: %v", sess.UserID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, friends)
}

// RemoveFriendHandler ends a friendship for both users.
func (h *FriendHandler) RemoveFriendHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.Service.Unfriend(r.Context(), sess, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Friend removed"})
}

// GetRelationshipHandler returns the caller's relationship state with another user.
func (h *FriendHandler) GetRelationshipHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}
	targetID := mux.Vars(r)["id"]

	state, err := h.Service.RelationshipWith(r.Context(), sess, targetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"userId": targetID, "state": string(state)})
}
