package services

import (
	"net/http"
)

// FriendError is a precondition violation in the friend workflow. Nothing has
// been written when one is returned.
type FriendError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *FriendError) Error() string {
	return e.Message
}

// Is matches on Code so wrapped copies still compare equal to the sentinels.
func (e *FriendError) Is(target error) bool {
	t, ok := target.(*FriendError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidTarget         = &FriendError{"INVALID_TARGET", "cannot send a friend request to yourself", http.StatusBadRequest}
	ErrAlreadyFriends        = &FriendError{"ALREADY_FRIENDS", "you are already friends with this user", http.StatusConflict}
	ErrRequestAlreadyPending = &FriendError{"REQUEST_ALREADY_PENDING", "a friend request to this user is already pending", http.StatusConflict}
	// ErrIncomingRequestExists is advisory: the caller should offer accept/reject instead.
	ErrIncomingRequestExists = &FriendError{"INCOMING_REQUEST_EXISTS", "this user has already sent you a friend request", http.StatusConflict}
	ErrRecipientNotFound     = &FriendError{"RECIPIENT_NOT_FOUND", "user not found", http.StatusNotFound}
	ErrNoPendingRequest      = &FriendError{"NO_PENDING_REQUEST", "no pending friend request to cancel", http.StatusNotFound}
	ErrRequestNotFound       = &FriendError{"REQUEST_NOT_FOUND", "friend request not found", http.StatusNotFound}
	ErrRequestNotPending     = &FriendError{"REQUEST_NOT_PENDING", "friend request was already answered", http.StatusConflict}
	ErrNotRequestRecipient   = &FriendError{"NOT_REQUEST_RECIPIENT", "only the recipient can respond to this request", http.StatusForbidden}
	ErrNotFriends            = &FriendError{"NOT_FRIENDS", "you are not friends with this user", http.StatusNotFound}
)
