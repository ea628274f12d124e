package models

// RelationshipState is the observable state of an ordered (me, target) pair.
type RelationshipState string

const (
	StateNone            RelationshipState = "NONE"
	StateRequestSent     RelationshipState = "REQUEST_SENT"
	StateRequestReceived RelationshipState = "REQUEST_RECEIVED"
	StateFriends         RelationshipState = "FRIENDS"
)

// RelationshipSnapshot is the set of live lists a user's view is derived from.
type RelationshipSnapshot struct {
	UserID   string          `json:"userId"`
	Sent     []FriendRequest `json:"sent"`
	Incoming []FriendRequest `json:"incoming"`
	Friends  []Friendship    `json:"friends"`
}
