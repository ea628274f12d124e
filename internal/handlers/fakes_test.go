package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/repository"
	"github.com/pawsafety/pawsafety-backend/internal/services"
	jwtutil "github.com/pawsafety/pawsafety-backend/pkg/jwt"
	"github.com/pawsafety/pawsafety-backend/pkg/middleware"
)

type fakeStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	requests      map[string]models.FriendRequest
	friendships   map[string]models.Friendship
	notifications map[string]models.Notification
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		users:         map[string]*models.User{},
		requests:      map[string]models.FriendRequest{},
		friendships:   map[string]models.Friendship{},
		notifications: map[string]models.Notification{},
	}
	for _, id := range []string{"alice", "bob"} {
		s.users[id] = &models.User{ID: id, Name: strings.ToUpper(id[:1]) + id[1:], Email: id + "@example.com", Status: models.AccountActive}
	}
	return s
}

func (s *fakeStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to find user by id: %w", repository.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (s *fakeStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *fakeStore) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = *req
	return nil
}

func (s *fakeStore) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (s *fakeStore) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus, respondedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	r.RespondedAt = &respondedAt
	s.requests[id] = r
	return nil
}

func (s *fakeStore) DeleteRequest(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.requests, id)
	return nil
}

func (s *fakeStore) GetIncomingPending(ctx context.Context, toUserID string) ([]models.FriendRequest, error) {
	return s.filterRequests(func(r models.FriendRequest) bool { return r.ToUserID == toUserID && r.IsPending() }), nil
}

func (s *fakeStore) GetSentRequests(ctx context.Context, fromUserID string) ([]models.FriendRequest, error) {
	return s.filterRequests(func(r models.FriendRequest) bool { return r.FromUserID == fromUserID }), nil
}

func (s *fakeStore) filterRequests(keep func(models.FriendRequest) bool) []models.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, r := range s.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *fakeStore) GetFriendship(ctx context.Context, ownerID, friendID string) (*models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.friendships[models.FriendshipID(ownerID, friendID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (s *fakeStore) GetFriendsByUser(ctx context.Context, userID string) ([]models.Friendship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Friendship
	for _, f := range s.friendships {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (s *fakeStore) CreatePair(ctx context.Context, a, b *models.Friendship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendships[a.ID] = *a
	s.friendships[b.ID] = *b
	return nil
}

func (s *fakeStore) DeletePair(ctx context.Context, userA, userB string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.friendships, models.FriendshipID(userA, userB))
	delete(s.friendships, models.FriendshipID(userB, userA))
	return nil
}

func (s *fakeStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[n.ID] = *n
	return nil
}

func (s *fakeStore) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.FindByUserAndType(ctx, userID, "")
}

func (s *fakeStore) FindByUserAndType(ctx context.Context, userID, notifType string) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID == userID && (notifType == "" || n.Type == notifType) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeStore) MarkAsRead(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	s.notifications[id] = n
	return nil
}

func (s *fakeStore) DeleteNotification(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

func (s *fakeStore) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	return 0, nil
}

func (s *fakeStore) GetToken(ctx context.Context, userID string) (string, error) {
	return "", repository.ErrNotFound
}

type testServer struct {
	store  *fakeStore
	router *mux.Router
}

// newTestServer wires real services over the fake store. Requests are
// authenticated as the user named in the X-Test-User header.
func newTestServer() *testServer {
	store := newFakeStore()
	notifications := services.NewNotificationService(store, store, nil, time.Hour)
	friends := services.NewFriendService(store, store, store, notifications)
	users := services.NewUserService(store)

	friendHandler := NewFriendHandler(friends)
	notificationHandler := NewNotificationHandler(notifications)
	userHandler := NewUserHandler(users, friends)

	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id := req.Header.Get("X-Test-User"); id != "" {
				req = req.WithContext(middleware.WithUser(req.Context(), &jwtutil.Claims{UserID: id, Role: models.RoleUser}))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.HandleFunc("/friends", friendHandler.GetFriendsHandler).Methods("GET")
	r.HandleFunc("/friends/requests", friendHandler.GetPendingRequestsHandler).Methods("GET")
	r.HandleFunc("/friends/requests/sent", friendHandler.GetSentRequestsHandler).Methods("GET")
	r.HandleFunc("/friends/requests/{id}/respond", friendHandler.RespondToFriendRequestHandler).Methods("POST")
	r.HandleFunc("/friends/status/{id}", friendHandler.GetRelationshipHandler).Methods("GET")
	r.HandleFunc("/friends/{id}/request", friendHandler.SendFriendRequestHandler).Methods("POST")
	r.HandleFunc("/friends/{id}/request", friendHandler.CancelFriendRequestHandler).Methods("DELETE")
	r.HandleFunc("/friends/{id}", friendHandler.RemoveFriendHandler).Methods("DELETE")
	r.HandleFunc("/notifications", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	r.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	r.HandleFunc("/notifications/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")
	r.HandleFunc("/users/{id}", userHandler.GetUserHandler).Methods("GET")

	return &testServer{store: store, router: r}
}
