package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/push"
	"github.com/pawsafety/pawsafety-backend/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

// memStore is an in-memory stand-in for every collection the services touch.
type memStore struct {
	mu            sync.Mutex
	users         map[string]*models.User
	requests      map[string]models.FriendRequest
	friendships   map[string]models.Friendship
	notifications map[string]models.Notification
	tokens        map[string]string

	requestWrites       int
	failNotifications   bool
	failSecondPairWrite bool
}

func newMemStore() *memStore {
	return &memStore{
		users:         map[string]*models.User{},
		requests:      map[string]models.FriendRequest{},
		friendships:   map[string]models.Friendship{},
		notifications: map[string]models.Notification{},
		tokens:        map[string]string{},
	}
}

func (m *memStore) addUser(id, name, email string) *models.User {
	u := &models.User{ID: id, Name: name, Email: email, Role: models.RoleUser, Status: models.AccountActive}
	m.users[id] = u
	return u
}

func (m *memStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to find user by id: %w", repository.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (m *memStore) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestWrites++
	m.requests[req.ID] = *req
	return nil
}

func (m *memStore) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("failed to find friend request: %w", repository.ErrNotFound)
	}
	return &r, nil
}

func (m *memStore) UpdateRequestStatus(ctx context.Context, id string, status models.RequestStatus, respondedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = status
	r.RespondedAt = &respondedAt
	m.requests[id] = r
	return nil
}

func (m *memStore) DeleteRequest(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.requests, id)
	return nil
}

func (m *memStore) GetIncomingPending(ctx context.Context, toUserID string) ([]models.FriendRequest, error) {
	return m.filterRequests(func(r models.FriendRequest) bool {
		return r.ToUserID == toUserID && r.IsPending()
	}), nil
}

func (m *memStore) GetSentRequests(ctx context.Context, fromUserID string) ([]models.FriendRequest, error) {
	return m.filterRequests(func(r models.FriendRequest) bool {
		return r.FromUserID == fromUserID
	}), nil
}

func (m *memStore) filterRequests(keep func(models.FriendRequest) bool) []models.FriendRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FriendRequest{}
	for _, r := range m.requests {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) GetFriendship(ctx context.Context, ownerID, friendID string) (*models.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.friendships[models.FriendshipID(ownerID, friendID)]
	if !ok {
		return nil, fmt.Errorf("failed to find friendship: %w", repository.ErrNotFound)
	}
	return &f, nil
}

func (m *memStore) GetFriendsByUser(ctx context.Context, userID string) ([]models.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Friendship{}
	for _, f := range m.friendships {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CreatePair(ctx context.Context, a, b *models.Friendship) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.friendships[a.ID] = *a
	if m.failSecondPairWrite {
		return errStoreDown
	}
	m.friendships[b.ID] = *b
	return nil
}

func (m *memStore) DeletePair(ctx context.Context, userA, userB string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.friendships, models.FriendshipID(userA, userB))
	delete(m.friendships, models.FriendshipID(userB, userA))
	return nil
}

func (m *memStore) FindOrphans(ctx context.Context, limit int64) ([]models.Friendship, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Friendship{}
	for _, f := range m.friendships {
		if _, ok := m.friendships[f.MirrorID()]; !ok {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) DeleteFriendship(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.friendships[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.friendships, id)
	return nil
}

func (m *memStore) CreateNotification(ctx context.Context, notif *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNotifications {
		return errStoreDown
	}
	m.notifications[notif.ID] = *notif
	return nil
}

func (m *memStore) GetUserNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) FindByUserAndType(ctx context.Context, userID, notifType string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNotifications {
		return nil, errStoreDown
	}
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == notifType {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memStore) MarkAsRead(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	n.Read = true
	m.notifications[id] = n
	return nil
}

func (m *memStore) DeleteNotification(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return repository.ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

func (m *memStore) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var deleted int64
	now := time.Now()
	for id, n := range m.notifications {
		if !n.ExpiresAt.After(now) {
			delete(m.notifications, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memStore) GetToken(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return t, nil
}

func (m *memStore) notificationsFor(userID, notifType string) []models.Notification {
	out, _ := m.FindByUserAndType(context.Background(), userID, notifType)
	return out
}

// recordingPusher captures push batches and can be told to fail.
type recordingPusher struct {
	mu      sync.Mutex
	sent    []push.Message
	err     error
	tickets []push.Ticket
}

func (p *recordingPusher) Send(ctx context.Context, messages []push.Message) ([]push.Ticket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.tickets, p.err
	}
	p.sent = append(p.sent, messages...)
	if p.tickets != nil {
		return p.tickets, nil
	}
	return []push.Ticket{{Status: "ok"}}, nil
}

func (p *recordingPusher) messages() []push.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]push.Message(nil), p.sent...)
}

type fixture struct {
	store    *memStore
	pusher   *recordingPusher
	notifier *NotificationService
	friends  *FriendService
	clock    time.Time
}

func newFixture() *fixture {
	store := newMemStore()
	pusher := &recordingPusher{}
	notifier := NewNotificationService(store, store, pusher, 30*24*time.Hour)
	friends := NewFriendService(store, store, store, notifier)

	f := &fixture{
		store:    store,
		pusher:   pusher,
		notifier: notifier,
		friends:  friends,
		clock:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	friends.now = func() time.Time { return f.clock }
	notifier.now = func() time.Time { return f.clock }

	store.addUser("alice", "Alice", "alice@example.com")
	store.addUser("bob", "Bob", "bob@example.com")
	store.addUser("carol", "", "carol@example.com")
	return f
}

func (f *fixture) tick() {
	f.clock = f.clock.Add(time.Minute)
}

func as(userID string) Session {
	return Session{UserID: userID}
}
