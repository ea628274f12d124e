package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pawsafety/pawsafety-backend/internal/models"
	"github.com/pawsafety/pawsafety-backend/internal/services"
	jwtutil "github.com/pawsafety/pawsafety-backend/pkg/jwt"
	"github.com/pawsafety/pawsafety-backend/pkg/logger"
	"github.com/pawsafety/pawsafety-backend/pkg/middleware"
)

const wsWriteTimeout = 10 * time.Second

// WSRelationshipMessage is one frame on the relationship feed.
type WSRelationshipMessage struct {
	Type     string                       `json:"type"` // "snapshot"
	Snapshot *models.RelationshipSnapshot `json:"snapshot"`
}

// RelationshipFeedSubscriber is satisfied by services.RelationshipFeed.
type RelationshipFeedSubscriber interface {
	Subscribe(ctx context.Context, userID string) (*services.Subscription, error)
}

type RelationshipWSHandler struct {
	Feed      RelationshipFeedSubscriber
	Accounts  middleware.AccountChecker
	JWTSecret string
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewRelationshipWSHandler(feed RelationshipFeedSubscriber, accounts middleware.AccountChecker, jwtSecret string) *RelationshipWSHandler {
	return &RelationshipWSHandler{Feed: feed, Accounts: accounts, JWTSecret: jwtSecret}
}

// RelationshipWebSocketHandler streams the caller's relationship snapshot on every change.
func (h *RelationshipWSHandler) RelationshipWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket auth failed")
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID

	// Same gate as RequireActiveAccount, which cannot run before the query token is read.
	active, err := h.Accounts.IsAccountActive(r.Context(), userID)
	if err != nil {
		logger.Log.WithError(err).WithField("userID", userID).Warn("Account status check failed")
		http.Error(w, "Account not found", http.StatusForbidden)
		return
	}
	if !active {
		http.Error(w, "Account is deactivated or banned", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.Feed.Subscribe(ctx, userID)
	if err != nil {
		logger.Log.WithError(err).WithField("userID", userID).Error("Failed to subscribe to relationship feed")
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscription failed"),
			time.Now().Add(wsWriteTimeout))
		return
	}
	defer sub.Close()

	logger.Log.WithField("userID", userID).Info("Relationship feed connected")
	defer logger.Log.WithField("userID", userID).Info("Relationship feed disconnected")

	// The client never sends data frames; reading detects disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.Updates():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(WSRelationshipMessage{Type: "snapshot", Snapshot: snap}); err != nil {
				logger.Log.WithError(err).WithField("userID", userID).Debug("WebSocket write failed")
				return
			}
		}
	}
}
