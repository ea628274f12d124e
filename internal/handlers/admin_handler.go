package handlers

import (
	"context"
	"net/http"

	"github.com/pawsafety/pawsafety-backend/pkg/logger"
	"github.com/sirupsen/logrus"
)

// FriendshipSweeper is satisfied by jobs.FriendshipReconciler.
type FriendshipSweeper interface {
	RunSweep(ctx context.Context) (repaired, removed int, err error)
}

// AdminHandler exposes maintenance operations to admins.
type AdminHandler struct {
	Reconciler FriendshipSweeper
}

func NewAdminHandler(reconciler FriendshipSweeper) *AdminHandler {
	return &AdminHandler{Reconciler: reconciler}
}

// ReconcileFriendshipsHandler runs a reconciliation sweep now instead of waiting for the cron.
func (h *AdminHandler) ReconcileFriendshipsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromRequest(w, r)
	if !ok {
		return
	}

	repaired, removed, err := h.Reconciler.RunSweep(r.Context())
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"adminID": sess.UserID}).WithError(err).Error("Manual reconciliation failed")
		writeError(w, err)
		return
	}

	logger.Log.WithFields(logrus.Fields{"adminID": sess.UserID, "repaired": repaired, "removed": removed}).Info("Manual reconciliation completed")
	writeJSON(w, http.StatusOK, map[string]int{"repaired": repaired, "removed": removed})
}
