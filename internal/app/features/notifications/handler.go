// internal/app/features/notifications/handler.go
package notifications

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	notificationstore "github.com/dalemusser/coachhub/internal/app/store/notifications"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const maxLimit = 200

type Handler struct {
	Notifications *notificationstore.Store
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, logger *zap.Logger) *Handler {
	return &Handler{Notifications: notificationstore.New(db), Log: logger}
}

// ServeList handles GET /?unread=true&limit=50.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	unread := query.Get(r, "unread") == "true"
	limit, err := strconv.ParseInt(query.Get(r, "limit"), 10, 64)
	if err != nil || limit <= 0 || limit > maxLimit {
		limit = 50
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Notifications.ListForUser(ctx, uid, unread, limit)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "notifications: list", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

// ServeUnreadCount handles GET /unread-count.
func (h *Handler) ServeUnreadCount(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notifications.CountUnread(ctx, uid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "notifications: count", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]int64{"unread": n})
}

// ServeMarkRead handles POST /{id}/read. Other users' notifications are
// reported as not found.
func (h *Handler) ServeMarkRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Notifications.MarkRead(ctx, uid, id); err != nil {
		shared.StoreError(w, r, h.Log, "notifications: mark read", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ServeMarkAllRead handles POST /read-all.
func (h *Handler) ServeMarkAllRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Notifications.MarkAllRead(ctx, uid)
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "notifications: mark all read", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]int64{"marked": n})
}
