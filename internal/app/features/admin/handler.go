// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	discountstore "github.com/dalemusser/coachhub/internal/app/store/discounts"
	freeslotstore "github.com/dalemusser/coachhub/internal/app/store/freeslots"
	loginstore "github.com/dalemusser/coachhub/internal/app/store/logins"
	subscriptionstore "github.com/dalemusser/coachhub/internal/app/store/subscriptions"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the admin API: teacher accounts and billing.
type Handler struct {
	Users         *userstore.Store
	FreeSlots     *freeslotstore.Store
	Discounts     *discountstore.Store
	Subscriptions *subscriptionstore.Store
	Logins        *loginstore.Store
	Log           *zap.Logger
}

// NewHandler builds the admin handler. freeSlots is the free teacher slot
// cap; 0 uses the default.
func NewHandler(db *mongo.Database, freeSlots int, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         userstore.New(db),
		FreeSlots:     freeslotstore.New(db, freeSlots),
		Discounts:     discountstore.New(db),
		Subscriptions: subscriptionstore.New(db),
		Logins:        loginstore.New(db),
		Log:           logger,
	}
}

const msgNotTeacher = "Belirtilen kullanıcı bir öğretmen değil."

// requireTeacher loads the teacher named by the URL parameter "id".
func (h *Handler) requireTeacher(ctx context.Context, w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, ok := shared.RequireID(w, r, "id")
	if !ok {
		return nil, false
	}
	return h.loadTeacher(ctx, w, r, id)
}

func (h *Handler) loadTeacher(ctx context.Context, w http.ResponseWriter, r *http.Request, id primitive.ObjectID) (*models.User, bool) {
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		shared.StoreError(w, r, h.Log, "admin: load teacher", err)
		return nil, false
	}
	if u.Role != models.RoleTeacher {
		jsonutil.WriteError(w, http.StatusBadRequest, msgNotTeacher)
		return nil, false
	}
	return u, true
}
