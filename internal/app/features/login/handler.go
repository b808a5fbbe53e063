// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/coachhub/internal/app/features/shared"
	loginstore "github.com/dalemusser/coachhub/internal/app/store/logins"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"github.com/dalemusser/coachhub/internal/app/system/normalize"
	"github.com/dalemusser/coachhub/internal/app/system/ratelimit"
	"github.com/dalemusser/coachhub/internal/app/system/timeouts"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	msgBadCredentials = "E-posta veya şifre hatalı."
	msgInactive       = "Hesabınız aktif değil. Lütfen yöneticinizle iletişime geçin."
)

type Handler struct {
	Users      *userstore.Store
	Logins     *loginstore.Store
	SessionMgr *auth.SessionManager
	Limiter    *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      userstore.New(db),
		Logins:     loginstore.New(db),
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email" label:"E-posta"`
	Password string `json:"password" validate:"required" label:"Şifre"`
}

// userResponse is the signed-in user as returned to the client.
type userResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func fromModel(u *models.User) userResponse {
	return userResponse{ID: u.ID.Hex(), FullName: u.FullName, Email: u.Email, Role: u.Role}
}

// ServeLogin handles POST /api/auth/login.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !shared.Bind(w, r, &in) {
		return
	}
	email := normalize.Email(in.Email)

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, email); !ok {
			h.Log.Warn("login rate limited",
				zap.String("email", email),
				zap.String("ip", ratelimit.ClientIP(r)))
			jsonutil.WriteError(w, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, email, in.Password)
	switch {
	case errors.Is(err, userstore.ErrInvalidCredentials):
		h.Log.Info("login failed", zap.String("email", email))
		jsonutil.WriteError(w, http.StatusUnauthorized, msgBadCredentials)
		return
	case errors.Is(err, userstore.ErrInactive):
		h.Log.Info("login refused for inactive user", zap.String("email", email))
		jsonutil.WriteError(w, http.StatusForbidden, msgInactive)
		return
	case err != nil:
		jsonutil.ServerError(w, r, h.Log, "login: authenticate", err)
		return
	}

	su := &auth.SessionUser{ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role}
	if err := h.SessionMgr.Login(w, r, su); err != nil {
		jsonutil.ServerError(w, r, h.Log, "login: save session", err)
		return
	}
	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	// Login history is best effort; the session is already saved.
	if err := h.Logins.CreateFrom(ctx, r, u.ID, models.LoginProviderPassword); err != nil {
		h.Log.Warn("login record failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
	}

	h.Log.Info("user logged in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", u.Role))
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"user": fromModel(u)})
}

// ServeMe handles GET /api/auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := shared.CurrentUserID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonutil.WriteError(w, http.StatusUnauthorized, jsonutil.MsgUnauthorized)
		return
	}
	if err != nil {
		jsonutil.ServerError(w, r, h.Log, "me: load user", err)
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}
