package authgoogle_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/coachhub/internal/app/features/authgoogle"
	"github.com/dalemusser/coachhub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// fakeGoogle serves the token and userinfo endpoints.
func fakeGoogle(t *testing.T, profile map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-access-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestHandler(t *testing.T, clientID string) (*authgoogle.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", 24*time.Hour, false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	return authgoogle.NewHandler(db, sessionMgr, clientID, "test-client-secret", "http://localhost:8080", logger), db
}

func pointAt(h *authgoogle.Handler, srv *httptest.Server) {
	h.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	h.UserInfoURL = srv.URL + "/userinfo"
}

func saveState(t *testing.T, db *mongo.Database, returnURL string) string {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	state, err := oauthstate.New(db).Create(ctx, returnURL, time.Minute)
	if err != nil {
		t.Fatalf("Create state: %v", err)
	}
	return state
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			return c
		}
	}
	return nil
}

func TestIsConfigured(t *testing.T) {
	h, _ := newTestHandler(t, "test-client-id")
	if !h.IsConfigured() {
		t.Error("IsConfigured() should return true with client ID and secret")
	}
	h, _ = newTestHandler(t, "")
	if h.IsConfigured() {
		t.Error("IsConfigured() should return false without client ID")
	}
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h, _ := newTestHandler(t, "")

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))

	testutil.AssertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/login?error=google_not_configured" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestServeLogin_RedirectsWithStoredState(t *testing.T) {
	h, db := newTestHandler(t, "test-client-id")

	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google?return=/reports", nil))

	testutil.AssertStatus(t, rec, http.StatusTemporaryRedirect)
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse Location: %v", err)
	}
	if !strings.Contains(loc.Host, "google.com") {
		t.Errorf("redirect host: got %q", loc.Host)
	}
	if got := loc.Query().Get("client_id"); got != "test-client-id" {
		t.Errorf("client_id: got %q", got)
	}
	if got := loc.Query().Get("redirect_uri"); got != "http://localhost:8080/auth/google/callback" {
		t.Errorf("redirect_uri: got %q", got)
	}

	state := loc.Query().Get("state")
	ctx, cancel := testutil.TestContext()
	defer cancel()
	returnURL, valid, err := oauthstate.New(db).Validate(ctx, state)
	if err != nil || !valid {
		t.Fatalf("state not stored: valid=%v err=%v", valid, err)
	}
	if returnURL != "/reports" {
		t.Errorf("returnURL: got %q, want /reports", returnURL)
	}
}

func TestServeCallback_Rejections(t *testing.T) {
	h, _ := newTestHandler(t, "test-client-id")

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"google error", "/auth/google/callback?error=access_denied", "/login?error=google_denied"},
		{"missing state", "/auth/google/callback?code=abc", "/login?error=invalid_state"},
		{"unknown state", "/auth/google/callback?state=nope&code=abc", "/login?error=invalid_state"},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeCallback(rec, httptest.NewRequest("GET", tt.target, nil))
		if rec.Code != http.StatusSeeOther {
			t.Errorf("%s: status got %d, want 303", tt.name, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != tt.want {
			t.Errorf("%s: Location got %q, want %q", tt.name, loc, tt.want)
		}
	}
}

func TestServeCallback_StateIsSingleUse(t *testing.T) {
	h, db := newTestHandler(t, "test-client-id")
	state := saveState(t, db, "")

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state="+state, nil))
	if loc := rec.Header().Get("Location"); loc != "/login?error=invalid_code" {
		t.Fatalf("first use: Location got %q", loc)
	}

	rec = httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state="+state+"&code=abc", nil))
	if loc := rec.Header().Get("Location"); loc != "/login?error=invalid_state" {
		t.Errorf("second use: Location got %q", loc)
	}
}

func TestServeCallback_LinksByVerifiedEmail(t *testing.T) {
	h, db := newTestHandler(t, "test-client-id")
	srv := fakeGoogle(t, map[string]any{
		"id": "google-sub-1", "email": "Ayse.Ogretmen@example.com", "verified_email": true, "name": "Ayşe Öğretmen",
	})
	pointAt(h, srv)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	users := userstore.New(db)
	u, err := users.Create(ctx, models.User{FullName: "Ayşe Öğretmen", Email: "ayse.ogretmen@example.com", Role: models.RoleTeacher}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	state := saveState(t, db, "/classes")
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state="+state+"&code=good", nil))

	testutil.AssertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/classes" {
		t.Errorf("Location: got %q, want /classes", loc)
	}
	if sessionCookie(rec) == nil {
		t.Error("expected a session cookie")
	}

	linked, err := users.GetByGoogleSubject(ctx, "google-sub-1")
	if err != nil {
		t.Fatalf("GetByGoogleSubject: %v", err)
	}
	if linked.ID != u.ID {
		t.Errorf("linked user: got %s, want %s", linked.ID.Hex(), u.ID.Hex())
	}
}

func TestServeCallback_UnverifiedEmailIsNotLinked(t *testing.T) {
	h, db := newTestHandler(t, "test-client-id")
	pointAt(h, fakeGoogle(t, map[string]any{
		"id": "google-sub-2", "email": "veli@example.com", "verified_email": false,
	}))

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := userstore.New(db).Create(ctx, models.User{FullName: "Veli", Email: "veli@example.com", Role: models.RoleParent}, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state="+saveState(t, db, "")+"&code=good", nil))
	if loc := rec.Header().Get("Location"); loc != "/login?error=no_account" {
		t.Errorf("Location: got %q", loc)
	}
}

func TestServeCallback_InactiveAccount(t *testing.T) {
	h, db := newTestHandler(t, "test-client-id")
	pointAt(h, fakeGoogle(t, map[string]any{
		"id": "google-sub-3", "email": "pasif@example.com", "verified_email": true,
	}))

	ctx, cancel := testutil.TestContext()
	defer cancel()
	users := userstore.New(db)
	u, err := users.Create(ctx, models.User{FullName: "Pasif", Email: "pasif@example.com", Role: models.RoleStudent}, "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := users.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state="+saveState(t, db, "")+"&code=good", nil))
	if loc := rec.Header().Get("Location"); loc != "/login?error=account_disabled" {
		t.Errorf("Location: got %q", loc)
	}
	if sessionCookie(rec) != nil {
		t.Error("no session expected for an inactive account")
	}
}

func TestServeCallback_UnsafeReturnFallsBackToRoot(t *testing.T) {
	h, db := newTestHandler(t, "test-client-id")
	pointAt(h, fakeGoogle(t, map[string]any{
		"id": "google-sub-4", "email": "ogr@example.com", "verified_email": true,
	}))

	ctx, cancel := testutil.TestContext()
	defer cancel()
	if _, err := userstore.New(db).Create(ctx, models.User{FullName: "Öğrenci", Email: "ogr@example.com", Role: models.RoleStudent}, ""); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state="+saveState(t, db, "https://evil.example.com/x")+"&code=good", nil))
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want /", loc)
	}
}
