package loginstore_test

import (
	"net/http/httptest"
	"testing"
	"time"

	loginstore "github.com/dalemusser/coachhub/internal/app/store/logins"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	err := store.Create(ctx, models.LoginRecord{
		UserID:   userID,
		IP:       "192.168.1.1",
		Provider: models.LoginProviderPassword,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var found models.LoginRecord
	err = db.Collection("login_records").FindOne(ctx, bson.M{"user_id": userID}).Decode(&found)
	if err != nil {
		t.Fatalf("failed to find login record: %v", err)
	}
	if found.IP != "192.168.1.1" {
		t.Errorf("IP: got %q, want %q", found.IP, "192.168.1.1")
	}
	if found.Provider != models.LoginProviderPassword {
		t.Errorf("Provider: got %q", found.Provider)
	}
	if found.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestStore_CreateFrom(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	r.Header.Set("User-Agent", "okul-tablet/1.0")

	userID := primitive.NewObjectID()
	if err := store.CreateFrom(ctx, r, userID, models.LoginProviderGoogle); err != nil {
		t.Fatalf("CreateFrom failed: %v", err)
	}

	list, err := store.ListForUser(ctx, userID, 0)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 record, got %d", len(list))
	}
	if list[0].IP != "203.0.113.7" {
		t.Errorf("IP: got %q, want first forwarded address", list[0].IP)
	}
	if list[0].UserAgent != "okul-tablet/1.0" {
		t.Errorf("UserAgent: got %q", list[0].UserAgent)
	}
}

func TestStore_ListForUser_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Create(ctx, models.LoginRecord{
			UserID:    userID,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Provider:  models.LoginProviderPassword,
		})
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}
	store.Create(ctx, models.LoginRecord{UserID: primitive.NewObjectID(), Provider: models.LoginProviderPassword})

	list, err := store.ListForUser(ctx, userID, 2)
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if !list[0].CreatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Errorf("first record: got %v, want newest", list[0].CreatedAt)
	}
}

func TestStore_LastFor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := loginstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, b, never := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	early := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	late := early.Add(48 * time.Hour)
	for _, rec := range []models.LoginRecord{
		{UserID: a, CreatedAt: early},
		{UserID: a, CreatedAt: late},
		{UserID: b, CreatedAt: early},
	} {
		rec.Provider = models.LoginProviderPassword
		if err := store.Create(ctx, rec); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	last, err := store.LastFor(ctx, []primitive.ObjectID{a, b, never})
	if err != nil {
		t.Fatalf("LastFor failed: %v", err)
	}
	if !last[a].Equal(late) {
		t.Errorf("a: got %v, want %v", last[a], late)
	}
	if !last[b].Equal(early) {
		t.Errorf("b: got %v, want %v", last[b], early)
	}
	if _, ok := last[never]; ok {
		t.Error("expected no entry for a user who never logged in")
	}
}
