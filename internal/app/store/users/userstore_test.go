package userstore_test

import (
	"context"
	"errors"
	"testing"

	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/indexes"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func newStore(t *testing.T) (*userstore.Store, *testutil.Fixtures, context.Context) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	t.Cleanup(cancel)
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	return userstore.New(db), testutil.NewFixtures(t, db), ctx
}

func TestStore_Create_NormalizesAndHashes(t *testing.T) {
	store, _, ctx := newStore(t)

	created, err := store.Create(ctx, models.User{
		FullName: "  Zeynep   Kaya ",
		Email:    " Zeynep@Example.COM ",
		Role:     "Teacher",
	}, "gizli-parola-123")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.FullName != "Zeynep Kaya" {
		t.Errorf("FullName: got %q, want %q", created.FullName, "Zeynep Kaya")
	}
	if created.Email != "zeynep@example.com" {
		t.Errorf("Email: got %q, want %q", created.Email, "zeynep@example.com")
	}
	if created.Role != models.RoleTeacher {
		t.Errorf("Role: got %q, want teacher", created.Role)
	}
	if !created.IsActive {
		t.Error("expected new user to be active")
	}
	if created.PasswordHash == "" || created.PasswordHash == "gizli-parola-123" {
		t.Error("expected bcrypt hash to be stored")
	}
}

func TestStore_Create_BadRole(t *testing.T) {
	store, _, ctx := newStore(t)

	_, err := store.Create(ctx, models.User{FullName: "X", Email: "x@example.com", Role: "principal"}, "")
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	store, _, ctx := newStore(t)

	u := models.User{FullName: "Ali", Email: "ali@example.com", Role: models.RoleStudent}
	if _, err := store.Create(ctx, u, ""); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	u.Email = "ALI@example.com"
	if _, err := store.Create(ctx, u, ""); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Authenticate(t *testing.T) {
	store, _, ctx := newStore(t)

	u, err := store.Create(ctx, models.User{FullName: "Veli Bey", Email: "veli@example.com", Role: models.RoleParent}, "dogru-parola")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"correct", "veli@example.com", "dogru-parola", nil},
		{"case-insensitive email", "VELI@example.com", "dogru-parola", nil},
		{"wrong password", "veli@example.com", "yanlis", userstore.ErrInvalidCredentials},
		{"unknown email", "yok@example.com", "dogru-parola", userstore.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err: got %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.ID != u.ID {
				t.Errorf("ID: got %s, want %s", got.ID.Hex(), u.ID.Hex())
			}
		})
	}

	if err := store.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, err := store.Authenticate(ctx, "veli@example.com", "dogru-parola"); !errors.Is(err, userstore.ErrInactive) {
		t.Errorf("expected ErrInactive, got %v", err)
	}
}

func TestStore_SetActive_NotFound(t *testing.T) {
	store, _, ctx := newStore(t)

	if err := store.SetActive(ctx, primitive.NewObjectID(), false); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_AddChild(t *testing.T) {
	store, fixtures, ctx := newStore(t)

	parent := fixtures.CreateParent(ctx, "Anne")
	student := fixtures.CreateStudent(ctx, "Çocuk")
	teacher := fixtures.CreateTeacher(ctx, "Öğretmen")

	if err := store.AddChild(ctx, parent.ID, student.ID); err != nil {
		t.Fatalf("AddChild: %v", err)
	}
	// idempotent
	if err := store.AddChild(ctx, parent.ID, student.ID); err != nil {
		t.Fatalf("AddChild again: %v", err)
	}

	got, err := store.GetByID(ctx, parent.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.ChildIDs) != 1 || got.ChildIDs[0] != student.ID {
		t.Errorf("ChildIDs: got %v, want [%s]", got.ChildIDs, student.ID.Hex())
	}

	if err := store.AddChild(ctx, parent.ID, teacher.ID); !errors.Is(err, userstore.ErrNotStudent) {
		t.Errorf("expected ErrNotStudent, got %v", err)
	}
	if err := store.AddChild(ctx, teacher.ID, student.ID); !errors.Is(err, userstore.ErrNotParent) {
		t.Errorf("expected ErrNotParent, got %v", err)
	}

	parents, err := store.ListParentsOf(ctx, student.ID)
	if err != nil {
		t.Fatalf("ListParentsOf: %v", err)
	}
	if len(parents) != 1 || parents[0].ID != parent.ID {
		t.Errorf("ListParentsOf: got %d parents", len(parents))
	}
}

func TestStore_ListByRole(t *testing.T) {
	store, fixtures, ctx := newStore(t)

	b := fixtures.CreateTeacher(ctx, "Bora")
	a := fixtures.CreateTeacher(ctx, "Ayla")
	fixtures.CreateStudent(ctx, "Can")

	if err := store.SetActive(ctx, b.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}

	all, err := store.ListByRole(ctx, models.RoleTeacher, false)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(all) != 2 || all[0].ID != a.ID {
		t.Errorf("expected 2 teachers sorted by name, got %d", len(all))
	}

	active, err := store.ListByRole(ctx, models.RoleTeacher, true)
	if err != nil {
		t.Fatalf("ListByRole active: %v", err)
	}
	if len(active) != 1 {
		t.Errorf("expected 1 active teacher, got %d", len(active))
	}
}

func TestFetcher_InactiveUserIsNil(t *testing.T) {
	store, fixtures, ctx := newStore(t)
	fetcher := userstore.NewFetcher(fixtures.DB())

	u := fixtures.CreateStudent(ctx, "Deniz")

	su, err := fetcher.FetchUser(ctx, u.ID.Hex())
	if err != nil || su == nil {
		t.Fatalf("FetchUser active: %v %v", su, err)
	}
	if su.Role != models.RoleStudent {
		t.Errorf("Role: got %q", su.Role)
	}

	if err := store.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	su, err = fetcher.FetchUser(ctx, u.ID.Hex())
	if err != nil || su != nil {
		t.Errorf("expected nil user for inactive account, got %v %v", su, err)
	}
}
