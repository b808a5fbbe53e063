package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/coachhub/internal/app/system/auth"
	"github.com/dalemusser/coachhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserCtx(t *testing.T) {
	id := primitive.NewObjectID()
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: id.Hex(), Name: "Mehmet", Role: "Teacher"})

	role, name, uid, ok := authz.UserCtx(req)
	if !ok {
		t.Fatal("expected ok")
	}
	if role != "teacher" {
		t.Errorf("role: got %q, want %q", role, "teacher")
	}
	if name != "Mehmet" {
		t.Errorf("name: got %q, want %q", name, "Mehmet")
	}
	if uid != id {
		t.Errorf("id: got %s, want %s", uid.Hex(), id.Hex())
	}
}

func TestUserCtx_MalformedID(t *testing.T) {
	req := httptest.NewRequest("GET", "/test", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: "not-hex", Role: "admin"})

	role, _, _, ok := authz.UserCtx(req)
	if ok {
		t.Error("expected ok=false for malformed ID")
	}
	if role != "visitor" {
		t.Errorf("role: got %q, want visitor", role)
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		role                            string
		admin, teacher, student, parent bool
	}{
		{"admin", true, false, false, false},
		{"teacher", false, true, false, false},
		{"student", false, false, true, false},
		{"parent", false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req = auth.WithTestUser(req, &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Role: tt.role})

			if got := authz.IsAdmin(req); got != tt.admin {
				t.Errorf("IsAdmin = %v, want %v", got, tt.admin)
			}
			if got := authz.IsTeacher(req); got != tt.teacher {
				t.Errorf("IsTeacher = %v, want %v", got, tt.teacher)
			}
			if got := authz.IsStudent(req); got != tt.student {
				t.Errorf("IsStudent = %v, want %v", got, tt.student)
			}
			if got := authz.IsParent(req); got != tt.parent {
				t.Errorf("IsParent = %v, want %v", got, tt.parent)
			}
		})
	}
}
