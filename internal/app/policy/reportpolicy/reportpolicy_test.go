package reportpolicy_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/coachhub/internal/app/policy/reportpolicy"
	"github.com/dalemusser/coachhub/internal/domain/models"
	"github.com/dalemusser/coachhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanViewStudent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	classTeacher := fx.CreateTeacher(ctx, "Sınıf Öğretmeni")
	creator := fx.CreateTeacher(ctx, "Kayıt Öğretmeni")
	stranger := fx.CreateTeacher(ctx, "Başka Öğretmen")
	student := fx.CreateStudent(ctx, "Ali Kaya")
	other := fx.CreateStudent(ctx, "Veli Demir")
	parent := fx.CreateParent(ctx, "Ayşe Kaya", student.ID)
	fx.CreateClass(ctx, "7-B", classTeacher.ID, student.ID)

	if _, err := db.Collection("users").UpdateOne(ctx, bson.M{"_id": other.ID}, bson.M{"$set": bson.M{"created_by": creator.ID}}); err != nil {
		t.Fatalf("set created_by: %v", err)
	}

	checker := reportpolicy.New(db)

	tests := []struct {
		name    string
		user    testutil.TestUser
		student primitive.ObjectID
		want    bool
	}{
		{"admin", testutil.AdminUser(), student.ID, true},
		{"class teacher", testutil.AsTestUser(classTeacher.ID, classTeacher.FullName, models.RoleTeacher), student.ID, true},
		{"creating teacher", testutil.AsTestUser(creator.ID, creator.FullName, models.RoleTeacher), other.ID, true},
		{"unrelated teacher", testutil.AsTestUser(stranger.ID, stranger.FullName, models.RoleTeacher), student.ID, false},
		{"parent of child", testutil.AsTestUser(parent.ID, parent.FullName, models.RoleParent), student.ID, true},
		{"parent of other", testutil.AsTestUser(parent.ID, parent.FullName, models.RoleParent), other.ID, false},
		{"student self", testutil.AsTestUser(student.ID, student.FullName, models.RoleStudent), student.ID, true},
		{"student other", testutil.AsTestUser(student.ID, student.FullName, models.RoleStudent), other.ID, false},
		{"teacher unknown student", testutil.AsTestUser(classTeacher.ID, classTeacher.FullName, models.RoleTeacher), primitive.NewObjectID(), false},
	}
	for _, tt := range tests {
		r := testutil.WithUser(httptest.NewRequest("GET", "/", nil), tt.user)
		got, err := checker.CanViewStudent(ctx, r, tt.student)
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}

	anon := httptest.NewRequest("GET", "/", nil)
	if ok, _ := checker.CanViewStudent(ctx, anon, student.ID); ok {
		t.Error("anonymous request should not view students")
	}
}
