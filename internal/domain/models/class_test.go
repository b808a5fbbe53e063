package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestClassHasTeacher(t *testing.T) {
	primary := primitive.NewObjectID()
	co := primitive.NewObjectID()
	c := Class{TeacherID: primary, CoTeacherIDs: []primitive.ObjectID{co}}

	if !c.HasTeacher(primary) {
		t.Error("expected primary teacher to be recognised")
	}
	if !c.HasTeacher(co) {
		t.Error("expected co-teacher to be recognised")
	}
	if c.HasTeacher(primitive.NewObjectID()) {
		t.Error("unexpected teacher match")
	}
}
