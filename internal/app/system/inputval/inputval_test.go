package inputval

import (
	"strings"
	"testing"
)

type goalInput struct {
	Title    string `json:"title" validate:"required,max=10" label:"Başlık"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high" label:"Öncelik"`
	Progress int    `json:"progress" validate:"gte=0,lte=100" label:"İlerleme"`
	Student  string `json:"studentId" validate:"required,objectid" label:"Öğrenci"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        goalInput
		wantErr   bool
		wantInMsg string
	}{
		{
			name: "valid",
			in:   goalInput{Title: "Okuma", Priority: "high", Progress: 50, Student: "507f1f77bcf86cd799439011"},
		},
		{
			name:      "missing title",
			in:        goalInput{Student: "507f1f77bcf86cd799439011"},
			wantErr:   true,
			wantInMsg: "Başlık alanı zorunludur",
		},
		{
			name:      "bad priority",
			in:        goalInput{Title: "x", Priority: "urgent", Student: "507f1f77bcf86cd799439011"},
			wantErr:   true,
			wantInMsg: "Öncelik",
		},
		{
			name:      "progress out of range",
			in:        goalInput{Title: "x", Progress: 120, Student: "507f1f77bcf86cd799439011"},
			wantErr:   true,
			wantInMsg: "en fazla 100",
		},
		{
			name:      "bad object id",
			in:        goalInput{Title: "x", Student: "nope"},
			wantErr:   true,
			wantInMsg: "geçerli bir kimlik",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.in)
			if res.HasErrors() != tt.wantErr {
				t.Fatalf("HasErrors() = %v, want %v (%v)", res.HasErrors(), tt.wantErr, res.Errors)
			}
			if tt.wantInMsg != "" && !strings.Contains(res.First(), tt.wantInMsg) {
				t.Errorf("First() = %q, want it to contain %q", res.First(), tt.wantInMsg)
			}
		})
	}
}
