package report

import (
	"errors"

	"github.com/dalemusser/coachhub/internal/domain/models"
)

// Kinds of identity failure.
const (
	KindNotFound  = "not_found"
	KindWrongRole = "wrong_role"
	KindInactive  = "inactive"
)

// IdentityError reports that the student or teacher a report is about could
// not be resolved. Message is user-facing Turkish text.
type IdentityError struct {
	Kind    string
	Role    string
	Message string
}

func (e *IdentityError) Error() string { return e.Message }

// IsIdentityError reports whether err is or wraps an *IdentityError.
func IsIdentityError(err error) bool {
	var ie *IdentityError
	return errors.As(err, &ie)
}

var identityMessages = map[string]map[string]string{
	models.RoleStudent: {
		KindNotFound:  "Öğrenci bulunamadı.",
		KindWrongRole: "Belirtilen kullanıcı bir öğrenci değil.",
		KindInactive:  "Öğrenci hesabı aktif değil.",
	},
	models.RoleTeacher: {
		KindNotFound:  "Öğretmen bulunamadı.",
		KindWrongRole: "Belirtilen kullanıcı bir öğretmen değil.",
		KindInactive:  "Öğretmen hesabı aktif değil.",
	},
}

func identityError(role, kind string) *IdentityError {
	return &IdentityError{Kind: kind, Role: role, Message: identityMessages[role][kind]}
}

// ErrBadRange is returned when the report range ends before it starts.
var ErrBadRange = errors.New("Geçersiz tarih aralığı.")
