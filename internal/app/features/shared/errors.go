package shared

import (
	"errors"
	"net/http"

	assignmentstore "github.com/dalemusser/coachhub/internal/app/store/assignments"
	classstore "github.com/dalemusser/coachhub/internal/app/store/classes"
	discountstore "github.com/dalemusser/coachhub/internal/app/store/discounts"
	freeslotstore "github.com/dalemusser/coachhub/internal/app/store/freeslots"
	goalstore "github.com/dalemusser/coachhub/internal/app/store/goals"
	submissionstore "github.com/dalemusser/coachhub/internal/app/store/submissions"
	subscriptionstore "github.com/dalemusser/coachhub/internal/app/store/subscriptions"
	userstore "github.com/dalemusser/coachhub/internal/app/store/users"
	"github.com/dalemusser/coachhub/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type storeMessage struct {
	err    error
	status int
	msg    string
}

// storeMessages maps store sentinel errors to client messages.
var storeMessages = []storeMessage{
	{mongo.ErrNoDocuments, http.StatusNotFound, jsonutil.MsgNotFound},
	{ErrBadDate, http.StatusBadRequest, ErrBadDate.Error()},

	{userstore.ErrDuplicateEmail, http.StatusConflict, "Bu e-posta adresi zaten kullanılıyor."},
	{userstore.ErrNotParent, http.StatusBadRequest, "Kullanıcı bir veli değil."},
	{userstore.ErrNotStudent, http.StatusBadRequest, "Kullanıcı bir öğrenci değil."},

	{classstore.ErrCoTeacherLimit, http.StatusConflict, "Bir sınıfta en fazla 3 yardımcı öğretmen olabilir."},
	{classstore.ErrAlreadyPrimary, http.StatusConflict, "Bu öğretmen zaten sınıfın ana öğretmeni."},
	{classstore.ErrNameRequired, http.StatusBadRequest, "Sınıf adı gereklidir."},

	{assignmentstore.ErrTitleRequired, http.StatusBadRequest, "Ödev başlığı gereklidir."},
	{assignmentstore.ErrDueDateRequired, http.StatusBadRequest, "Teslim tarihi gereklidir."},
	{assignmentstore.ErrBadType, http.StatusBadRequest, "Ödev türü geçersiz."},
	{assignmentstore.ErrClassRequired, http.StatusBadRequest, "Sınıf ödevi için sınıf seçilmelidir."},
	{assignmentstore.ErrStudentRequired, http.StatusBadRequest, "Bireysel ödev için öğrenci seçilmelidir."},
	{assignmentstore.ErrBadLatePolicy, http.StatusBadRequest, "Geç teslim politikası geçersiz."},
	{assignmentstore.ErrBadPenalty, http.StatusBadRequest, "Ceza yüzdesi 0 ile 100 arasında olmalıdır."},
	{assignmentstore.ErrBadDates, http.StatusBadRequest, "Kapanış tarihi teslim tarihinden önce olamaz."},

	{submissionstore.ErrDuplicateSubmission, http.StatusConflict, "Bu ödev için zaten bir teslim var."},
	{submissionstore.ErrNotPublished, http.StatusForbidden, "Ödev henüz yayınlanmadı."},
	{submissionstore.ErrClosed, http.StatusForbidden, "Ödev teslime kapandı."},
	{submissionstore.ErrLateRejected, http.StatusForbidden, "Bu ödev için geç teslim kabul edilmiyor."},
	{submissionstore.ErrNoAttemptsLeft, http.StatusConflict, "Teslim hakkınız kalmadı."},
	{submissionstore.ErrAlreadyGraded, http.StatusConflict, "Notlandırılmış ödev yeniden teslim edilemez."},
	{submissionstore.ErrNotSubmitted, http.StatusConflict, "Ödev henüz teslim edilmedi."},
	{submissionstore.ErrBadGrade, http.StatusBadRequest, "Not geçerli aralıkta değil."},
	{submissionstore.ErrWrongAssignment, http.StatusBadRequest, "Teslim bu ödeve ait değil."},

	{goalstore.ErrTitleRequired, http.StatusBadRequest, "Hedef başlığı gereklidir."},
	{goalstore.ErrBadStatus, http.StatusBadRequest, "Hedef durumu geçersiz."},
	{goalstore.ErrBadProgress, http.StatusBadRequest, "İlerleme 0 ile 100 arasında olmalıdır."},

	{discountstore.ErrDuplicateCode, http.StatusConflict, "Bu indirim kodu zaten mevcut."},
	{discountstore.ErrBadPercent, http.StatusBadRequest, "İndirim oranı 1 ile 100 arasında olmalıdır."},
	{discountstore.ErrCodeRequired, http.StatusBadRequest, "İndirim kodu gereklidir."},
	{discountstore.ErrUnavailable, http.StatusConflict, "İndirim kodu kullanılamıyor."},

	{freeslotstore.ErrSlotsExhausted, http.StatusConflict, "Tüm ücretsiz öğretmen kontenjanı doldu."},
	{subscriptionstore.ErrBadPlan, http.StatusBadRequest, "Abonelik planı geçersiz."},
}

// StoreError writes the client message for a known store error, or logs
// and writes a 500 for anything else.
func StoreError(w http.ResponseWriter, r *http.Request, log *zap.Logger, what string, err error) {
	for _, m := range storeMessages {
		if errors.Is(err, m.err) {
			jsonutil.WriteError(w, m.status, m.msg)
			return
		}
	}
	jsonutil.ServerError(w, r, log, what, err)
}
