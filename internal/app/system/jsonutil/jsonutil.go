// Package jsonutil writes JSON API responses and decodes request bodies.
//
// Error bodies are always {"error": "<message>"} where message is the
// Turkish, user-facing text shown by the client in an alert. No error codes
// are carried beyond the HTTP status.
package jsonutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// MaxBodySize caps JSON request bodies.
const MaxBodySize = 1 << 20 // 1 MB

// Common user-facing messages.
const (
	MsgBadRequest   = "Geçersiz istek."
	MsgUnauthorized = "Bu işlem için giriş yapmalısınız."
	MsgForbidden    = "Bu işlem için yetkiniz yok."
	MsgNotFound     = "Kayıt bulunamadı."
	MsgServerError  = "Sunucu hatası oluştu. Lütfen tekrar deneyin."
	MsgInvalidID    = "Geçersiz kimlik."
)

type errorBody struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg} with the given status.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, errorBody{Error: msg})
}

// ServerError logs err and writes a generic 500 response.
func ServerError(w http.ResponseWriter, r *http.Request, log *zap.Logger, what string, err error) {
	if log != nil {
		log.Error(what,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	WriteError(w, http.StatusInternalServerError, MsgServerError)
}

// ErrEmptyBody is returned by Decode when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Decode reads a JSON body into dst, rejecting unknown fields and trailing data.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
