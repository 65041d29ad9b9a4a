// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков панели: успешных ответов,
// ошибок с машиночитаемым кодом и сообщений валидации.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/assistant"
	"github.com/magabrotheeeer/iptv-panel/internal/services/panel"
	"github.com/magabrotheeeer/iptv-panel/internal/session"
	"github.com/magabrotheeeer/iptv-panel/internal/storage"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Code заполняется только для ошибок, которые клиент обрабатывает особо.
// Поле Actions перечисляет действия восстановления, доступные пользователю.
type Response struct {
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
	Code    string   `json:"code,omitempty"`
	Actions []string `json:"actions,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
	Code   string `json:"code,omitempty" example:"store_unreachable"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Коды ошибок, по которым клиент выбирает экран.
const (
	CodeStoreUnreachable = "store_unreachable"
	CodeAssistant        = "assistant_error"
	CodeUnauthorized     = "unauthorized"
	CodeForbidden        = "forbidden"
	CodeNotFound         = "not_found"
	CodeInvalid          = "invalid"
	CodeInternal         = "internal"
)

// Действия восстановления после сбоя отрисовки.
const (
	ActionReload       = "reload"
	ActionResetSession = "reset_session"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ErrorWithCode возвращает Response с ошибкой и кодом.
func ErrorWithCode(code, msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
		Code:   code,
	}
}

// Recovery возвращает ответ на непредвиденный сбой с вариантами восстановления.
func Recovery(msg string) Response {
	return Response{
		Status:  StatusError,
		Error:   msg,
		Code:    CodeInternal,
		Actions: []string{ActionReload, ActionResetSession},
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		case "oneof":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be one of [%s]", err.Field(), err.Param()))
		case "min", "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
		Code:   CodeInvalid,
	}
}

// StatusFor сопоставляет доменную ошибку с HTTP-статусом и телом ответа.
// Тексты ответа не раскрывают деталей хранилища.
func StatusFor(err error) (int, Response) {
	var verrs validator.ValidationErrors
	var apiErr *assistant.APIError

	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrorWithCode(CodeUnauthorized, "invalid credentials")
	case errors.Is(err, session.ErrNoSession):
		return http.StatusUnauthorized, ErrorWithCode(CodeUnauthorized, "session expired")
	case errors.Is(err, access.ErrPrimaryAdministrator), errors.Is(err, storage.ErrProtected):
		return http.StatusForbidden, ErrorWithCode(CodeForbidden, "primary administrator is protected")
	case errors.Is(err, access.ErrForbidden):
		return http.StatusForbidden, ErrorWithCode(CodeForbidden, "operation is not permitted")
	case errors.Is(err, access.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, ErrorWithCode(CodeNotFound, "record not found")
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity, ValidationError(verrs)
	case errors.Is(err, access.ErrUnknownOffer):
		return http.StatusUnprocessableEntity, ErrorWithCode(CodeInvalid, "unknown offer")
	case errors.Is(err, access.ErrInvalid):
		return http.StatusUnprocessableEntity, ErrorWithCode(CodeInvalid, invalidMessage(err))
	case errors.Is(err, panel.ErrUnavailable):
		return http.StatusServiceUnavailable, ErrorWithCode(CodeStoreUnreachable, "remote store is unreachable")
	case errors.Is(err, assistant.ErrNotConfigured):
		return http.StatusBadGateway, ErrorWithCode(CodeAssistant, "assistant is not configured")
	case errors.As(err, &apiErr), errors.Is(err, assistant.ErrEmptyResponse):
		return http.StatusBadGateway, ErrorWithCode(CodeAssistant, "assistant request failed")
	default:
		return http.StatusInternalServerError, ErrorWithCode(CodeInternal, "request failed")
	}
}

// invalidMessage берёт из цепочки ошибок текст после ErrInvalid, если он есть.
func invalidMessage(err error) string {
	msg := err.Error()
	marker := access.ErrInvalid.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return access.ErrInvalid.Error()
}

// Fail пишет ответ для доменной ошибки.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := StatusFor(err)
	w.WriteHeader(status)
	render.JSON(w, r, resp)
}

// FailAssistant пишет ответ для ошибки генеративного сервиса.
// Любой сбой, не распознанный как доменный, считается ошибкой сервиса, а не данных.
func FailAssistant(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := StatusFor(err)
	if status == http.StatusInternalServerError {
		status, resp = http.StatusBadGateway, ErrorWithCode(CodeAssistant, "assistant request failed")
	}
	w.WriteHeader(status)
	render.JSON(w, r, resp)
}
