package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"
	"taskTimeline/internal/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

var validationMessages = map[string]string{
	"required": "обязательное поле",
	"max":      "не длиннее %s",
	"min":      "не короче %s",
	"gt":       "должно быть больше %s",
	"gte":      "должно быть не меньше %s",
	"oneof":    "допустимые значения: %s",
}

func validationMessage(e validator.FieldError) string {
	msg, ok := validationMessages[e.Tag()]
	if !ok {
		return "неверное значение: " + e.Tag()
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, e.Param())
	}
	return msg
}

// validateStruct возвращает поле -> сообщение, пустая карта - ошибок нет
func validateStruct(s any) map[string]string {
	res := map[string]string{}

	var validationErrs validator.ValidationErrors
	if err := validate.Struct(s); errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			field := e.Namespace()
			if i := strings.Index(field, "."); i >= 0 {
				field = field[i+1:]
			}
			res[field] = validationMessage(e)
		}
	}
	return res
}

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// decodeJSON проверяет тип контента, читает тело и валидирует его.
// При ошибке ответ уже записан
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}

	if fields := validateStruct(dst); len(fields) > 0 {
		logger.Warn("HTTP: Ошибка валидации",
			zap.Any("fields", fields),
			zap.String("client_ip", r.RemoteAddr))

		responseWithJSON(w, http.StatusBadRequest,
			toPayload("error", "VALIDATION_ERROR"),
			toPayload("message", "неверные поля запроса"),
			toPayload("details", fields),
		)
		return false
	}
	return true
}
