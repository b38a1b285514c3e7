package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Response is the single envelope every endpoint answers with.
// Exactly one of Data and Error carries payload depending on Success.
type Response struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Struct any

// OK renders a success envelope with status 200
func OK(w http.ResponseWriter, message string, data any) {
	Success(w, http.StatusOK, message, data)
}

// Success renders a success envelope with the given status
func Success(w http.ResponseWriter, code int, message string, data any) {
	jsonWithStatus(w, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}, code)
}

// Fail renders an error envelope. detail must be safe to show the caller.
func Fail(w http.ResponseWriter, code int, message string, detail string) {
	jsonWithStatus(w, Response{
		Success:   false,
		Message:   message,
		Error:     detail,
		Timestamp: time.Now().UTC(),
	}, code)
}

// DecodeError renders a failed envelope for malformed request bodies
func DecodeError(w http.ResponseWriter, err error) {
	detail := "Failed to parse JSON"

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		detail = fmt.Sprintf("Invalid data type for field '%s'", typeErr.Field)
	}

	Fail(w, http.StatusBadRequest, "Malformed request body", detail)
}

// ValidationErrors renders a failed envelope with user friendly messages
// built from validation tags
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	messages := make([]string, 0, len(errs))
	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "this field is required"
		case "email":
			message = "must be a valid email address"
		case "min":
			message = fmt.Sprintf("value is too short (minimum %s)", fieldError.Param())
		case "password":
			message = "must be at least 8 characters with uppercase, lowercase and digit"
		default:
			message = "invalid value"
		}

		messages = append(messages, fmt.Sprintf("%s: %s", fieldError.Field(), message))
	}
	sort.Strings(messages)

	Fail(w, http.StatusBadRequest, "Request validation failed", strings.Join(messages, "; "))
}

// BindAndValidate decodes the JSON request body into T and validates it with
// struct tags. Writes the error envelope itself on failure.
func BindAndValidate[T Struct](w http.ResponseWriter, r *http.Request) (T, error) {
	var value T

	err := json.NewDecoder(r.Body).Decode(&value)
	if err != nil {
		DecodeError(w, err)
		return value, err
	}

	err = validate.Struct(value)
	if err != nil {
		// cast is fine, T is expected to be a valid struct
		errs := err.(validator.ValidationErrors)
		ValidationErrors(w, errs)
		return value, err
	}

	return value, nil
}

// jsonWithStatus sends data as json and enforces status code
func jsonWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}
