package controllers

import (
	"bytes"
	"errors"
	"ess/internal/services"
	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"io"
	"net/http"
	"strings"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

var bodyValidator = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	kind := services.KindOf(err)
	writeJSON(w, statusForKind(kind), envelope{
		Success: false,
		Error:   services.UserMessage(err),
		Kind:    string(kind),
	})
}

func statusForKind(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindInvalidCredentials, services.KindUnauthenticated:
		return http.StatusUnauthorized
	case services.KindDeviceMismatch, services.KindAccessDisabled, services.KindPasswordResetRequired:
		return http.StatusForbidden
	case services.KindOperationInProgress:
		return http.StatusConflict
	case services.KindNetworkFailure, services.KindSiteUnreachable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// decodeBody reads a JSON body of at most 1 MB into dst and validates its
// struct tags. An empty body decodes to the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := readBody(w, r, dst); err != nil {
		return err
	}
	if err := bodyValidator.Struct(dst); err != nil {
		return &services.Error{Kind: services.KindValidation, Message: validationMessage(err), Err: err}
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &services.Error{Kind: services.KindValidation, Message: "Request body is too large.", Err: err}
		}
		return &services.Error{Kind: services.KindValidation, Message: "Unable to read request body.", Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &services.Error{Kind: services.KindValidation, Message: "Request body is not valid JSON.", Err: err}
	}
	return nil
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return "Invalid request."
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return field + " is required."
	case "min":
		return field + " must be at least " + fe.Param() + " characters long."
	case "max":
		return field + " must be at most " + fe.Param() + " characters long."
	}
	return field + " is invalid."
}
