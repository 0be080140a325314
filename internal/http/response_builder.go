// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing HTMX responses
// and maps domain errors onto status codes for both HTMX and JSON clients.

package http

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"monev/internal/core"
	"monev/internal/log"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
// It encapsulates the construction of HX-Trigger headers and response bodies.
type HTMXResponseBuilder struct {
	triggers   map[string]any
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]any),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data any) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerChanged adds the <resource>:changed trigger that makes every
// partial showing that resource refetch.
func (b *HTMXResponseBuilder) TriggerChanged(resource, action string, id int64) *HTMXResponseBuilder {
	return b.Trigger(resource+":changed", map[string]any{"action": action, "id": id})
}

// TriggerFormReset adds the form:reset trigger scoped to one form.
func (b *HTMXResponseBuilder) TriggerFormReset(form string) *HTMXResponseBuilder {
	return b.Trigger("form:reset", map[string]string{"form": form})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// TriggerNotification adds a show-notification trigger with the specified parameters.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]any{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

// TriggerSuccessNotification is a convenience method for success notifications.
func (b *HTMXResponseBuilder) TriggerSuccessNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationSuccess, message, 3000)
}

// TriggerErrorNotification is a convenience method for error notifications.
func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// BodyString sets the response body as a string.
func (b *HTMXResponseBuilder) BodyString(content string) *HTMXResponseBuilder {
	b.body = []byte(content)
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html string) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = []byte(html)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML(`<div class="error" role="alert">` + escapedMsg + `</div>`)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusMethodNotAllowed, "Metode tidak diizinkan").
		Header("Allow", allowedMethods)
}

// APIError is the JSON error body.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps an error onto its status code, error code and client message.
// Internal failures never leak their text.
func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest, log.ErrorTypeValidation, validationMessage(err)
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, log.ErrorTypeNotFound, "Data tidak ditemukan"
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, log.ErrorTypeConflict, "Data masih digunakan oleh data lain"
	default:
		return http.StatusInternalServerError, log.ErrorTypeInternal, "Terjadi kesalahan pada server"
	}
}

func validationMessage(err error) string {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIError{Error: code, Message: message})
}

// writeError answers with an HTML fragment for HTMX requests and a JSON
// body otherwise.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classify(err)
	if isHTMX(r) {
		ErrorResponse(status, message).Write(w)
		return
	}
	writeAPIError(w, status, code, message)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	if isHTMX(r) {
		MethodNotAllowedError(allowed).Write(w)
		return
	}
	w.Header().Set("Allow", allowed)
	writeAPIError(w, http.StatusMethodNotAllowed, log.ErrorTypeMethodNotAllowed, "method "+r.Method+" is not allowed")
}
