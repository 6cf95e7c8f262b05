// Package response provides helpers for writing JSON API responses.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Wafflinyo/USALeague/pkg/apperror"
)

// Response is the standard success envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// errorBody is the standard failure envelope.
type errorBody struct {
	Success bool      `json:"success"`
	Error   errorInfo `json:"error"`
}

type errorInfo struct {
	Code    apperror.Kind `json:"code"`
	Message string        `json:"message"`
}

// JSON sends a success response with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

// OK sends a 200 OK response.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 Created response.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends a structured error response. Unknown error types are
// reported as internal errors without leaking their message.
func Error(w http.ResponseWriter, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal("")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(errorBody{
		Success: false,
		Error:   errorInfo{Code: appErr.Kind, Message: appErr.Message},
	})
}
