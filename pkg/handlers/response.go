package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-codegen/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-codegen/pkg/logging"
)

// maxBodyBytes caps JSON request bodies and uploaded templates.
const maxBodyBytes = 1 << 20

// ApiResponse is the envelope for every JSON API response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error envelope and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, ApiResponse{Success: false, Error: errorCode, Message: message})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 envelope around data.
func WriteSuccess(w http.ResponseWriter, logger *zap.Logger, data any) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

// StatusForKind maps an error kind to its HTTP status.
func StatusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInvalidInput:
		return http.StatusBadRequest
	case apperrors.KindTemplateMissing:
		return http.StatusNotFound
	case apperrors.KindConfigMissing:
		return http.StatusPreconditionFailed
	case apperrors.KindConnection, apperrors.KindUpstream:
		return http.StatusBadGateway
	case apperrors.KindTransport:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// WriteError classifies err and writes the matching envelope. Classified
// errors render their own sanitized text; anything else is reported as an
// internal error without detail.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := StatusForKind(kind)
	log := logging.WithContext(r.Context(), logger)

	message := "internal server error"
	code := "internal_error"
	if kind != apperrors.KindUnknown {
		message = err.Error()
		code = string(kind)
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("kind", string(kind)),
			zap.String("error", logging.SanitizeError(err)))
	} else {
		log.Info("Request rejected",
			zap.String("path", r.URL.Path),
			zap.String("kind", string(kind)),
			zap.String("error", logging.SanitizeError(err)))
	}

	if writeErr := ErrorResponse(w, status, code, message); writeErr != nil {
		log.Error("Failed to write error response", zap.Error(writeErr))
	}
}

// decodeJSON reads a bounded JSON body into dst. An empty body leaves dst
// untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperrors.InvalidInput(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		}
		return apperrors.InvalidInput("request body is not valid JSON")
	}
	return nil
}
