package handler

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"

	"bank-wallet/internal/errors"
	"bank-wallet/internal/middleware"
)

// Response is the envelope of every reply: status mirrors the HTTP code,
// failures add a machine readable code.
type Response struct {
	Status  int         `json:"status"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response.Status = statusCode
	json.NewEncoder(w).Encode(response)
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, Response{Message: message})
}

func writeData(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, Response{Data: data})
}

func writeAppError(w http.ResponseWriter, appErr *errors.AppError) {
	writeJSON(w, appErr.HTTPStatus(), Response{
		Code:    string(appErr.Code),
		Message: appErr.Message,
	})
}

// writeError renders err, logging the cause of internal failures since the
// client only sees a generic message.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		appErr = errors.Internal("an unexpected error occurred", err)
	}

	if appErr.Code == errors.InternalError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}

	writeAppError(w, appErr)
}

// ErrorWriter adapts writeError for middleware that rejects requests.
func ErrorWriter(logger *slog.Logger) middleware.ErrorWriter {
	return func(w http.ResponseWriter, r *http.Request, err *errors.AppError) {
		writeError(w, r, logger, err)
	}
}

// maxBodyBytes caps every request body; none of the payloads come close.
const maxBodyBytes = 64 << 10

// decodeBody decodes a JSON body. An empty body decodes to the zero value so
// that missing fields are reported by validation.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !stderrors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewAppError(errors.InvalidInput, "request body too large").WithCause(err)
		}
		return errors.ErrInvalidInput.WithCause(err)
	}
	return nil
}
