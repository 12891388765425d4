package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"mortgage-service/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func statusFor(err error) int {
	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrProgramNotSelected),
		errors.Is(err, domain.ErrMultipleProgramsSelected),
		errors.Is(err, domain.ErrInsufficientInitialPayment),
		errors.Is(err, domain.ErrInvalidParameters):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmptyRegistry),
		errors.Is(err, domain.ErrCacheMiss):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRegistryFull):
		return http.StatusInsufficientStorage
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	status := statusFor(err)

	resp := errorResponse{Error: err.Error(), Code: domain.Code(err)}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		resp.Code = "invalid_request"
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		resp.Error = "internal server error"
	}

	writeJSON(w, log, status, resp)
}

// writeJSON encodes into a buffer first so a failed encode never leaves a
// half written 200 behind.
func writeJSON(w http.ResponseWriter, log logrus.FieldLogger, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.WithError(err).Error("failed to encode response")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}
