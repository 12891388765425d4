package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"mortgage-service/service"
)

const maxBodyBytes = 1 << 20

type MortgageHandler struct {
	service *service.MortgageService
	log     logrus.FieldLogger
}

func NewMortgageHandler(service *service.MortgageService, log logrus.FieldLogger) *MortgageHandler {
	return &MortgageHandler{service: service, log: log}
}

// Execute handles POST /execute.
func (h *MortgageHandler) Execute(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r)

	var req ExecuteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, log, &requestError{err: errors.New("invalid request body")})
		return
	}

	params, program, err := req.Parse()
	if err != nil {
		writeError(w, log, err)
		return
	}

	entry, err := h.service.Execute(r.Context(), params, program)
	if err != nil {
		writeError(w, log, err)
		return
	}

	log.WithField("id", entry.ID).Debug("mortgage stored")
	writeJSON(w, log, http.StatusOK, entry)
}

// Cache handles GET /cache.
func (h *MortgageHandler) Cache(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r)

	entries, err := h.service.Cache()
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, entries)
}

// CacheByID handles GET /cache/{id}, served from the mirror.
func (h *MortgageHandler) CacheByID(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(h.log, r)

	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, log, &requestError{err: errors.New("invalid id")})
		return
	}

	entry, err := h.service.Cached(r.Context(), uint32(id))
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, log, http.StatusOK, entry)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}
