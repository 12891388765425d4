package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"mortgage-service/metrics"
	"mortgage-service/service"
)

type RouterDeps struct {
	Service  *service.MortgageService
	Logger   logrus.FieldLogger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// RateLimiter guards POST /execute; nil disables limiting.
	RateLimiter *RateLimiter
}

func NewRouter(d RouterDeps) *mux.Router {
	h := NewMortgageHandler(d.Service, d.Logger)

	r := mux.NewRouter()
	r.Use(RequestID, Logging(d.Logger), Metrics(d.Metrics))

	var execute http.Handler = http.HandlerFunc(h.Execute)
	if d.RateLimiter != nil {
		execute = RateLimitMiddleware(d.RateLimiter, d.Logger, d.Metrics, execute)
	}

	r.Handle("/execute", execute).Methods(http.MethodPost)
	r.HandleFunc("/cache", h.Cache).Methods(http.MethodGet)
	r.HandleFunc("/cache/{id:[0-9]+}", h.CacheByID).Methods(http.MethodGet)
	r.HandleFunc("/healthz", Health).Methods(http.MethodGet)
	if d.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(d.Gatherer)).Methods(http.MethodGet)
	}

	return r
}
