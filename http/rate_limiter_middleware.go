package http

import (
	"net"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"mortgage-service/metrics"
)

func RateLimitMiddleware(
	limiter *RateLimiter,
	log logrus.FieldLogger,
	m *metrics.Metrics,
	next http.Handler,
) http.Handler {

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		if !limiter.Allow(clientIP(r)) {
			m.RateLimited()
			w.Header().Set("Retry-After", strconv.Itoa(int(limiter.RetryAfter().Seconds())))
			writeJSON(w, requestLogger(log, r), http.StatusTooManyRequests, errorResponse{
				Error: "rate limit exceeded",
				Code:  "rate_limited",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || ip == "" {
		return r.RemoteAddr
	}
	return ip
}
