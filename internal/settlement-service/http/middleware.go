package http

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/radieske/prediction-ledger/internal/settlement-service/dto"
)

// rateLimit limita as rotas de escrita com um token bucket global.
func rateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l != nil && !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusTooManyRequests, dto.ErrorResponse{Error: "RateLimited", Message: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
