package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter limita requisições por IP com token bucket.
type RateLimiter struct {
	requestsPerMinute int
	burst             int
	now               func() time.Time

	mu       sync.Mutex
	clients  map[string]*rate.Limiter
	lastSeen map[string]time.Time
}

func NewRateLimiter(requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		burst:             burst,
		now:               time.Now,
		clients:           make(map[string]*rate.Limiter),
		lastSeen:          make(map[string]time.Time),
	}
}

// RateLimitMessage é o texto mostrado a quem passou do limite, na API e na tela.
const RateLimitMessage = "Muitas buscas em sequência. Aguarde alguns segundos e tente novamente."

// Middleware responde 429 em JSON quando o IP passa do limite.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return rl.Limit(http.HandlerFunc(rejectJSON))(next)
}

// Limit aplica o mesmo limite, mas entrega a requisição recusada para onReject.
// Os cabeçalhos X-RateLimit-* e Retry-After já vêm preenchidos.
func (rl *RateLimiter) Limit(onReject http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := rl.getLimiter(clientIP(r))
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.requestsPerMinute))

			if !limiter.AllowN(rl.now(), 1) {
				rateLimitedTotal.Inc()
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.retryAfter().Seconds()))
				onReject.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", int(limiter.TokensAt(rl.now()))))
			next.ServeHTTP(w, r)
		})
	}
}

func rejectJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   RateLimitMessage,
	})
}

func (rl *RateLimiter) getLimiter(clientID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lastSeen[clientID] = rl.now()

	if limiter, exists := rl.clients[clientID]; exists {
		return limiter
	}

	rps := rate.Limit(float64(rl.requestsPerMinute) / 60.0)
	limiter := rate.NewLimiter(rps, rl.burst)
	rl.clients[clientID] = limiter

	return limiter
}

// retryAfter estima quando o próximo token fica disponível.
func (rl *RateLimiter) retryAfter() time.Duration {
	if rl.requestsPerMinute <= 0 {
		return time.Minute
	}
	return time.Minute/time.Duration(rl.requestsPerMinute) + time.Second
}

// Cleanup esquece IPs sem requisição há mais que idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idle)
	for clientID, seen := range rl.lastSeen {
		if seen.Before(cutoff) {
			delete(rl.clients, clientID)
			delete(rl.lastSeen, clientID)
		}
	}
}

func (rl *RateLimiter) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Cleanup(2 * interval)
		}
	}
}

func (rl *RateLimiter) ActiveClients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// clientIP confia no RemoteAddr, já reescrito pelo middleware.RealIP do chi.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
