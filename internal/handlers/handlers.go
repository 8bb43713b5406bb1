package handlers

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/chepyr/task-dashboard/internal/store"
	"github.com/chepyr/task-dashboard/internal/theme"
)

type Handler struct {
	Store              *store.Store
	Theme              *theme.Preference
	RateLimiter        *RateLimiter
	WSHub              *WSHub
	SearchDescriptions bool
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", h.RateLimit(h.HandleTasks))
	mux.HandleFunc("/tasks/", h.RateLimit(h.HandleTaskByID))
	mux.HandleFunc("/theme", h.RateLimit(h.HandleTheme))
	mux.HandleFunc("/theme/toggle", h.RateLimit(h.HandleThemeToggle))
	mux.HandleFunc("/ws", h.HandleWebSocket)
	return mux
}

type errorResponse struct {
	Error  string             `json:"error"`
	Fields []store.FieldError `json:"fields,omitempty"`
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, errorResponse{Error: message})
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("encode response")
	}
}

type RateLimiter struct {
	attempts map[string]int
	limit    int
	mutex    sync.Mutex
	window   time.Duration
}

// NewRateLimiter allows limit requests per client IP in each window. The
// counters are reset by a background goroutine every window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts: make(map[string]int),
		limit:    limit,
		window:   window,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	count, exists := rl.attempts[ip]
	if !exists {
		rl.attempts[ip] = 1
		return true
	}
	if count >= rl.limit {
		return false
	}
	rl.attempts[ip]++
	return true
}

func (rl *RateLimiter) cleanup() {
	for range time.Tick(rl.window) {
		rl.mutex.Lock()
		rl.attempts = make(map[string]int)
		rl.mutex.Unlock()
	}
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr without the port.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(strings.ToLower(ct), "application/json")
}
