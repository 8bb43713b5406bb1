package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chepyr/task-dashboard/internal/store"
)

func TestClientIP_XForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	req.RemoteAddr = "10.0.0.1:1234"

	if got := clientIP(req); got != "1.2.3.4" {
		t.Fatalf("clientIP = %q, want %q", got, "1.2.3.4")
	}
}

func TestClientIP_RemoteAddr(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	if got := clientIP(req); got != "127.0.0.1" {
		t.Fatalf("clientIP = %q, want %q", got, "127.0.0.1")
	}
}

func TestCheckOrigin_EmptyAllowsAll(t *testing.T) {
	hub := NewWSHub(nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://any.example")
	if !hub.checkOrigin(req) {
		t.Fatalf("checkOrigin should allow when no origins are configured")
	}
}

func TestCheckOrigin_ListAllowAndDeny(t *testing.T) {
	hub := NewWSHub([]string{"https://a.example", " https://b.example"})
	allowReq := httptest.NewRequest(http.MethodGet, "/", nil)
	allowReq.Header.Set("Origin", "https://b.example")
	denyReq := httptest.NewRequest(http.MethodGet, "/", nil)
	denyReq.Header.Set("Origin", "https://c.example")

	if !hub.checkOrigin(allowReq) {
		t.Fatalf("expected allow for https://b.example")
	}
	if hub.checkOrigin(denyReq) {
		t.Fatalf("expected deny for https://c.example")
	}
}

// TestRateLimiter_Allow tests the Allow method for rate limiting logic.
func TestRateLimiter_Allow(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		attempts []string // IPs to attempt
		expected []bool   // Expected results
	}{
		{
			name:     "Within limit",
			limit:    2,
			attempts: []string{"192.168.1.1", "192.168.1.1"},
			expected: []bool{true, true},
		},
		{
			name:     "Exceed limit",
			limit:    1,
			attempts: []string{"192.168.1.1", "192.168.1.1"},
			expected: []bool{true, false},
		},
		{
			name:     "Multiple IPs",
			limit:    1,
			attempts: []string{"192.168.1.1", "192.168.1.2"},
			expected: []bool{true, true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rl := NewRateLimiter(tt.limit, time.Minute)
			for i, ip := range tt.attempts {
				got := rl.Allow(ip)
				if got != tt.expected[i] {
					t.Errorf("Attempt %d for IP %s: expected %v, got %v", i+1, ip, tt.expected[i], got)
				}
			}
		})
	}
}

func TestRateLimiter_AllowBlocksAndResets(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)

	ip := "1.2.3.4"
	if !rl.Allow(ip) || !rl.Allow(ip) {
		t.Fatalf("first two attempts should be allowed")
	}
	if rl.Allow(ip) {
		t.Fatalf("third attempt should be blocked")
	}

	time.Sleep(120 * time.Millisecond) // wait for cleanup to run
	if !rl.Allow(ip) {
		t.Fatalf("after window cleanup attempt should be allowed again")
	}
}

// TestRateLimiter_Concurrent tests concurrent access to Allow.
func TestRateLimiter_Concurrent(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ip := "192.168.1.1"
	var wg sync.WaitGroup
	results := make([]bool, 5)

	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = rl.Allow(ip)
		}(i)
	}
	wg.Wait()

	allowedCount := 0
	for _, result := range results {
		if result {
			allowedCount++
		}
	}
	if allowedCount != rl.limit {
		t.Errorf("Expected exactly %d allowed attempts, got %d", rl.limit, allowedCount)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	handler := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated X-Request-ID")
	}

	const given = "6f1c8f4e-8d7a-4d38-9b0e-3c2f0c1d2e3f"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", given)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != given {
		t.Fatalf("X-Request-ID = %q, want %q", got, given)
	}
}

func TestWSHub_BroadcastDoesNotWaitForSlowClients(t *testing.T) {
	hub := NewWSHub(nil)
	fast := &wsClient{send: make(chan []byte, 4)}
	slow := &wsClient{send: make(chan []byte, 1)}
	hub.add(fast)
	hub.add(slow)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			hub.Broadcast(store.Event{Type: store.EventTaskDeleted, TaskID: int64(i + 1)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full client queue")
	}

	if hub.Len() != 1 {
		t.Fatalf("hub.Len() = %d, want 1 after dropping the slow client", hub.Len())
	}
	if got := len(fast.send); got != 3 {
		t.Fatalf("fast client queued %d events, want 3", got)
	}
	// the slow client's queue is closed after its one buffered event
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Fatal("slow client queue should be closed")
	}
}

func TestWSHub_EventsKeepOrderPerClient(t *testing.T) {
	hub := NewWSHub(nil)
	c := &wsClient{send: make(chan []byte, 8)}
	hub.add(c)

	hub.Broadcast(store.Event{Type: store.EventTaskCreated, TaskID: 7})
	hub.Broadcast(store.Event{Type: store.EventTaskDeleted, TaskID: 7})

	first, second := string(<-c.send), string(<-c.send)
	if !strings.Contains(first, `"task_created"`) || !strings.Contains(second, `"task_deleted"`) {
		t.Fatalf("events out of order: %s then %s", first, second)
	}
}
