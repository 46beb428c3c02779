package server

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/celerix-records/internal/api"
	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/internal/vault"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func newTestRouter() *Router {
	gin.SetMode(gin.TestMode)
	store := engine.NewMemStore(nil, nil)
	return NewRouter(store, api.NewEngine(&api.Handler{Store: store}), Options{})
}

func TestRouter_Handler(t *testing.T) {
	h := newTestRouter().Handler()

	cases := []struct {
		path string
		code int
		body string
	}{
		{"/healthz", http.StatusOK, "ok"},
		{"/readyz", http.StatusOK, "ready"},
		{"/all_user", http.StatusOK, "[]"},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("GET", tc.path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != tc.code {
			t.Errorf("%s: expected status %d, got %d", tc.path, tc.code, w.Code)
		}
		if tc.body != "" && w.Body.String() != tc.body {
			t.Errorf("%s: expected body %q, got %q", tc.path, tc.body, w.Body.String())
		}
	}

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "celerix_records_http_requests_total") {
		t.Error("Expected request metrics to be exported")
	}

	// Write routes reach the API through the method fallback
	req = httptest.NewRequest("POST", "/clock-in", strings.NewReader(`{"email":"a@x.com","location":"NYC"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for create, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRouter_CORS(t *testing.T) {
	h := newTestRouter().Handler()

	req := httptest.NewRequest("OPTIONS", "/all_item", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Expected CORS headers on preflight")
	}
}

func TestRouter_NotReady(t *testing.T) {
	r := NewRouter(downStore{}, http.NotFoundHandler(), Options{})
	req := httptest.NewRequest("GET", "/readyz", nil)
	w := httptest.NewRecorder()
	r.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", w.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	r := NewRouter(downStore{}, http.NotFoundHandler(), Options{RateLimit: 2})
	h := r.Handler()

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/healthz", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("Expected status 429 after limit, got %d", last)
	}
}

func waitForAddr(t *testing.T, r *Router) string {
	t.Helper()
	for i := 0; i < 20; i++ {
		time.Sleep(50 * time.Millisecond)
		if addr := r.Addr(); addr != nil {
			return addr.String()
		}
	}
	t.Fatalf("Server did not start in time")
	return ""
}

func TestRouter_Listen(t *testing.T) {
	router := newTestRouter()

	errc := make(chan error, 1)
	go func() { errc <- router.Listen("127.0.0.1:0") }()
	addr := waitForAddr(t, router)

	resp, err := http.Get("http://" + addr + "/healthz")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Errorf("Expected ok, got %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := router.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if err := <-errc; err != nil {
		t.Errorf("Listen returned %v after shutdown", err)
	}
}

func TestRouter_ListenTLS(t *testing.T) {
	router := newTestRouter()
	cert, err := vault.GenerateSelfSignedCert("127.0.0.1")
	if err != nil {
		t.Fatalf("GenerateSelfSignedCert failed: %v", err)
	}
	router.SetCertificate(cert)

	go router.Listen("127.0.0.1:0")
	addr := waitForAddr(t, router)
	defer router.Shutdown(context.Background())

	client := &http.Client{Transport: &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}}
	resp, err := client.Get("https://" + addr + "/all_item")
	if err != nil {
		t.Fatalf("GET over TLS failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}
