package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	tests := []struct {
		name   string
		secret string
		target string
		header string
		want   int
	}{
		{"bearer", "s3cret", "/jsonrpc", "Bearer s3cret", http.StatusOK},
		{"wrong bearer", "s3cret", "/jsonrpc", "Bearer other", http.StatusUnauthorized},
		{"query", "s3cret", "/jsonrpc/ws?token=s3cret", "", http.StatusOK},
		{"wrong query", "s3cret", "/jsonrpc/ws?token=nope", "", http.StatusUnauthorized},
		{"basic header beats query", "s3cret", "/jsonrpc/ws?token=s3cret", "Basic abc", http.StatusUnauthorized},
		{"empty bearer", "s3cret", "/jsonrpc", "Bearer ", http.StatusUnauthorized},
		{"missing", "s3cret", "/jsonrpc", "", http.StatusUnauthorized},
		{"empty secret", "", "/jsonrpc?token=", "Bearer anything", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			requireToken(tt.secret, ok).ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestRequireTokenErrorBody(t *testing.T) {
	rr := httptest.NewRecorder()
	requireToken("s3cret", http.NotFoundHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/jsonrpc", nil))

	var body struct {
		Version string `json:"jsonrpc"`
		Error   struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		ID any `json:"id"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Version != "2.0" || body.Error.Code != -32600 || body.Error.Message != "Unauthorized" || body.ID != nil {
		t.Fatalf("unexpected body %+v", body)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("Content-Type = %q", ct)
	}
}
