package server

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/creachadair/jrpc2"
)

const codeInvalidRequest = jrpc2.Code(-32600)

type authFailure struct {
	Version string       `json:"jsonrpc"`
	Error   *jrpc2.Error `json:"error"`
	ID      any          `json:"id"`
}

// requireToken lets a request through to next only when it presents
// secret, either as a Bearer token or, for browser WebSockets, in the
// token query parameter. An empty secret locks the endpoint.
func requireToken(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := requestToken(r)
		if ok && secret != "" && subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1 {
			next.ServeHTTP(w, r)
			return
		}
		unauthorized.Inc()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(authFailure{
			Version: "2.0",
			Error:   &jrpc2.Error{Code: codeInvalidRequest, Message: "Unauthorized"},
		})
	})
}

// requestToken extracts the presented token. A non-Bearer Authorization
// header counts as no token even when the query carries one.
func requestToken(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		token, found := strings.CutPrefix(h, "Bearer ")
		return token, found && token != ""
	}
	token := r.URL.Query().Get("token")
	return token, token != ""
}
