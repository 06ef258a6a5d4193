package ui

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// DetermineAccess inspects the requested listen address and returns whether
// authentication is required (i.e., binding to a non-loopback/unspecified host).
// It rejects remote bindings unless allowRemote is explicitly enabled.
func DetermineAccess(listenAddr string, allowRemote bool) (bool, error) {
	host, _, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return false, fmt.Errorf("invalid listen address %q: %w", listenAddr, err)
	}

	normalizedHost := host
	if normalizedHost == "" {
		normalizedHost = "0.0.0.0"
	}

	if isLoopbackHost(normalizedHost) {
		return false, nil
	}

	if !allowRemote {
		return false, fmt.Errorf("refusing remote bind to %q without --allow-remote", normalizedHost)
	}

	return true, nil
}

// HandlerConfig captures the inputs required to build the serve HTTP handler.
type HandlerConfig struct {
	RequireAuth bool
	AuthToken   string
	Register    func(*http.ServeMux)
}

// NewHandler constructs the HTTP handler for the board server: a health
// endpoint, whatever Register attaches, and a bearer-token gate when
// the bind address demands one.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if cfg.RequireAuth && strings.TrimSpace(cfg.AuthToken) == "" {
		return nil, errors.New("auth token required when authentication is enabled")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthHandler)

	if cfg.Register != nil {
		cfg.Register(mux)
	}

	if !cfg.RequireAuth {
		return mux, nil
	}

	expectedHeader := "Bearer " + strings.TrimSpace(cfg.AuthToken)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actual := strings.TrimSpace(r.Header.Get("Authorization"))
		if subtle.ConstantTimeCompare([]byte(actual), []byte(expectedHeader)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="bdk"`)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		mux.ServeHTTP(w, r)
	}), nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	resp := map[string]string{"status": "ok"}
	enc := json.NewEncoder(w)
	enc.Encode(resp) // nolint:errchkjson
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}

	return false
}
