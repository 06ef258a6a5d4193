package main

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/config"
	"github.com/davidcforbes/beads-kanban/internal/debug"
	uiserver "github.com/davidcforbes/beads-kanban/internal/ui"
	"github.com/davidcforbes/beads-kanban/internal/ui/api"
)

var (
	serveAddr        string
	serveAllowRemote bool
	serveAuthToken   string
	serveTLSCert     string
	serveTLSKey      string
	serveTLSSelfSign bool
	serveNoWatch     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the board as a JSON API with live change events",
	Long: `Serve the board over HTTP: column pages, card details, mutations,
and an SSE stream that fires whenever the board changes.

The server binds to loopback by default. Binding elsewhere requires
--allow-remote, which turns on bearer-token authentication.

Examples:
  # Local API on the default port
  bdk serve

  # Expose on the LAN with a generated token
  bdk serve --addr 0.0.0.0:7333 --allow-remote

  # Self-signed TLS
  bdk serve --tls-self-signed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()

	listenAddr := strings.TrimSpace(serveAddr)
	if listenAddr == "" {
		listenAddr = config.BoardOptions().ServeAddr
	}

	requireRemoteAuth, err := uiserver.DetermineAccess(listenAddr, serveAllowRemote)
	if err != nil {
		return err
	}

	token := strings.TrimSpace(serveAuthToken)
	requireAuth := requireRemoteAuth || token != ""
	if requireAuth && token == "" {
		token, err = generateAuthToken()
		if err != nil {
			return fmt.Errorf("generate auth token: %w", err)
		}
	}

	useTLS := false
	certPath := strings.TrimSpace(serveTLSCert)
	keyPath := strings.TrimSpace(serveTLSKey)
	if serveTLSSelfSign {
		if certPath != "" || keyPath != "" {
			return errors.New("--tls-self-signed cannot be combined with --tls-cert/--tls-key")
		}
		certPath, keyPath, err = ensureSelfSignedCertificate(listenAddr, cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("generate self-signed certificate: %w", err)
		}
		useTLS = true
	} else if certPath != "" || keyPath != "" {
		if certPath == "" || keyPath == "" {
			return errors.New("both --tls-cert and --tls-key must be provided")
		}
		useTLS = true
	}
	if useTLS {
		if _, err := tls.LoadX509KeyPair(certPath, keyPath); err != nil {
			return fmt.Errorf("load TLS certificate/key: %w", err)
		}
	}

	b, err := openBoard()
	if err != nil {
		return err
	}

	events := api.NewDispatcher(0)
	apiHandler := api.NewHandler(b, events)

	// Out-of-process changes (another bd, a git pull) surface on the
	// SSE stream through the workspace watcher. API mutations publish
	// their own events.
	if !serveNoWatch {
		if err := b.Watch(ctx, func() {
			events.Publish(api.NewChangeEvent(api.ScopeBoard, ""))
		}); err != nil {
			WarnError("workspace watch unavailable: %v", err)
		}
	}

	handler, err := uiserver.NewHandler(uiserver.HandlerConfig{
		RequireAuth: requireAuth,
		AuthToken:   token,
		Register:    apiHandler.Register,
	})
	if err != nil {
		return err
	}

	if requireAuth {
		fmt.Fprintf(cmd.OutOrStdout(), "bdk auth token: %s\n", token)
		fmt.Fprintf(cmd.OutOrStdout(), "Send requests with header: Authorization: Bearer %s\n", token)
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddr, err)
	}
	defer func() { _ = listener.Close() }()

	// WriteTimeout stays zero so SSE connections live as long as the
	// subscriber does.
	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		WriteTimeout:      0,
	}

	serveErrCh := make(chan error, 1)
	go func() {
		var serveErr error
		if useTLS {
			serveErr = server.ServeTLS(listener, certPath, keyPath)
		} else {
			serveErr = server.Serve(listener)
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			serveErrCh <- serveErr
		}
		close(serveErrCh)
	}()

	baseURL := formatBaseURL(listener.Addr(), useTLS)
	fmt.Fprintf(cmd.OutOrStdout(), "bdk serving on %s\n", baseURL)
	debug.Logf("serve: listening url=%s tls=%v auth=%v", baseURL, useTLS, requireAuth)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown server: %w", err)
		}
		if err, ok := <-serveErrCh; ok && err != nil {
			return err
		}
		return nil
	case err, ok := <-serveErrCh:
		if ok && err != nil {
			return err
		}
		return nil
	}
}

func formatBaseURL(addr net.Addr, useTLS bool) string {
	scheme := "http"
	if useTLS {
		scheme = "https"
	}

	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok {
		return fmt.Sprintf("%s://%s", scheme, addr.String())
	}

	host := tcpAddr.IP.String()
	if tcpAddr.IP == nil || tcpAddr.IP.IsUnspecified() {
		host = "127.0.0.1"
	}
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, host, tcpAddr.Port)
}

func generateAuthToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "="), nil
}

// ensureSelfSignedCertificate writes (or rewrites) a self-signed cert
// for the listen host under ~/.beads and returns its paths.
func ensureSelfSignedCertificate(listenAddr string, out io.Writer) (string, string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", "", err
	}
	certDir := filepath.Join(home, ".beads")
	if err := os.MkdirAll(certDir, 0o755); err != nil {
		return "", "", err
	}

	certPath := filepath.Join(certDir, "bdk-cert.pem")
	keyPath := filepath.Join(certDir, "bdk-key.pem")

	certPEM, keyPEM, err := uiserver.GenerateSelfSignedCertificate(certHosts(listenAddr), 365*24*time.Hour)
	if err != nil {
		return "", "", err
	}
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		return "", "", err
	}

	if out != nil {
		fmt.Fprintf(out, "Self-signed TLS certificate written to %s (key %s)\n", certPath, keyPath)
	}
	return certPath, keyPath, nil
}

func certHosts(listenAddr string) []string {
	host, _, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host = ""
	}
	host = strings.TrimSpace(host)

	hosts := []string{"127.0.0.1", "::1", "localhost"}
	if host != "" && host != "0.0.0.0" && host != "::" {
		for _, h := range hosts {
			if h == host {
				return hosts
			}
		}
		hosts = append([]string{host}, hosts...)
	}
	return hosts
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to bind (host:port, default from config)")
	serveCmd.Flags().BoolVar(&serveAllowRemote, "allow-remote", false, "Permit binding to non-loopback addresses (requires auth token)")
	serveCmd.Flags().StringVar(&serveAuthToken, "auth-token", "", "Use the provided auth token instead of generating one")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "", "Path to PEM-encoded TLS certificate")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "", "Path to PEM-encoded TLS private key")
	serveCmd.Flags().BoolVar(&serveTLSSelfSign, "tls-self-signed", false, "Generate and use a self-signed TLS certificate")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not watch the workspace for out-of-process changes")
	rootCmd.AddCommand(serveCmd)
}
