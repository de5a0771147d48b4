package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func serveCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web app through a local proxy that keeps working offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Serve(cmd.Context())
		},
	}
}

// PrepareOffline applies the configured app version to the resource cache
// and syncs, as the web app does on load. Both steps need the server; when
// it is unreachable the previous cache stays active.
func (a *App) PrepareOffline(ctx context.Context) {
	if !a.monitor.Online() {
		a.log.Info(ctx, "offline, using cached app shell", "cache", a.transport.Active())
		return
	}

	name, err := a.activator.Apply(ctx, a.config.AppVersion, a.config.Shell())
	if err != nil {
		a.log.Warn(ctx, "app version not applied", "version", a.config.AppVersion, "error", err)
	} else {
		a.transport.SetActive(name)
	}

	if err := a.runSync(ctx); err != nil {
		a.log.Error(ctx, "sync on start failed", "error", err)
	}
}

// ProxyHandler forwards requests to the server through the resource cache.
func (a *App) ProxyHandler() (http.Handler, error) {
	target, err := url.Parse(a.config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		Transport: a.transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			a.log.Warn(r.Context(), "proxy request failed", "url", r.URL.String(), "error", err)
			http.Error(w, "Offline", http.StatusBadGateway)
		},
	}, nil
}

// Serve runs the offline proxy until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	a.PrepareOffline(ctx)

	handler, err := a.ProxyHandler()
	if err != nil {
		return err
	}

	go a.StartOnlineStatusWatcher(ctx)

	srv := &http.Server{
		Addr:              a.config.ProxyAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.printf("Serving %s on http://%s\n", a.config.ServerURL, a.config.ProxyAddr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown proxy: %w", err)
	}
	return nil
}
