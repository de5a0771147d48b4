package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/coffeelog/internal/client/client"
	"github.com/dmitrijs2005/coffeelog/internal/client/config"
	"github.com/dmitrijs2005/coffeelog/internal/client/models"
	"github.com/dmitrijs2005/coffeelog/internal/client/netstatus"
	"github.com/dmitrijs2005/coffeelog/internal/client/rescache"
	"github.com/dmitrijs2005/coffeelog/internal/client/services"
	"github.com/dmitrijs2005/coffeelog/internal/filex"
	"github.com/dmitrijs2005/coffeelog/internal/logging"
)

// Status lines printed by mutating commands.
const (
	msgSavedLocally   = "Saved locally."
	msgDeleted        = "Deleted."
	msgDeletedLocally = "Deleted locally."
	msgNotFound       = "Entry not found."
)

type App struct {
	config *config.Config
	log    logging.Logger

	storage   *client.Storage
	repos     *client.Repositories
	remote    client.Client
	monitor   *netstatus.Monitor
	identity  services.IdentityService
	entries   services.EntryService
	sync      services.SyncService
	transport *rescache.Transport
	activator *rescache.Activator

	compressor models.Compressor

	in   *bufio.Reader
	out  io.Writer
	view string
}

// Option customizes an App before its services are built.
type Option func(*App)

// WithIO replaces stdin/stdout.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(a *App) {
		a.in = bufio.NewReader(in)
		a.out = out
	}
}

// WithRemote replaces the HTTP client of the remote entry API.
func WithRemote(c client.Client) Option {
	return func(a *App) { a.remote = c }
}

// WithCompressor sets the image compressor used for oversized photos.
func WithCompressor(c models.Compressor) Option {
	return func(a *App) { a.compressor = c }
}

// NewApp opens local storage and wires the services. The connectivity mode
// is probed once unless the configuration forces offline work.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer, opts ...Option) (*App, error) {
	a := &App{
		config: cfg,
		log:    log,
		in:     bufio.NewReader(in),
		out:    out,
	}
	for _, opt := range opts {
		opt(a)
	}

	if _, err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		log.Error(ctx, "error preparing database directory", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}

	a.storage = client.NewStorage(client.FileDSN(cfg.DatabasePath))
	repos, err := a.storage.Repositories(ctx)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", cfg.DatabasePath, "error", err)
		return nil, err
	}
	a.repos = repos

	if a.remote == nil {
		a.remote = client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout, nil)
	}

	a.monitor = netstatus.NewMonitor(a.remote, log).WithProbeTimeout(cfg.RequestTimeout)
	if cfg.Offline {
		a.monitor.Disable(ctx)
	} else {
		a.monitor.Check(ctx)
	}

	a.identity = services.NewIdentityService(repos.Metadata)
	a.entries = services.NewEntryService(repos.Entries, a.remote, a.identity, a.monitor, a.compressor, log)
	a.sync = services.NewSyncService(repos.Entries, a.remote, a.identity, a.monitor, log, a.afterSync)

	a.activator = rescache.NewActivator(cfg.ServerURL, &http.Client{Timeout: cfg.RequestTimeout}, repos.Cache, repos.Metadata, log)
	active, err := a.activator.Current(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.transport = rescache.NewTransport(http.DefaultTransport, repos.Cache, log, active)

	return a, nil
}

func (a *App) Close() error {
	return a.storage.Close()
}

// Mode is the current connectivity mode.
func (a *App) Mode() netstatus.Mode {
	return a.monitor.Mode()
}

// StartOnlineStatusWatcher probes the server until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context) {
	a.monitor.Run(ctx, a.config.OnlineCheckInterval)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// afterSync re-renders the entry list when it is what the user is looking at.
func (a *App) afterSync(ctx context.Context, _ services.SyncResult) {
	if a.view != viewList {
		return
	}
	if err := a.renderList(ctx); err != nil {
		a.log.Error(ctx, "re-rendering list failed", "error", err)
	}
}
