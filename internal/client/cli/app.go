package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/citywatch/internal/client/backend"
	"github.com/dmitrijs2005/citywatch/internal/client/config"
	"github.com/dmitrijs2005/citywatch/internal/client/images"
	"github.com/dmitrijs2005/citywatch/internal/client/incidents"
	"github.com/dmitrijs2005/citywatch/internal/client/models"
	"github.com/dmitrijs2005/citywatch/internal/client/session"
	"github.com/dmitrijs2005/citywatch/internal/client/storage"
	"github.com/dmitrijs2005/citywatch/internal/logging"
)

// Sessions is the session store surface the CLI uses.
type Sessions interface {
	Login(ctx context.Context, email, secret string) (*models.User, error)
	Signup(ctx context.Context, email, secret, name string) (*models.User, error)
	CurrentUser(ctx context.Context) (*models.User, bool)
	Logout(ctx context.Context) error
}

// Incidents is the incident repository surface the CLI uses.
type Incidents interface {
	Create(ctx context.Context, d models.Draft) (*models.Incident, error)
	List(ctx context.Context) ([]models.Incident, error)
	ListByCategory(ctx context.Context, category string) ([]models.Incident, error)
	ListOwnedByCurrentUser(ctx context.Context) ([]models.Incident, error)
}

type App struct {
	config    *config.Config
	sessions  Sessions
	incidents Incidents
	uploader  images.Uploader
	log       logging.Logger
	reader    *bufio.Reader
	out       io.Writer
	closeFn   func() error
}

// NewApp opens storage per c and wires the session store, the incident
// repository and the optional image uploader. rec may be nil.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, rec backend.Recorder) (*App, error) {
	repos, err := storage.Init(ctx, c, rec)
	if err != nil {
		log.Error(ctx, "error initializing storage", "error", err)
		return nil, err
	}

	sessions := session.NewStore(repos.Sessions, repos.Directory, log, session.WithBackend(c.Backend))
	incs := incidents.NewRepository(repos.Incidents, sessions, log)

	app := &App{
		config:    c,
		sessions:  sessions,
		incidents: incs,
		log:       log,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		closeFn:   repos.Close,
	}
	// A nil *S3Uploader must not become a non-nil interface.
	if up := images.NewS3Uploader(images.S3Config{
		Bucket:    c.S3Bucket,
		Region:    c.S3Region,
		Endpoint:  c.S3BaseEndpoint,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
	}); up != nil {
		app.uploader = up
	}
	return app, nil
}

// Run starts the REPL and releases storage when it returns.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closeFn == nil {
			return
		}
		if err := a.closeFn(); err != nil {
			a.log.Warn(ctx, "error closing storage", "error", err)
		}
	}()

	printlnFn("Welcome to citywatch (backend: " + a.config.Backend + ", type 'help' for commands)")
	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader)
}

// withTimeout bounds a single storage call by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config == nil || a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, ok := a.sessions.CurrentUser(ctx)
	return ok
}

func (a *App) getStatus(ctx context.Context) string {
	if u, ok := a.sessions.CurrentUser(ctx); ok {
		return "(" + u.Email + ")"
	}
	return "(guest)"
}
