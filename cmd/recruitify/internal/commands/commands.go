package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/wolfeidau/recruitify/internal/auth"
	"github.com/wolfeidau/recruitify/internal/client"
	"github.com/wolfeidau/recruitify/internal/localstore"
	"github.com/wolfeidau/recruitify/internal/logger"
	"github.com/wolfeidau/recruitify/internal/models"
	"github.com/wolfeidau/recruitify/internal/selection"
	"github.com/wolfeidau/recruitify/internal/telemetry"
	"github.com/wolfeidau/recruitify/internal/workspace"
)

type Globals struct {
	Debug      bool
	Version    string
	Server     string
	StateDir   string
	Timeout    time.Duration
	MaxRetries int
	Tracing    bool

	// Out and In default to stdout and stdin.
	Out io.Writer
	In  io.Reader
}

func (g *Globals) stdout() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Globals) stdin() io.Reader {
	if g.In == nil {
		return os.Stdin
	}
	return g.In
}

// setupLogging configures the global logger. Without debug only warnings and errors
// reach stderr so they do not mix with command output.
func setupLogging(debug bool) zerolog.Logger {
	log := logger.Setup(debug)
	if !debug {
		log = log.Level(zerolog.WarnLevel)
	}
	zlog.Logger = log
	return log
}

func (g *Globals) openState() (*localstore.FileStore, error) {
	state, err := localstore.NewFileStore(g.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state: %w", err)
	}
	return state, nil
}

// session is everything a logged in command works with.
type session struct {
	log       zerolog.Logger
	user      models.User
	store     *selection.Store
	workspace *workspace.Workspace
	shutdown  telemetry.Shutdown
}

func (s *session) Close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.shutdown(shutdownCtx); err != nil {
		s.log.Error().Err(err).Msg("Failed to shutdown telemetry")
	}
}

// connect sets up logging and telemetry, then opens a workspace for the logged in user.
// The caller must Close the returned session.
func (g *Globals) connect(ctx context.Context) (*session, error) {
	log := setupLogging(g.Debug)

	shutdown := telemetry.Shutdown(func(context.Context) error { return nil })
	if g.Tracing {
		log.Debug().Msg("Tracing is enabled")
		var err error
		shutdown, err = telemetry.Init(ctx, "recruitify", g.Version)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
			shutdown = func(context.Context) error { return nil }
		}
	}

	state, err := g.openState()
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	sessions := auth.NewSessionStore(state)
	current, err := sessions.Load()
	if err != nil {
		_ = shutdown(ctx)
		return nil, loginHint(err)
	}

	cfg := client.DefaultConfig()
	cfg.ServerURL = g.Server
	cfg.Timeout = g.Timeout
	cfg.MaxRetries = g.MaxRetries
	cfg.CacheDir = client.CacheDir(state.Dir(), g.Server, current.User.ID)

	provider, err := client.New(cfg, auth.NewTokenSource(sessions), log)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	store := selection.NewStore(state)

	return &session{
		log:       log,
		user:      current.User,
		store:     store,
		workspace: workspace.New(current.User, store, provider, provider),
		shutdown:  shutdown,
	}, nil
}

// load opens a session and loads the user's organizations and cycles.
func (g *Globals) load(ctx context.Context) (*session, error) {
	sess, err := g.connect(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := sess.workspace.Load(ctx); err != nil {
		sess.Close()
		return nil, loginHint(err)
	}

	return sess, nil
}

// loginHint points the user at login when err means the session is unusable.
// Every failed fetch counts: the server is the only judge of the token.
func loginHint(err error) error {
	if errors.Is(err, client.ErrFetch) ||
		errors.Is(err, auth.ErrNotLoggedIn) ||
		errors.Is(err, auth.ErrSessionExpired) {
		return fmt.Errorf("%w\n\nRun 'recruitify login <token>' to sign in", err)
	}
	return err
}

func describeSelection(sel selection.Selection) (org, cycle string) {
	org, cycle = "(none)", "(none)"
	if sel.Organization != nil {
		org = fmt.Sprintf("%s (%s)", sel.Organization.Name, sel.Organization.ID)
	}
	if sel.Cycle != nil {
		cycle = fmt.Sprintf("%s (%s)", sel.Cycle.Name, sel.Cycle.ID)
	}
	return org, cycle
}

func printSelection(w io.Writer, sel selection.Selection) {
	org, cycle := describeSelection(sel)
	fmt.Fprintf(w, "Organization:  %s\n", org)
	fmt.Fprintf(w, "Cycle:         %s\n", cycle)
}
