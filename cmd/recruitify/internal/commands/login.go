package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/wolfeidau/recruitify/internal/auth"
	"github.com/wolfeidau/recruitify/internal/client"
	"github.com/wolfeidau/recruitify/internal/selection"
)

// LoginCmd stores a bearer token issued by the identity provider.
type LoginCmd struct {
	Token string `arg:"" help:"Bearer token (JWT)" env:"RECRUITIFY_TOKEN"`
}

func (c *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	setupLogging(globals.Debug)

	state, err := globals.openState()
	if err != nil {
		return err
	}

	current, err := auth.NewSessionStore(state).Login(c.Token)
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	out := globals.stdout()
	fmt.Fprintf(out, "Logged in as %s\n", current.User.DisplayName())
	if !current.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Session expires %s\n", current.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}

	return nil
}

// LogoutCmd removes the stored session and the user's cached responses.
type LogoutCmd struct {
	Forget bool `help:"Also forget the last used organization"`
}

func (c *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	setupLogging(globals.Debug)

	state, err := globals.openState()
	if err != nil {
		return err
	}

	sessions := auth.NewSessionStore(state)
	out := globals.stdout()

	// an expired session still names the user whose state should go
	current, err := sessions.Stored()
	if err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			fmt.Fprintln(out, "Not logged in.")
			return nil
		}
		return err
	}

	if c.Forget {
		store := selection.NewStore(state)
		store.Initialize(current.User.ID)
		if err := store.Forget(); err != nil {
			return err
		}
	}

	if err := os.RemoveAll(client.CacheDir(state.Dir(), globals.Server, current.User.ID)); err != nil {
		return fmt.Errorf("failed to remove response cache: %w", err)
	}

	if err := sessions.Logout(); err != nil {
		return err
	}

	fmt.Fprintf(out, "Logged out %s\n", current.User.DisplayName())
	return nil
}

// WhoamiCmd shows the logged in user.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	setupLogging(globals.Debug)

	state, err := globals.openState()
	if err != nil {
		return err
	}

	current, err := auth.NewSessionStore(state).Load()
	if err != nil {
		return loginHint(err)
	}

	out := globals.stdout()
	fmt.Fprintf(out, "User ID:  %s\n", current.User.ID)
	if current.User.Name != "" {
		fmt.Fprintf(out, "Name:     %s\n", current.User.Name)
	}
	if current.User.Email != "" {
		fmt.Fprintf(out, "Email:    %s\n", current.User.Email)
	}
	if !current.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Expires:  %s\n", current.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}

	return nil
}

// StatusCmd shows the current organization and recruitment cycle.
type StatusCmd struct{}

func (c *StatusCmd) Run(ctx context.Context, globals *Globals) error {
	sess, err := globals.load(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	out := globals.stdout()
	fmt.Fprintf(out, "User:          %s\n", sess.user.DisplayName())
	printSelection(out, sess.workspace.Selection())
	fmt.Fprintf(out, "Organizations: %d\n", len(sess.workspace.Organizations()))

	return nil
}
