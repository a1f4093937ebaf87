package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/agahlya1812/memoboost/internal/client/client"
	"github.com/agahlya1812/memoboost/internal/client/config"
	"github.com/agahlya1812/memoboost/internal/client/repositories"
	"github.com/agahlya1812/memoboost/internal/client/services"
	"github.com/chzyer/readline"
)

// lineReader is the part of *readline.Instance the CLI uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Refresh()
	Close() error
}

type App struct {
	config *config.Config
	repos  *repositories.Repositories
	ws     *services.Workspace
	rl     lineReader
	out    io.Writer
	now    func() time.Time
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	repos, err := repositories.InitDatabase(ctx, c.CachePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	api := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	ws := services.NewWorkspace(api, services.NewAuthService(api, repos.Session), repos.States, c.RevisionDuration)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptBase,
		HistoryFile:     historyFile(c.CachePath),
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("error initializing terminal: %w", err)
	}

	return newApp(c, repos, ws, rl, os.Stdout), nil
}

func newApp(c *config.Config, repos *repositories.Repositories, ws *services.Workspace, rl lineReader, out io.Writer) *App {
	return &App{config: c, repos: repos, ws: ws, rl: rl, out: out, now: time.Now}
}

// historyFile keeps the readline history next to the cache.
func historyFile(cachePath string) string {
	if cachePath == "" || cachePath == ":memory:" {
		return ""
	}
	return strings.TrimSuffix(cachePath, filepath.Ext(cachePath)) + ".history"
}

// Run restores the saved session, if any, and serves commands until exit,
// EOF or ctx cancellation.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	a.println("Welcome to MemoBoost CLI (type 'help' for commands)")

	switch err := a.ws.Restore(ctx); {
	case err == nil:
		a.printf("Logged in as %s\n", a.ws.User().Email)
	case errors.Is(err, services.ErrNotLoggedIn):
		a.println("Log in or register to start.")
	default:
		a.report(err)
	}

	return a.loop(ctx)
}

func (a *App) close() {
	if err := a.rl.Close(); err != nil {
		a.printf("Error closing terminal: %v\n", err)
	}
	if err := a.repos.Close(); err != nil {
		a.printf("Error closing cache: %v\n", err)
	}
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// report prints a command failure in user terms.
func (a *App) report(err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, errCancelled):
		a.println("Cancelled.")
	case errors.Is(err, services.ErrOffline):
		a.println("Server unreachable, showing cached data.")
	case errors.Is(err, client.ErrSessionExpired):
		a.println("Your session has expired. Please log in again.")
	case errors.As(err, &apiErr):
		a.println("Error:", apiErr.Error())
	case errors.Is(err, client.ErrUnavailable):
		a.println("Server unreachable, try again later.")
	default:
		a.println("Error:", err)
	}
}
