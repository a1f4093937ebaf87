package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agahlya1812/memoboost/internal/client/models"
	"github.com/agahlya1812/memoboost/internal/client/revision"
	"github.com/chzyer/readline"
)

const reviseHelp = "(r)eveal, (k)nown, re(v)iew, (q)uit"

func formatRemaining(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func (a *App) revisionPrompt(s *revision.Session) string {
	view, ok := s.Current()
	if !ok {
		return "revise> "
	}
	return fmt.Sprintf("revise %s [%d/%d]> ", formatRemaining(s.Remaining(a.now())), view.Index+1, view.Total)
}

// startCountdown refreshes the prompt every second until stop is called.
func (a *App) startCountdown(s *revision.Session) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				a.rl.SetPrompt(a.revisionPrompt(s))
				a.rl.Refresh()
			}
		}
	}()
	return func() { close(done) }
}

func (a *App) revise(ctx context.Context) error {
	s, err := a.ws.StartRevision()
	if err != nil {
		return err
	}
	a.printf("Revising %d cards for %s. Commands: %s\n", s.Summary().Total, formatRemaining(s.Remaining(a.now())), reviseHelp)

	stop := a.startCountdown(s)
	defer stop()

	shown := -1
	for {
		if s.Completed() {
			a.println("All cards done!")
			return a.finishRevision(s)
		}
		if s.Expired(a.now()) {
			a.println("Time is up!")
			return a.finishRevision(s)
		}
		view, ok := s.Current()
		if !ok {
			a.println("Revision closed.")
			return nil
		}
		if view.Index != shown {
			a.printf("\nQ: %s\n", view.Card.Question)
			shown = view.Index
		}

		a.rl.SetPrompt(a.revisionPrompt(s))
		line, err := a.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return a.finishRevision(s)
			}
			return err
		}
		if s.Expired(a.now()) {
			a.println("Time is up!")
			return a.finishRevision(s)
		}

		cmd := strings.ToLower(strings.TrimSpace(line))
		switch cmd {
		case "r", "reveal":
			if err := a.ws.Reveal(); err != nil {
				a.report(err)
				continue
			}
			a.printf("A: %s\n", view.Card.Answer)
		case "k", "known", "v", "review":
			if !view.Revealed {
				a.println("Reveal the answer first (r).")
				continue
			}
			status := models.StatusKnown
			if cmd == "v" || cmd == "review" {
				status = models.StatusReview
			}
			a.grade(ctx, status)
		case "q", "quit":
			return a.finishRevision(s)
		case "":
		default:
			a.println("Commands:", reviseHelp)
		}
	}
}

func (a *App) grade(ctx context.Context, status models.MasteryStatus) {
	if err := a.ws.Evaluate(ctx, status); err != nil {
		a.report(err)
	}
}

func (a *App) finishRevision(s *revision.Session) error {
	sum := s.Summary()
	a.ws.CloseRevision()
	a.printf("Answered %d of %d. Known: %d, review: %d, unknown: %d\n",
		sum.Answered, sum.Total, sum.Known, sum.Review, sum.Unknown)
	return nil
}
