package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/chzyer/readline"
	"golang.org/x/term"
)

var errCancelled = errors.New("cancelled")

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// parseArgs splits a command line on spaces. Double quotes group words.
func parseArgs(input string) []string {
	var args []string
	var current strings.Builder
	inQuotes, quoted := false, false

	flush := func() {
		if current.Len() > 0 || quoted {
			args = append(args, current.String())
		}
		current.Reset()
		quoted = false
	}

	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			quoted = true
		case (r == ' ' || r == '\t') && !inQuotes:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return args
}

// ask reads one line with prompt. Ctrl-C and EOF cancel the command.
func (a *App) ask(prompt string) (string, error) {
	a.rl.SetPrompt(prompt + ": ")
	line, err := a.rl.Readline()
	if err != nil {
		if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
			return "", errCancelled
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// askDefault is ask with a value kept when the answer is blank.
func (a *App) askDefault(prompt, current string) (string, error) {
	v, err := a.ask(fmt.Sprintf("%s [%s]", prompt, current))
	if err != nil {
		return "", err
	}
	if v == "" {
		return current, nil
	}
	return v, nil
}

// askRequired repeats the prompt until a non-blank answer is given.
func (a *App) askRequired(prompt string) (string, error) {
	for {
		v, err := a.ask(prompt)
		if err != nil || v != "" {
			return v, err
		}
		a.printf("%s must not be empty\n", prompt)
	}
}

func (a *App) confirm(prompt string) (bool, error) {
	v, err := a.ask(prompt + " [y/N]")
	if err != nil {
		return false, err
	}
	v = strings.ToLower(v)
	return v == "y" || v == "yes", nil
}

// getPassword reads a password without echo.
func (a *App) getPassword(prompt string) (string, error) {
	fmt.Fprint(a.out, prompt+": ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}
