// Package cli implements the interactive MemoBoost terminal client.
//
// The REPL reads commands with chzyer/readline (history, completion and
// Ctrl-C handling) and drives a services.Workspace: browsing the folder
// tree, editing cards and running timed revision sessions. Passwords are
// read without echo through golang.org/x/term.
//
// Typing "help" lists the commands available in the current state.
package cli
