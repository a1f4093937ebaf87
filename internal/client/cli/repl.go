package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/agahlya1812/memoboost/internal/client/models"
	"github.com/agahlya1812/memoboost/internal/client/services"
	"github.com/chzyer/readline"
)

const promptBase = "memoboost> "

var errExit = errors.New("exit requested")

const helpLoggedOut = `Available commands:
  register [email]        create an account
  login [email]           log in
  sync                    check the server connection
  help                    show this help
  exit | quit             leave the program`

const helpLoggedIn = `Available commands:
  ls                      list folders and cards in the current folder
  tree                    show the whole folder tree
  cd <folder>|..|/        open a folder
  mkdir <name> [color]    create a folder in the current one
  editdir <folder>        rename, recolor or move a folder
  rmdir <folder>          delete a folder with everything inside
  cards                   list cards in the current folder
  addcard                 add a card to the current folder
  editcard <n|id>         edit a card
  rmcard <n|id>           delete a card
  mark <n|id> <status>    set status: unknown, review or known
  revise                  start a timed revision of the current folder
  export <json|csv> [file]
  import <file> [json|csv]
  image <n|id> [file]     upload a card image, or print its link
  getimage <n|id> <file>  download a card image
  sync                    refetch everything from the server
  logout                  log out
  exit | quit             leave the program`

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("register"),
	readline.PcItem("login"),
	readline.PcItem("logout"),
	readline.PcItem("ls"),
	readline.PcItem("tree"),
	readline.PcItem("cd"),
	readline.PcItem("mkdir"),
	readline.PcItem("editdir"),
	readline.PcItem("rmdir"),
	readline.PcItem("cards"),
	readline.PcItem("addcard"),
	readline.PcItem("editcard"),
	readline.PcItem("rmcard"),
	readline.PcItem("mark"),
	readline.PcItem("revise"),
	readline.PcItem("export", readline.PcItem("json"), readline.PcItem("csv")),
	readline.PcItem("import"),
	readline.PcItem("image"),
	readline.PcItem("getimage"),
	readline.PcItem("sync"),
	readline.PcItem("exit"),
)

func (a *App) prompt() string {
	u := a.ws.User()
	if u == nil {
		return promptBase
	}
	path := "/"
	if f := a.ws.ActiveFolder(); f != nil {
		path += models.Path(a.ws.Snapshot().Categories, f.ID)
	}
	return fmt.Sprintf("memoboost (%s:%s)> ", u.Email, path)
}

func (a *App) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		a.rl.SetPrompt(a.prompt())
		line, err := a.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				a.println("Use 'exit' or 'quit' to exit the program.")
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		args := parseArgs(line)
		if len(args) == 0 {
			continue
		}

		if err := a.execute(ctx, args); err != nil {
			if errors.Is(err, errExit) {
				a.println("Bye!")
				return nil
			}
			a.report(err)
		}
	}
}

// execute dispatches one command line.
func (a *App) execute(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		if a.ws.LoggedIn() {
			a.println(helpLoggedIn)
		} else {
			a.println(helpLoggedOut)
		}
		return nil
	case "exit", "quit":
		return errExit
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	}

	if !a.ws.LoggedIn() {
		if cmd == "sync" {
			return a.ping(ctx)
		}
		if _, ok := loggedInCommands[cmd]; ok {
			return services.ErrNotLoggedIn
		}
		return fmt.Errorf("unknown command: %s", cmd)
	}

	switch cmd {
	case "logout":
		return a.logout(ctx)
	case "ls":
		return a.list()
	case "tree":
		return a.tree()
	case "cd":
		return a.cd(rest)
	case "mkdir":
		return a.mkdir(ctx, rest)
	case "editdir":
		return a.editdir(ctx, rest)
	case "rmdir":
		return a.rmdir(ctx, rest)
	case "cards":
		return a.cards()
	case "addcard":
		return a.addcard(ctx)
	case "editcard":
		return a.editcard(ctx, rest)
	case "rmcard":
		return a.rmcard(ctx, rest)
	case "mark":
		return a.mark(ctx, rest)
	case "revise":
		return a.revise(ctx)
	case "export":
		return a.export(ctx, rest)
	case "import":
		return a.importFile(ctx, rest)
	case "image":
		return a.image(ctx, rest)
	case "getimage":
		return a.getimage(ctx, rest)
	case "sync":
		return a.sync(ctx)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

var loggedInCommands = map[string]struct{}{
	"logout": {}, "ls": {}, "tree": {}, "cd": {}, "mkdir": {}, "editdir": {}, "rmdir": {},
	"cards": {}, "addcard": {}, "editcard": {}, "rmcard": {}, "mark": {}, "revise": {},
	"export": {}, "import": {}, "image": {}, "getimage": {},
}

func usage(text string) error {
	return fmt.Errorf("usage: %s", text)
}
