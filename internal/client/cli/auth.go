package cli

import (
	"context"
	"errors"
)

func (a *App) credentials(args []string) (string, string, error) {
	var email string
	var err error
	if len(args) > 0 {
		email = args[0]
	} else if email, err = a.askRequired("Email"); err != nil {
		return "", "", err
	}

	password, err := a.getPassword("Password")
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

func (a *App) register(ctx context.Context, args []string) error {
	email, password, err := a.credentials(args)
	if err != nil {
		return err
	}
	name, err := a.ask("Name (optional)")
	if err != nil {
		return err
	}

	if err := a.ws.Register(ctx, email, password, name); err != nil {
		return a.afterLogin(err)
	}
	a.printf("Welcome, %s!\n", a.ws.User().Email)
	return nil
}

func (a *App) login(ctx context.Context, args []string) error {
	email, password, err := a.credentials(args)
	if err != nil {
		return err
	}

	if err := a.ws.Login(ctx, email, password); err != nil {
		return a.afterLogin(err)
	}
	a.printf("Logged in as %s\n", a.ws.User().Email)
	return nil
}

// afterLogin reports a failed initial sync without failing the login.
func (a *App) afterLogin(err error) error {
	if a.ws.LoggedIn() {
		a.report(err)
		a.printf("Logged in as %s\n", a.ws.User().Email)
		return nil
	}
	return err
}

func (a *App) logout(ctx context.Context) error {
	if err := a.ws.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

// ping reports server reachability while logged out.
func (a *App) ping(ctx context.Context) error {
	if err := a.ws.Ping(ctx); err != nil {
		return errors.Join(errors.New("server unreachable"), err)
	}
	a.println("Server is reachable.")
	return nil
}
