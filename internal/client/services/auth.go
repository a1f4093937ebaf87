// Package services contains application services for the MemoBoost client.
// This file defines the authentication service: register, login, restoring
// a saved session and logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/agahlya1812/memoboost/internal/client/client"
	"github.com/agahlya1812/memoboost/internal/client/repositories/session"
)

var ErrNotLoggedIn = errors.New("not logged in")

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Register / Login: authenticate against the server and persist the session.
//   - Restore: reuse the session saved by a previous run, if any.
//   - Logout: forget the session locally.
//   - Ping: check server liveness.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*session.Session, error)
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Restore(ctx context.Context) (*session.Session, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

type authService struct {
	client   client.Client
	sessions session.Repository
}

func NewAuthService(c client.Client, sessions session.Repository) AuthService {
	return &authService{client: c, sessions: sessions}
}

func (a *authService) Register(ctx context.Context, email, password, name string) (*session.Session, error) {
	user, token, err := a.client.Register(ctx, strings.TrimSpace(email), password, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("register error: %w", err)
	}
	return a.start(ctx, &session.Session{UserID: user.ID, Email: user.Email, Name: user.Name, Token: token})
}

func (a *authService) Login(ctx context.Context, email, password string) (*session.Session, error) {
	user, token, err := a.client.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	return a.start(ctx, &session.Session{UserID: user.ID, Email: user.Email, Name: user.Name, Token: token})
}

func (a *authService) start(ctx context.Context, s *session.Session) (*session.Session, error) {
	a.client.SetSession(s.UserID, s.Token)
	if err := a.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return s, nil
}

// Restore loads the saved session into the API client. It returns
// ErrNotLoggedIn when nothing was saved.
func (a *authService) Restore(ctx context.Context) (*session.Session, error) {
	s, err := a.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrNotLoggedIn
	}
	a.client.SetSession(s.UserID, s.Token)
	return s, nil
}

func (a *authService) Logout(ctx context.Context) error {
	a.client.SetSession("", "")
	return a.sessions.Clear(ctx)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Health(ctx)
}
