package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/cryptox"
	"github.com/agahlya1812/memoboost/internal/logging"
	"github.com/agahlya1812/memoboost/internal/server/auth"
	"github.com/agahlya1812/memoboost/internal/server/config"
	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/agahlya1812/memoboost/internal/server/repositories/repomanager"
)

const MinPasswordLength = 6

const (
	MsgCredentialsRequired = "email and password (at least 6 characters) are required"
	MsgEmailTaken          = "an account already exists with this email"
	MsgInvalidCredentials  = "invalid credentials"
	MsgSessionRequired     = "authentication required"
	MsgSessionInvalid      = "session is invalid or expired"
)

type UserService struct {
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	legacySalt                  string
	log                         logging.Logger
}

func NewUserService(m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *UserService {
	return &UserService{
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		legacySalt:                  cfg.LegacySalt,
		log:                         log.With("module", "users"),
	}
}

// Register creates an account and returns it together with an access token.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	email = models.NormalizeEmail(email)
	if email == "" || len(password) < MinPasswordLength {
		return nil, "", invalid(MsgCredentialsRequired)
	}

	user := &models.User{
		ID:           newID(),
		Email:        email,
		PasswordHash: cryptox.HashPassword(password),
		Name:         strings.TrimSpace(name),
		CreatedAt:    now(),
	}

	user, err := s.repomanager.Users().Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, "", common.NewError(common.ErrorConflict, MsgEmailTaken)
		}
		return nil, "", storageError(fmt.Errorf("error creating user: %w", err))
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// Login checks the credentials and returns the user with a fresh access
// token. Accounts imported with a legacy hash are upgraded to argon2id on
// their first successful login.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", invalid(MsgCredentialsRequired)
	}

	repo := s.repomanager.Users()
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.NewError(common.ErrorUnauthorized, MsgInvalidCredentials)
		}
		return nil, "", storageError(err)
	}

	ok, legacy := s.checkPassword(user.PasswordHash, password)
	if !ok {
		return nil, "", common.NewError(common.ErrorUnauthorized, MsgInvalidCredentials)
	}

	if legacy {
		user.PasswordHash = cryptox.HashPassword(password)
		if err := repo.Upsert(ctx, user); err != nil {
			s.log.Warn(ctx, "password hash upgrade failed", "user_id", user.ID, "error", err)
		}
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *UserService) checkPassword(hash, password string) (ok bool, legacy bool) {
	if cryptox.IsArgon2Hash(hash) {
		valid, err := cryptox.VerifyPassword(hash, password)
		return valid && err == nil, false
	}
	if s.legacySalt == "" {
		return false, false
	}
	return cryptox.VerifyLegacy(hash, password, s.legacySalt), true
}

// Resolve maps a caller supplied identity to a known user. The identity is
// either a signed access token or a bare user id.
func (s *UserService) Resolve(ctx context.Context, identity string) (*models.User, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, common.NewError(common.ErrorUnauthenticated, MsgSessionRequired)
	}

	userID := identity
	if auth.LooksLikeToken(identity) {
		id, err := auth.GetUserIDFromToken(identity, s.jwtSecret)
		if err != nil {
			return nil, common.NewError(common.ErrorInvalidSession, MsgSessionInvalid)
		}
		userID = id
	}

	user, err := s.repomanager.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.ErrorInvalidSession, MsgSessionInvalid)
		}
		return nil, storageError(err)
	}
	return user, nil
}

func (s *UserService) generateAccessToken(userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return token, nil
}
