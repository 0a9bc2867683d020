// Package services contains server-side business logic. This file implements
// UserService, which handles registration and login and issues bearer tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/server/auth"
	"github.com/dmitrijs2005/patrimonio/internal/server/metrics"
	"github.com/dmitrijs2005/patrimonio/internal/server/models"
	"github.com/dmitrijs2005/patrimonio/internal/server/repositories/repomanager"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes
	maxPasswordBytes = 72
)

// UserService provides authentication-related operations:
// - Register: create users and hand out their first token
// - Login: verify credentials and mint a token
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	cost        int

	dummyOnce sync.Once
	dummyHash []byte
}

// NewUserService constructs a UserService using repositories and the token service.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		cost:        bcrypt.DefaultCost,
	}
}

// Register creates a user and returns a token for it. A taken username
// yields common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, password string) (string, *models.User, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		metrics.LoginsTotal.WithLabelValues("register", "invalid").Inc()
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", nil, fmt.Errorf("%w: hash password: %v", common.ErrorInternal, err)
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			metrics.LoginsTotal.WithLabelValues("register", "duplicate").Inc()
			return "", nil, common.ErrAlreadyExists
		}
		return "", nil, fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}

	metrics.LoginsTotal.WithLabelValues("register", "ok").Inc()
	return token, u, nil
}

// Login checks the password and returns a fresh token. Unknown users and
// wrong passwords both yield common.ErrorUnauthorized and take about the
// same time.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrPrincipalNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.getDummyHash(), []byte(password))
			metrics.LoginsTotal.WithLabelValues("login", "unauthorized").Inc()
			return "", common.ErrorUnauthorized
		}
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		metrics.LoginsTotal.WithLabelValues("login", "unauthorized").Inc()
		return "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", fmt.Errorf("%w: issue token: %v", common.ErrorInternal, err)
	}

	metrics.LoginsTotal.WithLabelValues("login", "ok").Inc()
	return token, nil
}

// --- helpers below ---

// getDummyHash returns a hash of a random secret, compared against when the
// user does not exist.
func (s *UserService) getDummyHash() []byte {
	s.dummyOnce.Do(func() {
		secret, err := common.MakeRandHexString(16)
		if err != nil {
			secret = "patrimonio"
		}
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	})
	return s.dummyHash
}

func validateCredentials(username, password string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d to %d characters", common.ErrValidation, minUsernameLen, maxUsernameLen)
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", common.ErrValidation, maxPasswordBytes)
	}
	return nil
}
