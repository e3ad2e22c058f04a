// Package credential implements user registration and login.
//
// Register validates input, checks username availability, hashes the
// password and inserts the record. Login looks the user up, verifies the
// password and issues a signed token. Every failure crossing the package
// boundary is an *errors.AppError from the service taxonomy.
package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/userservice/auth/password"
	"github.com/kbukum/userservice/auth/token"
	"github.com/kbukum/userservice/clock"
	apperrors "github.com/kbukum/userservice/errors"
	"github.com/kbukum/userservice/logger"
	"github.com/kbukum/userservice/observability"
	"github.com/kbukum/userservice/user"
)

// TokenIssuer signs a token for an identity. *token.Issuer implements it.
type TokenIssuer interface {
	Issue(id token.Identity, now time.Time) (string, error)
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	Token string `json:"token"`
}

// Service orchestrates the repository, hasher and token issuer. It holds
// no per-request state and is safe for concurrent use.
type Service struct {
	repo    user.Repository
	hasher  password.Hasher
	issuer  TokenIssuer
	clock   clock.Clock
	log     *logger.Logger
	metrics *observability.CredentialMetrics

	// dummyHash is verified against when a login names an unknown user, so
	// both failure paths cost one full verification.
	dummyHash string
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for token issuance.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics records register/login counters on m.
func WithMetrics(m *observability.CredentialMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService builds a Service. It hashes a random password once to obtain
// the dummy hash, so construction costs one hash with the configured cost.
func NewService(repo user.Repository, hasher password.Hasher, issuer TokenIssuer, opts ...Option) (*Service, error) {
	if repo == nil || hasher == nil || issuer == nil {
		return nil, apperrors.Configuration("credential: repository, hasher and issuer are required")
	}
	s := &Service{
		repo:   repo,
		hasher: hasher,
		issuer: issuer,
		clock:  clock.System(),
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithComponent("credential")

	// 54 random bytes encode to 72 characters, the longest min_length accepted.
	dummy, err := password.RandomString(54)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("credential: dummy password: %w", err))
	}
	if s.dummyHash, err = hasher.Hash(dummy); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("credential: dummy hash: %w", err))
	}
	return s, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func requireCredentials(username, pw string) error {
	if blank(username) || blank(pw) {
		return apperrors.InvalidInput("Username and password required.")
	}
	return nil
}

// Register creates a user. The username is stored exactly as given.
func (s *Service) Register(ctx context.Context, username, pw string) (err error) {
	ctx, op := observability.StartOperation(ctx, observability.OperationRegister, s.metrics)
	outcome := observability.OutcomeSuccess
	defer func() { op.End(ctx, outcome, err) }()

	if err = requireCredentials(username, pw); err != nil {
		outcome = observability.OutcomeInvalid
		return err
	}

	_, err = s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		outcome = observability.OutcomeDuplicate
		return apperrors.DuplicateUser()
	case !errors.Is(err, user.ErrNotFound):
		outcome = observability.OutcomeError
		return s.storageError("find user", err)
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		outcome = observability.OutcomeInvalid
		if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
			outcome = observability.OutcomeError
		}
		return err
	}

	rec := &user.Record{Username: username, PasswordHash: hash}
	if _, err = s.repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			outcome = observability.OutcomeDuplicate
			return apperrors.DuplicateUser()
		}
		outcome = observability.OutcomeError
		return s.storageError("insert user", err)
	}

	op.SetUserID(rec.ID)
	s.log.WithContext(ctx).Info("User registered", map[string]interface{}{
		logger.FieldUserID:   rec.ID,
		logger.FieldUsername: username,
	})
	return nil
}

// Login verifies credentials and returns a signed token. Unknown users and
// wrong passwords produce the same AuthenticationFailed error.
func (s *Service) Login(ctx context.Context, username, pw string) (result LoginResult, err error) {
	ctx, op := observability.StartOperation(ctx, observability.OperationLogin, s.metrics)
	outcome := observability.OutcomeSuccess
	defer func() { op.End(ctx, outcome, err) }()

	if err = requireCredentials(username, pw); err != nil {
		outcome = observability.OutcomeInvalid
		return LoginResult{}, err
	}

	rec, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			outcome = observability.OutcomeError
			return LoginResult{}, s.storageError("find user", err)
		}
		_, _ = s.hasher.Verify(pw, s.dummyHash)
		outcome = observability.OutcomeRejected
		return LoginResult{}, s.rejected(ctx, username)
	}

	ok, err := s.hasher.Verify(pw, rec.PasswordHash)
	if err != nil {
		outcome = observability.OutcomeError
		s.log.WithContext(ctx).WithError(err).Error("Stored password hash is unreadable", map[string]interface{}{
			logger.FieldUserID: rec.ID,
		})
		return LoginResult{}, err
	}
	if !ok {
		outcome = observability.OutcomeRejected
		return LoginResult{}, s.rejected(ctx, username)
	}

	signed, err := s.issuer.Issue(token.Identity{ID: rec.ID, Username: rec.Username}, s.clock.Now())
	if err != nil {
		outcome = observability.OutcomeError
		return LoginResult{}, err
	}

	op.SetUserID(rec.ID)
	s.log.WithContext(ctx).Info("User logged in", map[string]interface{}{
		logger.FieldUserID: rec.ID,
	})
	return LoginResult{Token: signed}, nil
}

func (s *Service) rejected(ctx context.Context, username string) error {
	s.log.WithContext(ctx).Warn("Login rejected", map[string]interface{}{
		logger.FieldUsername: username,
	})
	return apperrors.AuthenticationFailed()
}

func (s *Service) storageError(op string, err error) error {
	s.log.WithError(err).Error("User repository failed", map[string]interface{}{
		logger.FieldOperation: op,
	})
	return apperrors.Storage(err)
}
