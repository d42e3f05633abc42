package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskflow-backend/internal/apperr"
	"taskflow-backend/internal/ids"
)

// bcrypt ignores everything past 72 bytes; refuse instead of truncating.
const maxPasswordBytes = 72

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Service owns the account and session lifecycle.
type Service struct {
	store  Store
	hasher PasswordHasher
	tokens *TokenIssuer
	now    func() time.Time
}

func NewService(store Store, hasher PasswordHasher, tokens *TokenIssuer) *Service {
	if hasher == nil {
		hasher = &BcryptHasher{}
	}
	return &Service{store: store, hasher: hasher, tokens: tokens, now: time.Now}
}

// Register creates an account and signs the caller in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Session, Account, error) {
	email := NormalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return Session{}, Account{}, err
	}
	if in.Password == "" {
		return Session{}, Account{}, apperr.Invalid("password is required")
	}
	if len(in.Password) > maxPasswordBytes {
		return Session{}, Account{}, apperr.Invalid("password must be at most 72 bytes")
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return Session{}, Account{}, apperr.Invalid("full_name is required")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return Session{}, Account{}, fmt.Errorf("hash password: %w", err)
	}
	acc := Account{
		ID:           ids.NewRecordID(),
		Email:        email,
		FullName:     name,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return Session{}, Account{}, ErrEmailTaken
		}
		return Session{}, Account{}, fmt.Errorf("create account: %w", err)
	}

	sess, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return Session{}, Account{}, fmt.Errorf("issue token: %w", err)
	}
	return sess, acc, nil
}

// Login checks credentials. Unknown email and wrong password both return
// ErrBadCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	acc, err := s.store.AccountByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrAccountNotFound) {
		if b, ok := s.hasher.(interface{ Burn(string) }); ok {
			b.Burn(password)
		}
		return Session{}, ErrBadCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("lookup account: %w", err)
	}
	if !s.hasher.Verify(acc.PasswordHash, password) {
		return Session{}, ErrBadCredentials
	}

	sess, err := s.tokens.Issue(acc.ID)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}
	return sess, nil
}

// Authenticate resolves a bearer token to its account. It returns
// ErrInvalidToken, ErrTokenExpired or ErrAccountNotFound.
func (s *Service) Authenticate(ctx context.Context, token string) (Account, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return Account{}, err
	}
	acc, err := s.store.AccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("lookup account: %w", err)
	}
	return acc, nil
}
