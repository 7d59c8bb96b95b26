package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopcart/internal/domain"
	accountrepo "shopcart/internal/repository/account"
	tokenrepo "shopcart/internal/repository/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service handles account signup/login flows.
type Service struct {
	repo        accountrepo.Repository
	tokens      *tokenManager
	accessTTL   time.Duration
	passwordMin int
}

// New creates a Service with sane defaults.
func New(repo accountrepo.Repository, tokens tokenrepo.Repository) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		accessTTL:   48 * time.Hour,
		passwordMin: 8,
	}
}

// SignupInput captures fields expected by the signup endpoint.
type SignupInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Signup registers a new account. The account id doubles as the cart owner
// key once the user logs in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*domain.Account, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("email required")
	}
	password := strings.TrimSpace(in.Password)
	if len(password) < s.passwordMin {
		return nil, fmt.Errorf("password must be at least %d characters", s.passwordMin)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acct := domain.Account{
		ID:           newAccountID(),
		Email:        email,
		PasswordHash: string(hashed),
		Name:         strings.TrimSpace(in.Name),
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// Login verifies credentials and issues an access token bound to the account
// owner key.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Account, string, error) {
	acct, err := s.repo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	tok, err := s.tokens.Issue(ctx, acct.ID, true, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return acct, tok, nil
}

func (s *Service) AccessTTLSeconds() int {
	return int(s.accessTTL.Seconds())
}

// newAccountID mints account ids in the same opaque hex format as the rest
// of the owner key space.
func newAccountID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
