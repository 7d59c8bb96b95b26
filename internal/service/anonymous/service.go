package anonymous

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"shopcart/internal/domain"
	tokenrepo "shopcart/internal/repository/token"
)

// Service issues server-minted anonymous identities for clients that prefer
// them over locally generated keys. The token is a plain bearer credential;
// it never authenticates checkout.
type Service struct {
	tokens tokenrepo.Repository
	ttl    time.Duration
}

func New(tokens tokenrepo.Repository) *Service {
	return &Service{
		tokens: tokens,
		ttl:    30 * 24 * time.Hour,
	}
}

// Issue mints a fresh anonymous owner key and a bearer token bound to it.
func (s *Service) Issue(ctx context.Context) (anonymousID, token string, err error) {
	anonymousID = domain.NewAnonymousKey()
	expiresAt := time.Now().Add(s.ttl)
	for i := 0; i < 5; i++ {
		token, err = randomToken()
		if err != nil {
			return "", "", err
		}
		err = s.tokens.Create(ctx, tokenrepo.Token{
			Token:         token,
			OwnerKey:      anonymousID,
			Authenticated: false,
			ExpiresAt:     expiresAt,
		})
		if err == nil {
			return anonymousID, token, nil
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		return "", "", err
	}
	return "", "", errors.New("token collision")
}

func (s *Service) TTLSeconds() int {
	return int(s.ttl.Seconds())
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
