package auth

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// KeyAuthenticator accepts keys whose bcrypt hash matches a configured hash.
type KeyAuthenticator struct {
	hashes [][]byte
	cache  *KeyCache
	logger *zap.Logger
}

// NewKeyAuthenticator creates an authenticator for the given bcrypt hashes.
func NewKeyAuthenticator(hashes []string, cacheTTL time.Duration, logger *zap.Logger) *KeyAuthenticator {
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Second
	}
	hs := make([][]byte, 0, len(hashes))
	for _, h := range hashes {
		if h != "" {
			hs = append(hs, []byte(h))
		}
	}
	return &KeyAuthenticator{
		hashes: hs,
		cache:  NewKeyCache(cacheTTL),
		logger: logger,
	}
}

func (a *KeyAuthenticator) Authenticate(ctx context.Context) (*Principal, error) {
	token, err := ExtractBearerToken(ctx)
	if err != nil {
		return nil, err
	}

	if p, ok := a.cache.Get(token); ok {
		return p, nil
	}

	for _, h := range a.hashes {
		if bcrypt.CompareHashAndPassword(h, []byte(token)) == nil {
			p := &Principal{KeyID: token[:8]}
			a.cache.Set(token, p)
			return p, nil
		}
	}

	a.logger.Warn("api key rejected", zap.String("key_id", token[:8]))
	return nil, ErrUnauthenticated
}

// StaticAuthenticator is a development-only authenticator that accepts any fev_ key.
type StaticAuthenticator struct{}

func NewStaticAuthenticator() *StaticAuthenticator {
	return &StaticAuthenticator{}
}

func (a *StaticAuthenticator) Authenticate(ctx context.Context) (*Principal, error) {
	token, err := ExtractBearerToken(ctx)
	if err != nil {
		return nil, err
	}
	return &Principal{KeyID: token[:8]}, nil
}
