package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"
)

// KeyPrefix is the required prefix of every flight-eval API key.
const KeyPrefix = "fev_"

// Authenticator validates incoming requests and returns the caller.
type Authenticator interface {
	Authenticate(ctx context.Context) (*Principal, error)
}

// Principal identifies an authenticated caller.
type Principal struct {
	KeyID string // first 8 chars of the key, safe to log
}

// ErrUnauthenticated is returned when no valid credentials are found.
var ErrUnauthenticated = errors.New("unauthenticated")

// ExtractBearerToken extracts a fev_ API key from gRPC metadata.
func ExtractBearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return "", ErrUnauthenticated
	}
	token := values[0]
	token = strings.TrimPrefix(token, "Bearer ")
	token = strings.TrimPrefix(token, "bearer ")
	if !strings.HasPrefix(token, KeyPrefix) || len(token) < 8 {
		return "", ErrUnauthenticated
	}
	return token, nil
}
