package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/metadata"
)

func ctxWithAuth(value string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", value))
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		want    string
		wantErr bool
	}{
		{"bearer", ctxWithAuth("Bearer fev_abc12345"), "fev_abc12345", false},
		{"lowercase bearer", ctxWithAuth("bearer fev_abc12345"), "fev_abc12345", false},
		{"raw key", ctxWithAuth("fev_abc12345"), "fev_abc12345", false},
		{"wrong prefix", ctxWithAuth("Bearer tsk_abc12345"), "", true},
		{"too short", ctxWithAuth("Bearer fev_"), "", true},
		{"no metadata", context.Background(), "", true},
		{"no header", metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-other", "1")), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.ctx)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthenticated) {
					t.Fatalf("expected ErrUnauthenticated, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestKeyAuthenticator(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("fev_goodkey123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	a := NewKeyAuthenticator([]string{"", string(hash)}, time.Minute, zap.NewNop())

	p, err := a.Authenticate(ctxWithAuth("Bearer fev_goodkey123"))
	if err != nil {
		t.Fatal(err)
	}
	if p.KeyID != "fev_good" {
		t.Fatalf("unexpected key id %s", p.KeyID)
	}

	// Second call is served from the cache.
	if _, err := a.Authenticate(ctxWithAuth("Bearer fev_goodkey123")); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Authenticate(ctxWithAuth("Bearer fev_badkey1234")); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestKeyCache_Expiry(t *testing.T) {
	c := NewKeyCache(time.Millisecond)
	c.Set("fev_key12345", &Principal{KeyID: "fev_key1"})
	if _, ok := c.Get("fev_key12345"); !ok {
		t.Fatal("expected fresh hit")
	}
	time.Sleep(5 * time.Millisecond)
	if _, ok := c.Get("fev_key12345"); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestStaticAuthenticator(t *testing.T) {
	a := NewStaticAuthenticator()
	if _, err := a.Authenticate(ctxWithAuth("Bearer fev_anything1")); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Authenticate(context.Background()); err == nil {
		t.Fatal("expected error without metadata")
	}
}
