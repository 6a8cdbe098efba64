package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHMACVerifier_RoundTrip(t *testing.T) {
	token, err := GenerateToken("s3cret", Identity{Subject: "auth0|42", Email: "a@b.c", Name: "Ann"}, time.Hour)
	require.NoError(t, err)

	id, err := NewHMACVerifier("s3cret", "", "").Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, &Identity{Subject: "auth0|42", Email: "a@b.c", Name: "Ann"}, id)
}

func TestHMACVerifier_Rejects(t *testing.T) {
	valid, err := GenerateToken("s3cret", Identity{Subject: "u"}, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken("s3cret", Identity{Subject: "u"}, -time.Minute)
	require.NoError(t, err)
	noSubject, err := GenerateToken("s3cret", Identity{}, time.Hour)
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		verifier *HMACVerifier
		token    string
	}{
		{"wrong secret", NewHMACVerifier("other", "", ""), valid},
		{"expired", NewHMACVerifier("s3cret", "", ""), expired},
		{"missing subject", NewHMACVerifier("s3cret", "", ""), noSubject},
		{"missing exp", NewHMACVerifier("s3cret", "", ""), noExpiry},
		{"issuer mismatch", NewHMACVerifier("s3cret", "https://issuer", ""), valid},
		{"garbage", NewHMACVerifier("s3cret", "", ""), "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.verifier.Verify(context.Background(), tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGoogleVerifier_MapsClaims(t *testing.T) {
	g := &GoogleVerifier{
		audience: "client-id",
		validate: func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			assert.Equal(t, "client-id", audience)
			if token != "google-token" {
				return nil, errors.New("bad token")
			}
			return &idtoken.Payload{
				Subject: "1234",
				Claims:  map[string]interface{}{"email": "g@example.com", "name": "Gee"},
			}, nil
		},
	}

	id, err := g.Verify(context.Background(), "google-token")
	require.NoError(t, err)
	assert.Equal(t, &Identity{Subject: "1234", Email: "g@example.com", Name: "Gee"}, id)

	_, err = g.Verify(context.Background(), "other")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestChainVerifier(t *testing.T) {
	hmacToken, err := GenerateToken("s3cret", Identity{Subject: "hmac-user"}, time.Hour)
	require.NoError(t, err)

	google := &GoogleVerifier{
		validate: func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
			if token == "google-token" {
				return &idtoken.Payload{Subject: "google-user"}, nil
			}
			return nil, errors.New("bad token")
		},
	}
	chain := ChainVerifier{NewHMACVerifier("s3cret", "", ""), google}

	id, err := chain.Verify(context.Background(), hmacToken)
	require.NoError(t, err)
	assert.Equal(t, "hmac-user", id.Subject)

	id, err = chain.Verify(context.Background(), "google-token")
	require.NoError(t, err)
	assert.Equal(t, "google-user", id.Subject)

	_, err = chain.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = chain.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
