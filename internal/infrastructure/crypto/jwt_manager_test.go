package crypto

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
)

var issuedAt = time.Unix(1_700_000_000, 0)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, clock *fakeClock) *JWTCodec {
	t.Helper()
	key, err := NewSigningKey(secretOfLen(64))
	require.NoError(t, err)
	return NewJWTCodec(key, time.Hour, logger.NewNoopLogger(), WithClock(clock.Now))
}

func mintToken(t *testing.T, codec *JWTCodec, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(codec.key.bytes())
	require.NoError(t, err)
	return token
}

func segment(v string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(v))
}

func TestJWTCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: issuedAt})

	tests := []struct {
		name    string
		subject string
		roles   []string
	}{
		{"single role", "alice", []string{"ROLE_USER"}},
		{"two roles", "admin", []string{"ROLE_USER", "ROLE_ADMIN"}},
		{"no roles", "bob", []string{}},
		{"nil roles", "carol", nil},
		{"unicode subject", "ünïcødé", []string{"ROLE_USER"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Encode(tt.subject, tt.roles, 30*time.Minute)
			require.NoError(t, err)

			claims, err := codec.Decode(token)
			require.NoError(t, err)
			assert.Equal(t, issuedAt.Add(30*time.Minute), claims.ExpiresAt)

			principal := service.ResolvePrincipal(claims)
			assert.Equal(t, tt.subject, principal.Subject)
			if len(tt.roles) == 0 {
				assert.Empty(t, principal.Roles)
			} else {
				assert.Equal(t, tt.roles, principal.Roles)
			}
		})
	}
}

func TestJWTCodec_WireFormat(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: issuedAt})

	token, err := codec.Encode("alice", []string{"ROLE_USER", "ROLE_ADMIN"}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	var header map[string]interface{}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &header))
	assert.Equal(t, map[string]interface{}{"alg": "HS512", "typ": "JWT"}, header)

	var payload map[string]interface{}
	raw, err = base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "alice", payload["sub"])
	assert.Equal(t, "ROLE_USER,ROLE_ADMIN", payload["auth"])
	assert.Equal(t, float64(issuedAt.Add(time.Hour).Unix()), payload["exp"])
	assert.Len(t, payload, 3)

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	assert.Len(t, sig, 64)
}

func TestJWTCodec_EmptyRolesEncodeAsEmptyClaim(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: issuedAt})

	token, err := codec.Encode("alice", nil, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "", claims.Authorities)
	assert.Len(t, service.ResolvePrincipal(claims).Roles, 0)
}

func TestJWTCodec_ExpiryBoundary(t *testing.T) {
	clock := &fakeClock{now: issuedAt}
	codec := newTestCodec(t, clock)
	validity := 10 * time.Second

	token, err := codec.Encode("alice", []string{"ROLE_USER"}, validity)
	require.NoError(t, err)

	tests := []struct {
		name    string
		at      time.Time
		wantErr error
	}{
		{"at issue time", issuedAt, nil},
		{"just before expiry", issuedAt.Add(validity - time.Millisecond), nil},
		{"exactly at expiry", issuedAt.Add(validity), errors.ErrTokenExpired},
		{"after expiry", issuedAt.Add(validity + time.Hour), errors.ErrTokenExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.now = tt.at
			_, err := codec.Decode(token)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTCodec_ExpiryBoundarySubSecondIssue(t *testing.T) {
	clock := &fakeClock{now: issuedAt.Add(600 * time.Millisecond)}
	codec := newTestCodec(t, clock)

	issued, err := codec.Issue("alice", []string{"ROLE_USER"})
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(time.Hour), issued.ExpiresAt)

	clock.now = issuedAt.Add(time.Hour - time.Millisecond)
	_, err = codec.Decode(issued.Token)
	assert.NoError(t, err)

	clock.now = issuedAt.Add(time.Hour)
	_, err = codec.Decode(issued.Token)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestJWTCodec_TamperedSignatureEveryByte(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: issuedAt})

	token, err := codec.Encode("alice", []string{"ROLE_USER"}, time.Hour)
	require.NoError(t, err)
	sigStart := strings.LastIndexByte(token, '.') + 1

	for i := sigStart; i < len(token); i++ {
		tampered := []byte(token)
		tampered[i] ^= 0x01

		_, err := codec.Decode(string(tampered))
		require.Error(t, err, "byte %d", i)
		assert.ErrorIs(t, err, errors.ErrBadSignature, "byte %d", i)
	}
}

func TestJWTCodec_DecodeFailures(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: issuedAt})
	exp := issuedAt.Add(time.Hour).Unix()

	otherKey, err := NewSigningKey(base64.StdEncoding.EncodeToString([]byte(strings.Repeat("z", 64))))
	require.NoError(t, err)
	otherCodec := NewJWTCodec(otherKey, time.Hour, logger.NewNoopLogger(), WithClock((&fakeClock{now: issuedAt}).Now))
	foreign, err := otherCodec.Encode("alice", []string{"ROLE_USER"}, time.Hour)
	require.NoError(t, err)

	valid, err := codec.Encode("alice", []string{"ROLE_USER"}, time.Hour)
	require.NoError(t, err)
	parts := strings.Split(valid, ".")
	forgedPayload := parts[0] + "." + segment(`{"auth":"ROLE_ADMIN","sub":"alice","exp":`+jsonInt(exp)+`}`) + "." + parts[2]

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "alice", "auth": "ROLE_USER", "exp": exp,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	validPayload := segment(`{"sub":"alice","auth":"ROLE_USER","exp":` + jsonInt(exp) + `}`)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{"signed with another key", foreign, errors.ErrBadSignature},
		{"payload swapped", forgedPayload, errors.ErrBadSignature},
		{"HS256 with the same key", mintToken(t, codec, jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "alice", "auth": "ROLE_USER", "exp": exp,
		}), errors.ErrBadSignature},
		{"empty signature", parts[0] + "." + parts[1] + ".", errors.ErrBadSignature},
		{"alg none", unsigned, errors.ErrUnsupportedToken},
		{"unknown alg", segment(`{"alg":"XS999","typ":"JWT"}`) + "." + validPayload + ".c2ln", errors.ErrUnsupportedToken},
		{"missing alg", segment(`{"typ":"JWT"}`) + "." + validPayload + ".c2ln", errors.ErrUnsupportedToken},
		{"empty string", "", errors.ErrMalformedToken},
		{"no separators", "abc123", errors.ErrMalformedToken},
		{"one separator", "abc.def", errors.ErrMalformedToken},
		{"header not base64", "!!!." + validPayload + "." + parts[2], errors.ErrMalformedToken},
		{"header not json", segment("hello") + "." + validPayload + "." + parts[2], errors.ErrMalformedToken},
		{"payload not json", parts[0] + "." + segment("hello") + "." + parts[2], errors.ErrMalformedToken},
		{"missing auth claim", mintToken(t, codec, jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "alice", "exp": exp,
		}), errors.ErrMalformedToken},
		{"missing sub claim", mintToken(t, codec, jwt.SigningMethodHS512, jwt.MapClaims{
			"auth": "ROLE_USER", "exp": exp,
		}), errors.ErrMalformedToken},
		{"missing exp claim", mintToken(t, codec, jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "alice", "auth": "ROLE_USER",
		}), errors.ErrMalformedToken},
		{"auth claim not a string", mintToken(t, codec, jwt.SigningMethodHS512, jwt.MapClaims{
			"sub": "alice", "auth": []string{"ROLE_USER"}, "exp": exp,
		}), errors.ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Decode(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, errors.IsTokenError(err))
		})
	}
}

func TestJWTCodec_Validate(t *testing.T) {
	clock := &fakeClock{now: issuedAt}
	codec := newTestCodec(t, clock)
	ctx := context.Background()

	token, err := codec.Encode("alice", []string{"ROLE_USER"}, 3600*time.Second)
	require.NoError(t, err)

	assert.True(t, codec.Validate(ctx, token))
	assert.False(t, codec.Validate(ctx, "garbage"))

	clock.now = issuedAt.Add(2 * time.Hour)
	assert.False(t, codec.Validate(ctx, token))
}

func TestJWTCodec_Issue(t *testing.T) {
	codec := newTestCodec(t, &fakeClock{now: issuedAt})

	issued, err := codec.Issue("alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer", issued.TokenType)
	assert.Equal(t, issuedAt.Add(time.Hour), issued.ExpiresAt)
	assert.Equal(t, int64(3600), issued.ExpiresIn(issuedAt))

	claims, err := codec.Decode(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, &models.Claims{Subject: "alice", Authorities: "ROLE_USER", ExpiresAt: issuedAt.Add(time.Hour)}, claims)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
