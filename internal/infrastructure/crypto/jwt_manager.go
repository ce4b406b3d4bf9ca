package crypto

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/internal/domain/service"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
	"github.com/turtacn/jwtauth/pkg/logger"
	"github.com/turtacn/jwtauth/pkg/utils"
)

var _ service.TokenCodec = (*JWTCodec)(nil)

var (
	errAlgorithmMismatch = errors.New("token is signed with an algorithm other than " + constants.SigningAlgorithm)
	errUnsignedToken     = errors.New("token is not signed")
)

// tokenClaims is the wire form of the payload. Auth is a pointer so a missing
// claim can be told apart from an empty role list.
type tokenClaims struct {
	Auth *string `json:"auth"`
	jwt.RegisteredClaims
}

// JWTCodec encodes and decodes HS512 bearer tokens.
type JWTCodec struct {
	key      *SigningKey
	validity time.Duration
	now      func() time.Time
	log      logger.Logger
	parser   *jwt.Parser
}

// Option configures a JWTCodec.
type Option func(*JWTCodec)

// WithClock replaces time.Now, both for issuing and for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) {
		c.now = now
	}
}

// NewJWTCodec creates a codec signing with key. validity is used by Issue.
func NewJWTCodec(key *SigningKey, validity time.Duration, log logger.Logger, opts ...Option) *JWTCodec {
	c := &JWTCodec{
		key:      key,
		validity: validity,
		now:      time.Now,
		log:      log.WithComponent("JWTCodec"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = jwt.NewParser(
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
	)
	return c
}

// Encode signs {sub, auth, exp} where auth is the comma-joined role list.
func (c *JWTCodec) Encode(subject string, roles []string, validity time.Duration) (string, error) {
	token, _, err := c.encode(subject, roles, validity)
	return token, err
}

// Issue encodes a token valid for the configured lifetime.
func (c *JWTCodec) Issue(subject string, roles []string) (*models.IssuedToken, error) {
	token, expiresAt, err := c.encode(subject, roles, c.validity)
	if err != nil {
		return nil, errors.ErrInternalServer.WithDescription("failed to sign token").WithError(err)
	}
	return &models.IssuedToken{
		Token:     token,
		TokenType: constants.TokenTypeBearer,
		Subject:   subject,
		Roles:     roles,
		ExpiresAt: expiresAt,
	}, nil
}

func (c *JWTCodec) encode(subject string, roles []string, validity time.Duration) (string, time.Time, error) {
	auth := utils.JoinAuthorities(roles)
	// exp travels as whole seconds, so the issue instant is taken at the same resolution.
	issuedAt := c.now().Truncate(time.Second)
	exp := jwt.NewNumericDate(issuedAt.Add(validity))

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, tokenClaims{
		Auth: &auth,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: exp,
		},
	})

	signed, err := token.SignedString(c.key.bytes())
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp.Time, nil
}

// Decode verifies the token signature and then its claims.
func (c *JWTCodec) Decode(token string) (*models.Claims, error) {
	claims := &tokenClaims{}
	if _, err := c.parser.ParseWithClaims(token, claims, c.keyFunc); err != nil {
		return nil, classify(token, err)
	}

	if claims.Subject == "" {
		return nil, errors.ErrMalformedToken.WithDescription("token has no subject")
	}
	if claims.Auth == nil {
		return nil, errors.ErrMalformedToken.WithDescription("token has no " + constants.AuthoritiesClaim + " claim")
	}

	return &models.Claims{
		Subject:     claims.Subject,
		Authorities: *claims.Auth,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Validate reports whether token decodes. Failures are logged by kind only.
func (c *JWTCodec) Validate(ctx context.Context, token string) bool {
	if _, err := c.Decode(token); err != nil {
		c.log.Info(ctx, "invalid bearer token", logger.String("reason", errors.CodeOf(err)))
		return false
	}
	return true
}

func (c *JWTCodec) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method == jwt.SigningMethodNone {
		return nil, errUnsignedToken
	}
	if token.Method.Alg() != constants.SigningAlgorithm {
		return nil, errAlgorithmMismatch
	}
	return c.key.bytes(), nil
}

// classify maps golang-jwt failures onto the four token error kinds.
func classify(token string, err error) error {
	switch {
	case errors.Is(err, errAlgorithmMismatch), errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.ErrBadSignature.WithError(err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return errors.ErrUnsupportedToken.WithError(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.ErrTokenExpired.WithError(err)
	case errors.Is(err, jwt.ErrTokenMalformed) && signatureSegmentCorrupt(token):
		return errors.ErrBadSignature.WithError(err)
	default:
		return errors.ErrMalformedToken.WithError(err)
	}
}

// signatureSegmentCorrupt reports whether header and payload are well formed,
// leaving everything after the second separator as the cause of a parse failure.
func signatureSegmentCorrupt(token string) bool {
	first := strings.IndexByte(token, '.')
	if first < 0 {
		return false
	}
	second := strings.IndexByte(token[first+1:], '.')
	if second < 0 {
		return false
	}
	signingInput := token[:first+1+second]

	_, _, err := jwt.NewParser(jwt.WithStrictDecoding()).ParseUnverified(signingInput+".", &tokenClaims{})
	return err == nil
}
