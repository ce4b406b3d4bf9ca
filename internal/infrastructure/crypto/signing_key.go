package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
)

const redacted = "SigningKey([REDACTED])"

// SigningKey is the process-wide HMAC-SHA512 secret.
// It is built once at startup, never mutated and never printed.
type SigningKey struct {
	material []byte
}

// NewSigningKey decodes a base64 secret (standard alphabet, padded or not).
// It fails with errors.ErrInvalidConfig when the secret is empty, not base64,
// or shorter than the HS512 minimum of 64 bytes.
func NewSigningKey(secretBase64 string) (*SigningKey, error) {
	secret := strings.TrimSpace(secretBase64)
	if secret == "" {
		return nil, errors.ErrInvalidConfig.WithDescription("jwt signing secret is empty")
	}

	material, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		material, err = base64.RawStdEncoding.DecodeString(secret)
	}
	if err != nil {
		return nil, errors.ErrInvalidConfig.
			WithDescription("jwt signing secret is not valid base64").
			WithError(err)
	}

	if len(material) < constants.MinSigningKeyBytes {
		return nil, errors.ErrInvalidConfig.WithDescription(fmt.Sprintf(
			"jwt signing secret decodes to %d bytes, %s requires at least %d",
			len(material), constants.SigningAlgorithm, constants.MinSigningKeyBytes))
	}

	return &SigningKey{material: material}, nil
}

// GenerateSigningSecret returns a fresh random secret of size bytes, base64 encoded.
func GenerateSigningSecret(size int) (string, error) {
	if size < constants.MinSigningKeyBytes {
		size = constants.MinSigningKeyBytes
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Len returns the key length in bytes.
func (k *SigningKey) Len() int {
	return len(k.material)
}

func (k *SigningKey) String() string {
	return redacted
}

func (k *SigningKey) GoString() string {
	return redacted
}

// Format keeps the key material out of every fmt verb, %x and %v included.
func (k *SigningKey) Format(f fmt.State, verb rune) {
	_, _ = f.Write([]byte(redacted))
}

// bytes is the HMAC key handed to the JWT library.
func (k *SigningKey) bytes() []byte {
	return k.material
}
