package crypto

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/turtacn/jwtauth/internal/domain/service"
)

var _ service.PasswordEncoder = (*BcryptPasswordEncoder)(nil)

// BcryptPasswordEncoder hashes passwords with bcrypt.
type BcryptPasswordEncoder struct {
	cost int
}

// NewBcryptPasswordEncoder creates an encoder. A cost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewBcryptPasswordEncoder(cost int) *BcryptPasswordEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordEncoder{cost: cost}
}

func (e *BcryptPasswordEncoder) Encode(rawPassword string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), e.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (e *BcryptPasswordEncoder) Matches(rawPassword, encodedPassword string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedPassword), []byte(rawPassword)) == nil
}
