package utils

import (
	"strings"

	"github.com/turtacn/jwtauth/pkg/constants"
)

// ExtractBearerToken returns the token carried by an Authorization header value.
// The prefix match is case-sensitive and requires exactly "Bearer " (one space);
// anything else means the request carries no token.
func ExtractBearerToken(header string) (string, bool) {
	if header == "" || !strings.HasPrefix(header, constants.BearerPrefix) {
		return "", false
	}
	return header[len(constants.BearerPrefix):], true
}

// BearerHeaderValue formats a token for the Authorization header.
func BearerHeaderValue(token string) string {
	return constants.BearerPrefix + token
}

// SplitAuthorities splits a comma-joined authorities claim, dropping empty segments.
func SplitAuthorities(claim string) []string {
	return Filter(strings.Split(claim, constants.AuthoritiesSeparator), ValidateNotEmpty)
}

// JoinAuthorities joins role names into the authorities claim value.
func JoinAuthorities(roles []string) string {
	return strings.Join(roles, constants.AuthoritiesSeparator)
}
