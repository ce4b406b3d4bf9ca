package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeValue(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
		want  interface{}
	}{
		{"plain key untouched", "username", "alice", "alice"},
		{"long token masked", "token", "eyJhbGciOiJIUzUxMiJ9.payload.sig", "eyJh***.sig"},
		{"short secret masked", "jwt_secret", "abc", "***"},
		{"non-string redacted", "Authorization", 42, "***REDACTED***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeValue(tt.key, tt.value))
		})
	}
}
