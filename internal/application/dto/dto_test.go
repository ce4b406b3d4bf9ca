package dto_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/jwtauth/internal/application/dto"
	"github.com/turtacn/jwtauth/internal/domain/models"
	"github.com/turtacn/jwtauth/pkg/constants"
	"github.com/turtacn/jwtauth/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSendError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", errors.ErrUserAlreadyExists, http.StatusConflict, "user_already_exists"},
		{"wrapped app error", fmt.Errorf("signup: %w", errors.ErrBadCredentials), http.StatusUnauthorized, "bad_credentials"},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Set(constants.GinKeyRequestID, "req-1")

			dto.SendError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var body dto.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "req-1", body.RequestID)
			assert.NotContains(t, w.Body.String(), "boom")
			assert.Len(t, c.Errors, 1)
		})
	}
}

func TestSendSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	dto.SendSuccess(c, http.StatusCreated, gin.H{"ok": true})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"ok":true}`, extractData(t, w.Body.Bytes()))
}

func TestNewTokenResponse(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	resp := dto.NewTokenResponse(&models.IssuedToken{
		Token:     "abc",
		TokenType: constants.TokenTypeBearer,
		ExpiresAt: now.Add(90 * time.Second),
	}, now)

	assert.Equal(t, "abc", resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(90), resp.ExpiresIn)
}

func TestNewUserResponse(t *testing.T) {
	resp := dto.NewUserResponse(&models.User{
		Username:    "alice",
		Password:    "$2a$10$hash",
		Nickname:    "Alice",
		Activated:   true,
		Authorities: []models.Authority{{AuthorityName: constants.RoleUser}},
	})

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.Equal(t, []string{constants.RoleUser}, resp.Authorities)
}

func extractData(t *testing.T, raw []byte) string {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	return string(env.Data)
}
