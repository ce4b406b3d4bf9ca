package cli

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/jwtauth/internal/infrastructure/crypto"
	"github.com/turtacn/jwtauth/pkg/constants"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestKeygen(t *testing.T) {
	out, err := run(t, "keygen")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(out)
	require.NoError(t, err)
	assert.Len(t, raw, constants.MinSigningKeyBytes)

	_, err = run(t, "keygen", "--bytes", "32")
	assert.Error(t, err)
}

func TestTokenIssueAndInspect(t *testing.T) {
	secret, err := crypto.GenerateSigningSecret(constants.MinSigningKeyBytes)
	require.NoError(t, err)
	t.Setenv("JWTAUTH_JWT_SECRET", secret)

	token, err := run(t, "token", "issue", "--subject", "alice", "--roles", "ROLE_USER,ROLE_ADMIN")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)

	out, err := run(t, "token", "inspect", token)
	require.NoError(t, err)
	assert.Contains(t, out, "subject: alice")
	assert.Contains(t, out, "roles:   ROLE_USER,ROLE_ADMIN")

	_, err = run(t, "token", "inspect", token+"x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token rejected")
}

func TestTokenIssueRequiresSubject(t *testing.T) {
	_, err := run(t, "token", "issue")
	assert.Error(t, err)
}
