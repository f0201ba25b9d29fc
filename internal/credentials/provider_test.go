package credentials_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipskill/equipskill-dashboard/config"
	"github.com/equipskill/equipskill-dashboard/internal/credentials"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
	"github.com/equipskill/equipskill-dashboard/pkg/jwt"
)

func TestStatic(t *testing.T) {
	tok, err := credentials.Static(" abc ").Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = credentials.Static("").Token(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestEnv_ReadsOnEveryCall(t *testing.T) {
	p := credentials.Env{Name: "EQUIPSKILL_TEST_TOKEN"}

	t.Setenv("EQUIPSKILL_TEST_TOKEN", "first")
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "first", tok)

	t.Setenv("EQUIPSKILL_TEST_TOKEN", "second")
	tok, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "second", tok)

	t.Setenv("EQUIPSKILL_TEST_TOKEN", "")
	_, err = p.Token(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestFile_ReadsOnEveryCall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	p := credentials.File{Path: path}

	_, err := p.Token(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, os.WriteFile(path, []byte("one\n"), 0o600))
	tok, err := p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "one", tok)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0o600))
	tok, err = p.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "two", tok)
}

func TestFromConfig(t *testing.T) {
	assert.IsType(t, credentials.Static(""), credentials.FromConfig(config.AuthConfig{Token: "x", TokenFile: "/tmp/t"}))
	assert.IsType(t, credentials.File{}, credentials.FromConfig(config.AuthConfig{TokenFile: "/tmp/t"}))
	assert.Equal(t, credentials.Env{Name: "EQUIPSKILL_TOKEN"}, credentials.FromConfig(config.AuthConfig{TokenEnv: "EQUIPSKILL_TOKEN"}))
}

func TestSubject(t *testing.T) {
	tm := jwt.NewTokenManager("secret", "equipskill-sandbox", 1)
	token, err := tm.GenerateToken("u-42", "ada@example.com", "Ada", "user")
	require.NoError(t, err)

	assert.Equal(t, "u-42", credentials.Subject(token))
	assert.Equal(t, "", credentials.Subject("opaque-token"))
}
