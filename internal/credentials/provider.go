package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/equipskill/equipskill-dashboard/config"
	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
	"github.com/equipskill/equipskill-dashboard/pkg/jwt"
)

// Provider supplies the bearer credential for one operation.
// Implementations must not cache: the token may be rotated outside the process.
type Provider interface {
	Token(ctx context.Context) (string, error)
}

// Static always returns the same token.
type Static string

func (s Static) Token(_ context.Context) (string, error) {
	tok := strings.TrimSpace(string(s))
	if tok == "" {
		return "", fmt.Errorf("no auth token configured: %w", apperrors.ErrUnauthorized)
	}
	return tok, nil
}

// Env reads the named environment variable on every call.
type Env struct {
	Name string
}

func (e Env) Token(_ context.Context) (string, error) {
	tok := strings.TrimSpace(os.Getenv(e.Name))
	if tok == "" {
		return "", fmt.Errorf("%s is not set: %w", e.Name, apperrors.ErrUnauthorized)
	}
	return tok, nil
}

// File reads the token file on every call.
type File struct {
	Path string
}

func (f File) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("token file %s not found: %w", f.Path, apperrors.ErrUnauthorized)
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", fmt.Errorf("token file %s is empty: %w", f.Path, apperrors.ErrUnauthorized)
	}
	return tok, nil
}

// FromConfig picks the token source: an explicit token, then a token file,
// then the environment variable.
func FromConfig(cfg config.AuthConfig) Provider {
	switch {
	case cfg.Token != "":
		return Static(cfg.Token)
	case cfg.TokenFile != "":
		return File{Path: cfg.TokenFile}
	default:
		return Env{Name: cfg.TokenEnv}
	}
}

// Subject returns the user id carried by token, or "" when the token is not a JWT.
// The signature is not checked; the backend does that.
func Subject(token string) string {
	sub, err := jwt.SubjectUnverified(token)
	if err != nil {
		return ""
	}
	return sub
}
