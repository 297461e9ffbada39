package service

import (
	"context"
	"strings"

	"github.com/JasjusSirsak/bolususu/internal/core/auth"
	"github.com/JasjusSirsak/bolususu/internal/domain"
	"github.com/JasjusSirsak/bolususu/internal/repo"
)

// IdentityVerifier turns a bearer credential into the caller's live identity.
type IdentityVerifier struct {
	jwt   *auth.JWTer
	users *repo.UserRepo
}

func NewIdentityVerifier(j *auth.JWTer, users *repo.UserRepo) *IdentityVerifier {
	return &IdentityVerifier{jwt: j, users: users}
}

// Verify checks the token and re-reads the user so that banned or removed
// accounts stop working immediately instead of riding on stale claims.
func (v *IdentityVerifier) Verify(ctx context.Context, credential string) (domain.Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return domain.Identity{}, domain.Unauthenticated("access denied, token is required")
	}
	claims, err := v.jwt.Parse(credential)
	if err != nil {
		return domain.Identity{}, domain.Unauthenticated("invalid or expired token")
	}
	u, err := v.users.FindByID(ctx, claims.UID)
	if err != nil {
		return domain.Identity{}, domain.Storage("failed to verify identity", err)
	}
	if u == nil {
		return domain.Identity{}, domain.Unauthenticated("user not found")
	}
	return domain.Identity{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: u.Role}, nil
}
