package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JasjusSirsak/bolususu/internal/domain"
)

func TestIdentityVerifier_Verify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.user(t, "alice")

	tok, err := env.jwt.Issue(alice.ID, alice.Email)
	require.NoError(t, err)

	id, err := env.identity.Verify(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id.ID)
	assert.Equal(t, "alice@example.com", id.Email)
	assert.Equal(t, domain.UserRoleUser, id.Role)
}

func TestIdentityVerifier_RejectsMissingAndMalformed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.identity.Verify(ctx, "")
	assert.True(t, domain.Is(err, domain.KindUnauthenticated))

	_, err = env.identity.Verify(ctx, "garbage")
	assert.True(t, domain.Is(err, domain.KindUnauthenticated))
}

func TestIdentityVerifier_RejectsBannedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.user(t, "bob")
	tok, err := env.jwt.Issue(bob.ID, bob.Email)
	require.NoError(t, err)

	require.NoError(t, env.accounts.Ban(ctx, bob.ID))

	_, err = env.identity.Verify(ctx, tok)
	assert.True(t, domain.Is(err, domain.KindUnauthenticated), "stale claims must not pass: %v", err)
}

func TestIdentityVerifier_RejectsUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	tok, err := env.jwt.Issue(9999, "ghost@example.com")
	require.NoError(t, err)

	_, err = env.identity.Verify(context.Background(), tok)
	assert.True(t, domain.Is(err, domain.KindUnauthenticated))
}
