package dataservice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.NoError(t, f.svc.AuthorizeAdmin(ctx, "admin-1"))
	assert.ErrorIs(t, f.svc.AuthorizeAdmin(ctx, "user-1"), ErrForbidden)
	assert.ErrorIs(t, f.svc.AuthorizeAdmin(ctx, "ghost"), ErrNotFound)
}

func TestAuthorizeIdeaOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.NoError(t, f.svc.AuthorizeIdeaOwner(ctx, "idea-2", "user-2"))
	assert.ErrorIs(t, f.svc.AuthorizeIdeaOwner(ctx, "idea-2", "user-1"), ErrForbidden)
	assert.ErrorIs(t, f.svc.AuthorizeIdeaOwner(ctx, "ghost", "user-1"), ErrNotFound)
}

func TestResolveUser(t *testing.T) {
	f := newFixture(t)
	u, err := f.svc.ResolveUser(context.Background(), "user-4")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Sarah Wilson", u.Name)

	u, err = f.svc.ResolveUser(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
}
