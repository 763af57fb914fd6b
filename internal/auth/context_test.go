// ABOUTME: Tests for identity context propagation and authority membership
// ABOUTME: Covers FromContext behavior on empty and populated contexts

package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContext_Empty(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}

func TestWithIdentity_RoundTrip(t *testing.T) {
	id := &Identity{Username: "public", Authorities: []string{AuthorityUser, AuthorityRead}}
	ctx := WithIdentity(context.Background(), id)

	got := FromContext(ctx)
	assert.Same(t, id, got)
}

func TestIdentity_HasAuthority(t *testing.T) {
	id := &Identity{Username: "public", Authorities: []string{AuthorityUser, AuthorityRead}}

	assert.True(t, id.HasAuthority(AuthorityRead))
	assert.False(t, id.HasAuthority(AuthorityWrite))
}

func TestIdentity_HasAny(t *testing.T) {
	id := &Identity{Username: "public", Authorities: []string{AuthorityRead}}

	assert.True(t, id.HasAny([]string{AuthorityRead, AuthorityWrite}))
	assert.False(t, id.HasAny([]string{AuthorityWrite}))
	assert.False(t, id.HasAny(nil))
}

func TestIdentity_HasAll(t *testing.T) {
	id := &Identity{Username: "admin", Authorities: []string{AuthorityRead, AuthorityWrite}}

	assert.True(t, id.HasAll([]string{AuthorityRead, AuthorityWrite}))
	assert.False(t, id.HasAll([]string{AuthorityRead, AuthorityAdmin}))
	assert.True(t, id.HasAll(nil))
}
