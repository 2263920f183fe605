package chatmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatContext_Basics(t *testing.T) {
	t.Parallel()
	c := NewChatContext("cid", 123)
	require.NotNil(t, c)
	assert.Equal(t, "cid", c.GetChatID())
	assert.Equal(t, 123, c.AppData())

	// Metadata
	val, ok := c.GetMetadata("not-found")
	assert.Nil(t, val)
	assert.False(t, ok)
	c.SetMetadata("foo", 1)
	v, ok := c.GetMetadata("foo")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestNewChatContext_DefaultID(t *testing.T) {
	t.Parallel()
	c := NewChatContext("", nil)
	require.NotNil(t, c)
	assert.NotEmpty(t, c.GetChatID())

	c2 := NewChatContext("", nil)
	assert.NotEqual(t, c.GetChatID(), c2.GetChatID())
}

func TestContextPlumbing(t *testing.T) {
	t.Parallel()
	c := NewChatContext("y", nil)

	ctx := context.Background()
	assert.Nil(t, GetChatContext(ctx))
	assert.Empty(t, GetChatID(ctx))

	ctx = WithChatContext(ctx, c)
	got := GetChatContext(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "y", got.GetChatID())
	assert.Equal(t, "y", GetChatID(ctx))
}

func TestStringify(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `{"A":1}`, Stringify(struct{ A int }{A: 1}))
	assert.Equal(t, `{"A":1}`, string(ToBytes(struct{ A int }{A: 1})))
}
