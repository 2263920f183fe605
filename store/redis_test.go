package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/funcall-ai/funcall/chatmodel"
	"github.com/funcall-ai/funcall/pkg/llms"
	"github.com/funcall-ai/funcall/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func Test_RedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)
	rs := client.Ping(ctx)
	require.NoError(t, rs.Err(), "failed to connect to Redis")

	root := fmt.Sprintf("test-%d", time.Now().Unix())
	st := store.NewRedisStoreManager(client, root)

	msg1 := llms.MessageFromTextParts(llms.RoleHuman, "Hello")
	msg2 := llms.MessageFromTextParts(llms.RoleAI, "Hi there!")

	// without a chat context all operations fail
	expErr := "invalid chat context"
	assert.ErrorContains(t, st.Reset(ctx), expErr)
	assert.ErrorContains(t, st.Add(ctx, msg1), expErr)
	assert.ErrorContains(t, st.UpdateChat(ctx, "", nil), expErr)
	_, err = st.GetChatInfo(ctx, "")
	assert.ErrorContains(t, err, expErr)
	assert.Empty(t, st.Messages(ctx))

	chatCtx := chatmodel.NewChatContext("chat1", nil)
	ctx = chatmodel.WithChatContext(ctx, chatCtx)

	require.NoError(t, st.Add(ctx, msg1))
	require.NoError(t, st.Add(ctx, msg2))

	msgs := st.Messages(ctx)
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.RoleHuman, msgs[0].Role)
	assert.Equal(t, "Hello", msgs[0].GetContent())
	assert.Equal(t, llms.RoleAI, msgs[1].Role)
	assert.Equal(t, "Hi there!", msgs[1].GetContent())

	// tool call parts survive the round trip
	toolMsg := llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
		ID:   "call_1",
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      "add",
			Arguments: `{"a":2,"b":3}`,
		},
	})
	require.NoError(t, st.Add(ctx, toolMsg))
	msgs = st.Messages(ctx)
	require.Len(t, msgs, 3)
	assert.Equal(t, toolMsg, msgs[2])

	require.NoError(t, st.UpdateChat(ctx, "Greetings", map[string]any{"lang": "en"}))

	info, err := st.GetChatInfo(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "chat1", info.ChatID)
	assert.Equal(t, "Greetings", info.Title)
	assert.Equal(t, "en", info.Metadata["lang"])
	assert.Len(t, info.Messages, 3)

	chats, err := st.ListChats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"chat1"}, chats)

	// nothing old enough to clean up
	deleted, err := st.Cleanup(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), deleted)

	require.NoError(t, st.Reset(ctx))
	assert.Empty(t, st.Messages(ctx))

	chats, err = st.ListChats(ctx)
	require.NoError(t, err)
	assert.Empty(t, chats)

	// everything is older than a zero cutoff after re-adding
	require.NoError(t, st.Add(ctx, msg1))
	time.Sleep(10 * time.Millisecond)
	deleted, err = st.Cleanup(ctx, time.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), deleted)
}
