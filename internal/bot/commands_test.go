package bot

import (
	"context"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	ping := CommandFunc(func(ctx context.Context, msg *models.Message) (string, error) {
		return "pong", nil
	})

	registry.Register("ping", "Reply with pong", ping)
	registry.Register("about", "About the bot", ping)

	assert.True(t, registry.Has("ping"))
	assert.False(t, registry.Has("pong"))
	assert.Equal(t, []string{"about", "ping"}, registry.List())

	cmd, ok := registry.Get("ping")
	require.True(t, ok)
	reply, err := cmd.Execute(context.Background(), &models.Message{Text: "/ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", reply)

	assert.Equal(t, []models.BotCommand{
		{Command: "about", Description: "About the bot"},
		{Command: "ping", Description: "Reply with pong"},
	}, registry.BotCommands())
}
