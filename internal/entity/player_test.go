package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayer_IsBot(t *testing.T) {
	t.Run("Bot players are recognized", func(t *testing.T) {
		// Given: a bot player in slot 1
		player := NewBotPlayer(1)

		// Then: it identifies as a bot
		assert.True(t, player.IsBot())
		assert.Equal(t, 1, player.Slot)
	})

	t.Run("Human players are not bots", func(t *testing.T) {
		// Given: a human player
		player := &Player{ID: "123", Name: "ann"}

		// Then: it is not a bot
		assert.False(t, player.IsBot())
	})
}
