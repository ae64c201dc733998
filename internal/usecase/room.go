package usecase

import (
	"sync"

	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/apperror"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/entity"
	"github.com/rocketscienceinc/entropy-tictactoe-backend/internal/session"
)

// Room holds one game session and up to two player slots. All access to
// the session goes through mu, which is the per-room single-writer lock;
// rooms never take each other's locks.
type Room struct {
	mu sync.Mutex

	code     string
	sess     *session.GameSession
	players  [session.PlayerSlots]*entity.Player
	botSlot  int
	closed   bool
	archived bool
}

func (that *Room) slotOf(playerID string) (int, error) {
	for slot, player := range that.players {
		if player != nil && player.ID == playerID {
			return slot, nil
		}
	}

	return 0, apperror.ErrPlayerNotFound
}

func (that *Room) freeSlot() (int, bool) {
	for slot, player := range that.players {
		if player == nil {
			return slot, true
		}
	}

	return 0, false
}

func (that *Room) playerCount() int {
	count := 0
	for _, player := range that.players {
		if player != nil {
			count++
		}
	}
	return count
}

func (that *Room) playerList() []entity.Player {
	list := make([]entity.Player, 0, session.PlayerSlots)
	for _, player := range that.players {
		if player != nil {
			list = append(list, *player)
		}
	}
	return list
}

func (that *Room) playerNames() []string {
	names := make([]string, 0, session.PlayerSlots)
	for _, player := range that.players {
		if player != nil {
			names = append(names, player.Name)
		}
	}
	return names
}

func (that *Room) hasBotTurn() bool {
	return that.botSlot >= 0 &&
		!that.sess.IsGameOver() &&
		that.sess.CurrentTurn() == that.botSlot
}
