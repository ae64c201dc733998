package entity

const BotPlayerID = "bot"

type Player struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Slot int    `json:"slot"`
}

func NewBotPlayer(slot int) *Player {
	return &Player{
		ID:   BotPlayerID,
		Name: "Bot",
		Slot: slot,
	}
}

func (that *Player) IsBot() bool {
	return that.ID == BotPlayerID
}
