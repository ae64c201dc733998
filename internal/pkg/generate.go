package pkg

import (
	"math/rand"

	"github.com/google/uuid"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6
)

// GenerateRoomCode - returns a 6-character room code built from uppercase
// letters and digits.
func GenerateRoomCode() string {
	code := make([]byte, roomCodeLength)
	for i := range code {
		code[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))] //nolint: gosec // it's ok
	}

	return string(code)
}

// GenerateNewSessionID - returns a fresh player session identifier.
func GenerateNewSessionID() string {
	return uuid.NewString()
}
