package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateState returns a random OAuth state string of 16 hex characters.
func GenerateState() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
