package rand

import (
	"math/rand"
	"time"
)

// NewSeeded returns a new pseudo-random source seeded from the wall clock.
func NewSeeded() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
