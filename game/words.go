package game

import (
	"math/rand"
)

// vocabulary is the fixed word list for the word race.
var vocabulary = []string{"heartbeat", "cuddle", "together", "forever", "sunshine"}

func pickWord() string {
	return vocabulary[rand.Intn(len(vocabulary))]
}
