package app

import "math/rand"

// WordPool is the fixed set of drawable words offered to drawers
var WordPool = []string{
	"cat", "dog", "house", "tree", "car",
	"book", "phone", "computer", "flower", "bird",
	"fish", "mountain", "ocean", "sun", "moon",
	"star", "cloud", "rain", "snow", "fire",
	"apple", "banana", "pizza", "cake", "coffee",
	"music", "dance", "smile", "heart", "love",
	"happy", "sad", "angry", "surprised", "scared",
	"excited", "tired", "hungry", "thirsty", "cold",
	"hot", "big", "small", "fast", "slow",
	"strong", "weak", "old", "young", "new",
	"airplane", "train", "boat", "bicycle", "robot",
	"dinosaur", "dragon", "castle", "beach", "forest",
}

// RandomWords returns count distinct random words from the pool
func RandomWords(count int) []string {
	if count > len(WordPool) {
		count = len(WordPool)
	}

	shuffled := make([]string, len(WordPool))
	copy(shuffled, WordPool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled[:count]
}
