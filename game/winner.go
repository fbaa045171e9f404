package game

import "bingo-groups-backend/models"

// FindWinner scans cards in submission order and returns the first one whose
// every (letter, number) pair has been called. Cards with a missing or empty
// letter column are treated as non-winning rather than rejected; the store
// validates on the way in, but old rows may predate that.
func FindWinner(cards []models.BingoCard, called []string) (*models.BingoCard, bool) {
	calledSet := make(map[string]bool, len(called))
	for _, t := range called {
		calledSet[t] = true
	}
	for i := range cards {
		if coversAll(&cards[i], calledSet) {
			return &cards[i], true
		}
	}
	return nil, false
}

func coversAll(card *models.BingoCard, called map[string]bool) bool {
	for _, letter := range Letters {
		nums, ok := card.Numbers[letter]
		if !ok || len(nums) == 0 {
			return false
		}
		for _, n := range nums {
			if !called[Token(letter, n)] {
				return false
			}
		}
	}
	return true
}

// Remaining subtracts the called tokens from the union of all card tokens.
func Remaining(cards []models.BingoCard, called []string) []string {
	calledSet := make(map[string]bool, len(called))
	for _, t := range called {
		calledSet[t] = true
	}
	pool := Pool(cards)
	out := make([]string, 0, len(pool))
	for _, t := range pool {
		if !calledSet[t] {
			out = append(out, t)
		}
	}
	return out
}
