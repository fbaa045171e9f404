package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"bingo-groups-backend/apperrors"
	"bingo-groups-backend/models"

	"github.com/google/uuid"
)

// Letters in column order. Every card and every called token is scoped to one
// of these.
var Letters = []string{"B", "I", "N", "G", "O"}

// NumbersPerLetter is the column height of a card.
const NumbersPerLetter = 5

type numberRange struct {
	Min, Max int
}

// letterRanges is the disjoint per-letter table used by SchemeLetterRanges.
// Each range holds exactly 15 integers.
var letterRanges = map[string]numberRange{
	"B": {46, 60},
	"I": {16, 30},
	"N": {31, 45},
	"G": {1, 15},
	"O": {61, 75},
}

// uniformRange is the whole-board range used by SchemeUniform.
var uniformRange = numberRange{1, 75}

// RangeFor returns the numeric range a letter draws from under a scheme.
func RangeFor(scheme models.Scheme, letter string) (int, int) {
	if scheme == models.SchemeUniform {
		return uniformRange.Min, uniformRange.Max
	}
	r := letterRanges[letter]
	return r.Min, r.Max
}

// Token pairs a letter with one of its numbers, e.g. "B46".
func Token(letter string, n int) string {
	return fmt.Sprintf("%s%d", letter, n)
}

// Generator produces randomized cards for one scheme.
type Generator struct {
	scheme models.Scheme
	rng    *rand.Rand
}

func NewGenerator(scheme models.Scheme) *Generator {
	if scheme == "" {
		scheme = models.SchemeLetterRanges
	}
	return &Generator{
		scheme: scheme,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Card builds one fresh card: per letter, an unbiased shuffle of the letter's
// full range, keeping the first NumbersPerLetter entries.
func (g *Generator) Card() models.BingoCard {
	numbers := make(map[string][]int, len(Letters))
	for _, letter := range Letters {
		min, max := RangeFor(g.scheme, letter)
		pool := make([]int, 0, max-min+1)
		for n := min; n <= max; n++ {
			pool = append(pool, n)
		}
		g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		numbers[letter] = append([]int(nil), pool[:NumbersPerLetter]...)
	}
	return models.BingoCard{
		ID:        uuid.NewString(),
		Numbers:   numbers,
		CreatedAt: time.Now(),
	}
}

// Cards builds a batch of n cards, skipping any id collision against cards
// the caller already holds. Collisions are a defensive case only; content
// duplicates are allowed.
func (g *Generator) Cards(n int, held []models.BingoCard) []models.BingoCard {
	seen := make(map[string]bool, len(held))
	for _, c := range held {
		seen[c.ID] = true
	}
	out := make([]models.BingoCard, 0, n)
	for len(out) < n {
		c := g.Card()
		if seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		out = append(out, c)
	}
	return out
}

// NormalizeNumbers accepts either the letter-keyed mapping form
// {"B":[46,...],...} or the row form [["B",46,...],...] and returns the
// mapping form. Anything else fails with InvalidCard.
func NormalizeNumbers(raw json.RawMessage) (map[string][]int, error) {
	var asMap map[string][]int
	if err := json.Unmarshal(raw, &asMap); err == nil {
		if err := ValidateNumbers(asMap); err != nil {
			return nil, err
		}
		return asMap, nil
	}

	// Row form carries the letter as the first element, so decode each row
	// loosely and sort out types below.
	var rows [][]interface{}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, apperrors.ErrInvalidCard.WithMessage("card numbers must be a letter map or letter-prefixed rows")
	}
	converted := make(map[string][]int, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, apperrors.ErrInvalidCard.WithMessage("card row %d is too short", i)
		}
		letter, ok := row[0].(string)
		if !ok {
			return nil, apperrors.ErrInvalidCard.WithMessage("card row %d does not start with a letter", i)
		}
		nums := make([]int, 0, len(row)-1)
		for _, v := range row[1:] {
			f, ok := v.(float64)
			if !ok {
				return nil, apperrors.ErrInvalidCard.WithMessage("card row %q holds a non-numeric value", letter)
			}
			nums = append(nums, int(f))
		}
		converted[letter] = nums
	}
	if err := ValidateNumbers(converted); err != nil {
		return nil, err
	}
	return converted, nil
}

// ValidateNumbers checks the mapping form: exactly the five letters, each a
// non-empty sequence of distinct in-range integers.
func ValidateNumbers(numbers map[string][]int) error {
	if len(numbers) != len(Letters) {
		return apperrors.ErrInvalidCard.WithMessage("card must hold exactly the letters B, I, N, G and O")
	}
	for _, letter := range Letters {
		nums, ok := numbers[letter]
		if !ok || len(nums) == 0 {
			return apperrors.ErrInvalidCard.WithMessage("card is missing numbers for letter %q", letter)
		}
		seen := make(map[int]bool, len(nums))
		for _, n := range nums {
			if n < uniformRange.Min || n > uniformRange.Max {
				return apperrors.ErrInvalidCard.WithMessage("number %d under %q is out of range", n, letter)
			}
			if seen[n] {
				return apperrors.ErrInvalidCard.WithMessage("duplicate number %d under %q", n, letter)
			}
			seen[n] = true
		}
	}
	return nil
}

// Pool returns the deduplicated union of every token appearing on the given
// cards, in sorted order so callers draw from a stable universe.
func Pool(cards []models.BingoCard) []string {
	seen := make(map[string]bool)
	for _, c := range cards {
		for letter, nums := range c.Numbers {
			for _, n := range nums {
				seen[Token(letter, n)] = true
			}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
