package game

import (
	"testing"

	"bingo-groups-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleNumberCard(owner string) models.BingoCard {
	return models.BingoCard{
		ID:       owner,
		UserName: owner,
		Numbers: map[string][]int{
			"B": {46}, "I": {16}, "N": {31}, "G": {1}, "O": {61},
		},
	}
}

func TestFindWinnerRequiresFullCoverage(t *testing.T) {
	card := singleNumberCard("alice")
	tokens := []string{"B46", "I16", "N31", "G1", "O61"}

	// Not a winner while even one token is missing.
	for i := 1; i < len(tokens); i++ {
		_, ok := FindWinner([]models.BingoCard{card}, tokens[:i])
		assert.False(t, ok, "won with only %d of %d tokens", i, len(tokens))
	}

	winner, ok := FindWinner([]models.BingoCard{card}, tokens)
	require.True(t, ok)
	assert.Equal(t, "alice", winner.UserName)
}

func TestFindWinnerOrderIndependent(t *testing.T) {
	card := singleNumberCard("alice")
	_, ok := FindWinner([]models.BingoCard{card}, []string{"O61", "G1", "B46", "N31", "I16"})
	assert.True(t, ok)
}

func TestFindWinnerPicksFirstInSubmissionOrder(t *testing.T) {
	first := singleNumberCard("first")
	second := singleNumberCard("second")
	winner, ok := FindWinner([]models.BingoCard{first, second}, []string{"B46", "I16", "N31", "G1", "O61"})
	require.True(t, ok)
	assert.Equal(t, "first", winner.UserName)
}

func TestFindWinnerToleratesMalformedCards(t *testing.T) {
	missingLetter := models.BingoCard{Numbers: map[string][]int{
		"B": {46}, "I": {16}, "N": {31}, "O": {61},
	}}
	emptyColumn := models.BingoCard{Numbers: map[string][]int{
		"B": {46}, "I": {16}, "N": {31}, "G": {}, "O": {61},
	}}
	nilNumbers := models.BingoCard{}

	cards := []models.BingoCard{missingLetter, emptyColumn, nilNumbers}
	_, ok := FindWinner(cards, []string{"B46", "I16", "N31", "G1", "O61"})
	assert.False(t, ok)
}

func TestRemainingSubtractsCalled(t *testing.T) {
	card := singleNumberCard("alice")

	remaining := Remaining([]models.BingoCard{card}, nil)
	assert.Len(t, remaining, 5)

	remaining = Remaining([]models.BingoCard{card}, []string{"B46", "G1"})
	assert.ElementsMatch(t, []string{"I16", "N31", "O61"}, remaining)

	remaining = Remaining([]models.BingoCard{card}, []string{"B46", "I16", "N31", "G1", "O61"})
	assert.Empty(t, remaining)
}
