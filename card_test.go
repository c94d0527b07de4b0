package flashcards

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/content"
	"github.com/ankidroid/flashcards.go/pkg/contract"
)

// addNoteWithCards seeds one two-way note so tests have two cards to
// work with.
func addNoteWithCards(t *testing.T, c *Client) (noteID int64, cards []NoteCard) {
	t.Helper()
	ctx := context.Background()

	modelID, err := c.AddBasicTwoWayModel(ctx, "Two Way")
	require.NoError(t, err)
	model, err := c.GetModel(ctx, modelID)
	require.NoError(t, err)

	noteID, err = c.AddNote(ctx, NoteInput{
		Model:  model,
		Fields: []string{"front", "back"},
	})
	require.NoError(t, err)

	cards, err = c.CardsForNote(ctx, noteID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	return noteID, cards
}

// cardID resolves the raw card row id for one card of a note.
func cardID(t *testing.T, c *Client, noteID int64, ord int) int64 {
	t.Helper()

	cur, err := content.Query(c.bridge, contract.CardsURI).
		Projection(contract.CardID).
		Selection(contract.CardNid+"=? AND "+contract.CardOrd+"=?",
			strconv.FormatInt(noteID, 10), strconv.Itoa(ord)).
		Execute(context.Background())
	require.NoError(t, err)

	ids, err := content.Collect(cur, func(cur *content.Cursor) (int64, error) {
		return cur.GetInt64(contract.CardID)
	})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	return ids[0]
}

func TestCardsForNote(t *testing.T) {
	c, _ := newTestClient(t)

	noteID, cards := addNoteWithCards(t, c)
	assert.Equal(t, noteID, cards[0].NoteID)
	assert.Equal(t, 0, cards[0].Ord)
	assert.Equal(t, 1, cards[1].Ord)
	assert.Equal(t, "Card 1", cards[0].Name)
	assert.Equal(t, "Card 2", cards[1].Name)
}

func TestSuspendAndUnsuspendCard(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	noteID, _ := addNoteWithCards(t, c)
	id := cardID(t, c, noteID, 0)

	changed, err := c.SuspendCard(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	state, err := c.GetCardState(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.IsSuspended())
	assert.False(t, state.IsBuried())

	changed, err = c.UnsuspendCard(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	state, err = c.GetCardState(ctx, id)
	require.NoError(t, err)
	assert.False(t, state.IsSuspended())
	assert.True(t, state.IsNew())
}

func TestBuryAndUnburyCard(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	noteID, _ := addNoteWithCards(t, c)
	id := cardID(t, c, noteID, 0)

	changed, err := c.BuryCard(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	state, err := c.GetCardState(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.IsBuried())

	_, err = c.UnburyCard(ctx, id)
	require.NoError(t, err)

	state, err = c.GetCardState(ctx, id)
	require.NoError(t, err)
	assert.False(t, state.IsBuried())
}

func TestSuspendMissingCard(t *testing.T) {
	c, _ := newTestClient(t)

	changed, err := c.SuspendCard(context.Background(), 99999)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestResetCardProgress(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	noteID, _ := addNoteWithCards(t, c)
	id := cardID(t, c, noteID, 0)

	// Simulate review history before the reset.
	_, err := c.SetCardDue(ctx, id, 42)
	require.NoError(t, err)

	changed, err := c.ResetCardProgress(ctx, id)
	require.NoError(t, err)
	assert.True(t, changed)

	state, err := c.GetCardState(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.IsNew())
	assert.Zero(t, state.Due)
	assert.Zero(t, state.Ivl)
	assert.Zero(t, state.Reps)
	assert.Zero(t, state.Lapses)
	assert.Equal(t, int64(contract.StartingEaseFactor), state.Factor)
}

func TestGetCardStateNotFound(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.GetCardState(context.Background(), 99999)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrNotFound)
}

func TestMoveCardToDeck(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	noteID, _ := addNoteWithCards(t, c)
	deckID, err := c.AddDeck(ctx, "Target")
	require.NoError(t, err)

	require.NoError(t, c.MoveCardToDeck(ctx, noteID, 1, deckID))

	cards, err := c.CardsForNote(ctx, noteID)
	require.NoError(t, err)
	assert.Equal(t, int64(contract.DefaultDeckID), cards[0].DeckID)
	assert.Equal(t, deckID, cards[1].DeckID)
}

func TestMoveCardToDeckRejectsBadDeck(t *testing.T) {
	c, _ := newTestClient(t)

	err := c.MoveCardToDeck(context.Background(), 1, 0, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrInvalidInput)
}

func TestMoveCardToDeckMissingCard(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	deckID, err := c.AddDeck(ctx, "Target")
	require.NoError(t, err)

	err = c.MoveCardToDeck(ctx, 99999, 0, deckID)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrNotFound)
}

func TestMoveNoteCardsToDeck(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	noteID, _ := addNoteWithCards(t, c)
	deckID, err := c.AddDeck(ctx, "Target")
	require.NoError(t, err)

	require.NoError(t, c.MoveNoteCardsToDeck(ctx, noteID, deckID))

	cards, err := c.CardsForNote(ctx, noteID)
	require.NoError(t, err)
	for _, card := range cards {
		assert.Equal(t, deckID, card.DeckID)
	}
}
