package flashcards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankidroid/flashcards.go/internal/mock"
	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/contract"
)

func basicModel(t *testing.T, c *Client) Model {
	t.Helper()
	m, err := c.GetModel(context.Background(), contract.DefaultBasicModelID)
	require.NoError(t, err)
	return m
}

func TestAddNoteRoundTrip(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	model := basicModel(t, c)

	id, err := c.AddNote(ctx, NoteInput{
		Model:  model,
		Fields: []string{"capital of France", "Paris"},
		Tags:   []string{"geo", "europe"},
	})
	require.NoError(t, err)

	note, err := c.GetNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"capital of France", "Paris"}, note.Fields)
	assert.Equal(t, []string{"geo", "europe"}, note.Tags)
	assert.Equal(t, model.ID, note.ModelID)
	assert.NotEmpty(t, note.GUID)
	assert.Equal(t, "capital of France", note.Sfld)
	assert.Equal(t, int64(-1), note.USN)
}

func TestAddNoteFieldCountMismatchNeverReachesHost(t *testing.T) {
	b := &mock.Bridge{}
	c, err := New(b)
	require.NoError(t, err)

	model := Model{ID: 1, Name: "Basic", FieldNames: []string{"Front", "Back"}}
	_, err = c.AddNote(context.Background(), NoteInput{
		Model:  model,
		Fields: []string{"only one field"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrInvalidInput)
	assert.Zero(t, b.CallCount())
}

func TestAddNoteOversizedFieldNeverReachesHost(t *testing.T) {
	b := &mock.Bridge{}
	c, err := New(b)
	require.NoError(t, err)

	big := make([]byte, MaxFieldLength+1)
	model := Model{ID: 1, Name: "Basic", FieldNames: []string{"Front", "Back"}}
	_, err = c.AddNote(context.Background(), NoteInput{
		Model:  model,
		Fields: []string{string(big), "back"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrInvalidInput)
	assert.Zero(t, b.CallCount())
}

func TestAddNoteBlankFieldNeverReachesHost(t *testing.T) {
	b := &mock.Bridge{}
	c, err := New(b)
	require.NoError(t, err)

	model := Model{ID: 1, Name: "Basic", FieldNames: []string{"Front", "Back"}}
	for _, fields := range [][]string{
		{"", ""},
		{"  \t ", "back"},
		{"front", ""},
	} {
		_, err = c.AddNote(context.Background(), NoteInput{
			Model:  model,
			Fields: fields,
		})
		require.Error(t, err, "fields %q", fields)
		assert.ErrorIs(t, err, constants.ErrInvalidInput)
	}
	assert.Zero(t, b.CallCount())
}

func TestAddNoteModelIDColumnToggle(t *testing.T) {
	model := Model{ID: 7, Name: "Basic", FieldNames: []string{"Front", "Back"}}
	input := NoteInput{Model: model, Fields: []string{"f", "b"}}
	ctx := context.Background()

	b := &mock.Bridge{}
	c, err := New(b)
	require.NoError(t, err)
	_, err = c.AddNote(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, int64(7), b.Calls[0].Values[contract.NoteMID])

	b = &mock.Bridge{}
	c, err = New(b, WithoutModelIDOnInsert())
	require.NoError(t, err)
	_, err = c.AddNote(ctx, input)
	require.NoError(t, err)
	assert.NotContains(t, b.Calls[0].Values, contract.NoteMID)
}

func TestAddNotesModelIDColumnToggle(t *testing.T) {
	model := Model{ID: 7, Name: "Basic", FieldNames: []string{"Front", "Back"}}
	inputs := []NoteInput{
		{Fields: []string{"f1", "b1"}},
		{Fields: []string{"f2", "b2"}},
	}
	ctx := context.Background()

	b := &mock.Bridge{}
	c, err := New(b)
	require.NoError(t, err)
	_, err = c.AddNotes(ctx, model, 0, inputs)
	require.NoError(t, err)
	require.Len(t, b.Calls[0].Rows, 2)
	for _, row := range b.Calls[0].Rows {
		assert.Equal(t, int64(7), row[contract.NoteMID])
	}

	b = &mock.Bridge{}
	c, err = New(b, WithoutModelIDOnInsert())
	require.NoError(t, err)
	_, err = c.AddNotes(ctx, model, 0, inputs)
	require.NoError(t, err)
	require.Len(t, b.Calls[0].Rows, 2)
	for _, row := range b.Calls[0].Rows {
		assert.NotContains(t, row, contract.NoteMID)
	}
}

func TestAddNoteGeneratesCardsInModelDeck(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.AddNote(ctx, NoteInput{
		Model:  basicModel(t, c),
		Fields: []string{"front", "back"},
	})
	require.NoError(t, err)

	cards, err := c.CardsForNote(ctx, id)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, int64(contract.DefaultDeckID), cards[0].DeckID)
	assert.Equal(t, "Card 1", cards[0].Name)
}

func TestAddNoteMovesCardsToRequestedDeck(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	deckID, err := c.AddDeck(ctx, "Capitals")
	require.NoError(t, err)

	id, err := c.AddNote(ctx, NoteInput{
		Model:  basicModel(t, c),
		DeckID: deckID,
		Fields: []string{"front", "back"},
	})
	require.NoError(t, err)

	cards, err := c.CardsForNote(ctx, id)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, deckID, cards[0].DeckID)
}

func TestAddNotesBulk(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	model := basicModel(t, c)

	inputs := []NoteInput{
		{Fields: []string{"one", "1"}},
		{Fields: []string{"two", "2"}},
		{Fields: []string{"three", "3"}},
	}
	inserted, err := c.AddNotes(ctx, model, 0, inputs)
	require.NoError(t, err)
	assert.Equal(t, int64(3), inserted)

	notes, err := c.NotesForModel(ctx, model.ID)
	require.NoError(t, err)
	assert.Len(t, notes, 3)
}

func TestAddNotesSkipsDuplicates(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	model := basicModel(t, c)

	_, err := c.AddNote(ctx, NoteInput{
		Model:  model,
		Fields: []string{"one", "1"},
	})
	require.NoError(t, err)

	inserted, err := c.AddNotes(ctx, model, 0, []NoteInput{
		{Fields: []string{"one", "changed back"}},
		{Fields: []string{"two", "2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), inserted)
}

func TestAddNotesValidatesBeforeBridge(t *testing.T) {
	b := &mock.Bridge{}
	c, err := New(b)
	require.NoError(t, err)

	model := Model{ID: 1, Name: "Basic", FieldNames: []string{"Front", "Back"}}
	_, err = c.AddNotes(context.Background(), model, 0, []NoteInput{
		{Fields: []string{"fine", "fine"}},
		{Fields: []string{"short"}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrInvalidInput)
	assert.Zero(t, b.CallCount())
}

func TestGetNoteNotFound(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.GetNote(context.Background(), 12345)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrNotFound)
}

func TestListNotesSortsByModDescAndLimits(t *testing.T) {
	rows := [][]any{
		{int64(1), "g1", int64(1), int64(100), int64(-1), "", "old\x1fb", "old", int64(0), int64(0), ""},
		{int64(2), "g2", int64(1), int64(300), int64(-1), "", "new\x1fb", "new", int64(0), int64(0), ""},
		{int64(3), "g3", int64(1), int64(200), int64(-1), "", "mid\x1fb", "mid", int64(0), int64(0), ""},
	}
	cols := []string{"_id", "guid", "mid", "mod", "usn", "tags", "flds", "sfld", "csum", "flags", "data"}
	b := &mock.Bridge{
		QueryFunc: func(string, []string, string, []string, string) (bridge.RowSet, error) {
			return mock.NewRowSet(cols, rows...), nil
		},
	}
	c, err := New(b)
	require.NoError(t, err)

	notes, err := c.ListNotes(context.Background(), "", nil, 2)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, int64(2), notes[0].ID)
	assert.Equal(t, int64(3), notes[1].ID)
}

func TestUpdateNoteFields(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.AddNote(ctx, NoteInput{
		Model:  basicModel(t, c),
		Fields: []string{"front", "back"},
	})
	require.NoError(t, err)

	require.NoError(t, c.UpdateNoteFields(ctx, id, []string{"new front", "new back"}))

	note, err := c.GetNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"new front", "new back"}, note.Fields)

	err = c.UpdateNoteFields(ctx, id, []string{"", "back"})
	assert.ErrorIs(t, err, constants.ErrInvalidInput)
}

func TestUpdateNoteFieldsNotFound(t *testing.T) {
	c, _ := newTestClient(t)

	err := c.UpdateNoteFields(context.Background(), 12345, []string{"a", "b"})
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrNotFound)
}

func TestUpdateNoteTags(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.AddNote(ctx, NoteInput{
		Model:  basicModel(t, c),
		Fields: []string{"front", "back"},
		Tags:   []string{"old"},
	})
	require.NoError(t, err)

	require.NoError(t, c.UpdateNoteTags(ctx, id, []string{"fresh", "tags"}))

	note, err := c.GetNote(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh", "tags"}, note.Tags)
}

func TestDeleteNote(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.AddNote(ctx, NoteInput{
		Model:  basicModel(t, c),
		Fields: []string{"front", "back"},
	})
	require.NoError(t, err)

	deleted, err := c.DeleteNote(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.DeleteNote(ctx, id)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = c.GetNote(ctx, id)
	assert.ErrorIs(t, err, constants.ErrNotFound)
}

func TestDeleteNoteRemovesCards(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.AddNote(ctx, NoteInput{
		Model:  basicModel(t, c),
		Fields: []string{"front", "back"},
	})
	require.NoError(t, err)

	_, err = c.DeleteNote(ctx, id)
	require.NoError(t, err)

	cards, err := c.CardsForNote(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestFindDuplicateNotes(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	model := basicModel(t, c)

	_, err := c.AddNote(ctx, NoteInput{Model: model, Fields: []string{"Paris", "France"}})
	require.NoError(t, err)
	_, err = c.AddNote(ctx, NoteInput{Model: model, Fields: []string{"Paris", "Texas"}})
	require.NoError(t, err)
	_, err = c.AddNote(ctx, NoteInput{Model: model, Fields: []string{"Berlin", "Germany"}})
	require.NoError(t, err)

	dups, err := c.FindDuplicateNotes(ctx, model.ID, "Paris")
	require.NoError(t, err)
	require.Len(t, dups, 2)
	for _, n := range dups {
		assert.Equal(t, "Paris", n.Fields[0])
	}

	dups, err = c.FindDuplicateNotes(ctx, model.ID, "London")
	require.NoError(t, err)
	assert.Empty(t, dups)
}
