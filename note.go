package flashcards

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/content"
	"github.com/ankidroid/flashcards.go/pkg/contract"
	"github.com/ankidroid/flashcards.go/pkg/record"
)

// Note is one stored note row.
type Note struct {
	ID      int64
	GUID    string
	ModelID int64
	Mod     int64
	USN     int64
	Tags    []string
	Fields  []string
	Sfld    string
	Csum    int64
	Flags   int64
	Data    string
}

// NoteInput describes a note to create. Model must be the resolved note
// type the fields belong to; the field count is checked against it
// before anything reaches the host.
type NoteInput struct {
	Model  Model
	DeckID int64
	Fields []string
	Tags   []string
}

func (in NoteInput) validate() error {
	if in.Model.ID == 0 {
		return invalidInput("note model is not resolved")
	}
	if len(in.Fields) == 0 {
		return invalidInput("note has no fields")
	}
	if want := in.Model.fieldTotal(); want > 0 && len(in.Fields) != want {
		return invalidInput("note has %d fields, model %q expects %d",
			len(in.Fields), in.Model.Name, want)
	}
	for i, f := range in.Fields {
		if strings.TrimSpace(f) == "" {
			return invalidInput("field %d is blank", i)
		}
		if len(f) > MaxFieldLength {
			return invalidInput("field %d exceeds %d bytes", i, MaxFieldLength)
		}
	}
	return nil
}

func (in NoteInput) values(includeModelID bool) bridge.Values {
	v := bridge.Values{
		contract.NoteFlds: record.JoinFields(in.Fields),
	}
	if includeModelID {
		v[contract.NoteMID] = in.Model.ID
	}
	if len(in.Tags) > 0 {
		v[contract.NoteTags] = record.JoinTags(in.Tags)
	}
	return v
}

func readNote(cur *content.Cursor) (Note, error) {
	var n Note

	id, err := cur.GetString(contract.NoteID)
	if err != nil {
		return n, err
	}
	n.ID, err = strconv.ParseInt(id, 10, 64)
	if err != nil {
		return n, fmt.Errorf("%w: note id %q is not numeric", constants.ErrMalformedRow, id)
	}

	if n.GUID, err = cur.GetString(contract.NoteGUID); err != nil {
		return n, err
	}
	if n.ModelID, err = cur.GetInt64(contract.NoteMID); err != nil {
		return n, err
	}
	if n.Mod, err = cur.GetInt64(contract.NoteMod); err != nil {
		return n, err
	}
	if n.USN, err = cur.GetInt64(contract.NoteUSN); err != nil {
		return n, err
	}
	tags, err := cur.GetString(contract.NoteTags)
	if err != nil {
		return n, err
	}
	n.Tags = record.SplitTags(tags)

	flds, err := cur.GetString(contract.NoteFlds)
	if err != nil {
		return n, err
	}
	n.Fields = record.SplitFields(flds)

	if n.Sfld, err = cur.GetString(contract.NoteSfld); err != nil {
		return n, err
	}
	if n.Csum, err = cur.GetInt64(contract.NoteCsum); err != nil {
		return n, err
	}
	if n.Flags, err = cur.GetInt64(contract.NoteFlags); err != nil {
		return n, err
	}
	if n.Data, err = cur.GetString(contract.NoteData); err != nil {
		return n, err
	}
	return n, nil
}

// AddNote creates a note and moves its generated cards into the target
// deck when one other than the default is requested. The host places new
// cards in the model's deck, so the move is a second pass over
// /notes/{id}/cards.
func (c *Client) AddNote(ctx context.Context, in NoteInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}

	noteID, err := content.Insert(c.bridge, contract.NotesURI).
		Values(in.values(c.includeModelID)).
		Execute(ctx)
	if err != nil {
		return 0, err
	}

	if in.DeckID != 0 && in.DeckID != contract.DefaultDeckID {
		if err := c.moveNoteCards(ctx, noteID, in.DeckID); err != nil {
			return noteID, fmt.Errorf("note %d created but cards not moved to deck %d: %w",
				noteID, in.DeckID, err)
		}
	}

	c.log.Info("note created", "note_id", noteID, "model_id", in.Model.ID, "deck_id", in.DeckID)
	return noteID, nil
}

// AddNotes creates many notes against one model in a single bulk call.
// The returned count can be lower than len(inputs) when the host skips
// rows it considers duplicates. All inputs are validated before the
// bridge is touched; cards stay in the model's deck.
func (c *Client) AddNotes(ctx context.Context, model Model, deckID int64, inputs []NoteInput) (int64, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	rows := make([]bridge.Values, 0, len(inputs))
	for i, in := range inputs {
		in.Model = model
		if err := in.validate(); err != nil {
			return 0, fmt.Errorf("note %d: %w", i, err)
		}
		rows = append(rows, in.values(c.includeModelID))
	}

	inserted, err := content.BulkInsert(c.bridge, contract.NotesURI).Rows(rows...).Execute(ctx)
	if err != nil {
		return 0, err
	}
	if inserted < int64(len(inputs)) {
		c.log.Warn("bulk insert skipped rows", "requested", len(inputs), "inserted", inserted)
	}

	if deckID != 0 && deckID != contract.DefaultDeckID && inserted > 0 {
		if err := c.moveModelNotes(ctx, model.ID, deckID); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

// moveModelNotes moves the cards of every note of a model into a deck.
// Bulk insert does not report the new note ids, so the sweep covers the
// whole model.
func (c *Client) moveModelNotes(ctx context.Context, modelID, deckID int64) error {
	cur, err := content.Query(c.bridge, contract.NotesV2URI).
		Projection(contract.NoteID).
		Selection(contract.NoteMID+"=?", strconv.FormatInt(modelID, 10)).
		Execute(ctx)
	if err != nil {
		return err
	}
	ids, err := content.Collect(cur, func(cur *content.Cursor) (int64, error) {
		return cur.GetInt64(contract.NoteID)
	})
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := c.moveNoteCards(ctx, id, deckID); err != nil {
			return err
		}
	}
	return nil
}

// GetNote fetches one note by id.
func (c *Client) GetNote(ctx context.Context, noteID int64) (Note, error) {
	cur, err := content.Query(c.bridge, contract.NoteURI(noteID)).Execute(ctx)
	if err != nil {
		return Note{}, err
	}
	notes, err := content.Collect(cur, readNote)
	if err != nil {
		return Note{}, err
	}
	if len(notes) == 0 {
		return Note{}, fmt.Errorf("%w: note %d", constants.ErrNotFound, noteID)
	}
	return notes[0], nil
}

// ListNotes returns notes matching the selection, newest modification
// first. A limit of 0 means no limit. The limit is applied after the
// sort so callers get the most recently touched notes.
func (c *Client) ListNotes(ctx context.Context, selection string, args []string, limit int) ([]Note, error) {
	q := content.Query(c.bridge, contract.NotesV2URI)
	if selection != "" {
		q = q.Selection(selection, args...)
	}
	cur, err := q.Execute(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := content.Collect(cur, readNote)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Mod > notes[j].Mod })
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

// NotesForModel returns every note of one model.
func (c *Client) NotesForModel(ctx context.Context, modelID int64) ([]Note, error) {
	return c.ListNotes(ctx, contract.NoteMID+"=?", []string{strconv.FormatInt(modelID, 10)}, 0)
}

// UpdateNoteFields replaces the fields of an existing note. The sort
// field, modification time and sync flag are rewritten alongside so the
// host schedules the note for upload.
func (c *Client) UpdateNoteFields(ctx context.Context, noteID int64, fields []string) error {
	if len(fields) == 0 {
		return invalidInput("note has no fields")
	}
	for i, f := range fields {
		if strings.TrimSpace(f) == "" {
			return invalidInput("field %d is blank", i)
		}
		if len(f) > MaxFieldLength {
			return invalidInput("field %d exceeds %d bytes", i, MaxFieldLength)
		}
	}

	updated, err := content.Update(c.bridge, contract.NoteURI(noteID)).
		Values(bridge.Values{
			contract.NoteFlds: record.JoinFields(fields),
			contract.NoteSfld: fields[0],
			contract.NoteMod:  time.Now().Unix(),
			contract.NoteUSN:  int64(-1),
		}).
		Execute(ctx)
	if err != nil {
		return err
	}
	if updated == 0 {
		return fmt.Errorf("%w: note %d", constants.ErrNotFound, noteID)
	}
	return nil
}

// UpdateNoteTags replaces the tags of an existing note.
func (c *Client) UpdateNoteTags(ctx context.Context, noteID int64, tags []string) error {
	updated, err := content.Update(c.bridge, contract.NoteURI(noteID)).
		Values(bridge.Values{contract.NoteTags: record.JoinTags(tags)}).
		Execute(ctx)
	if err != nil {
		return err
	}
	if updated == 0 {
		return fmt.Errorf("%w: note %d", constants.ErrNotFound, noteID)
	}
	return nil
}

// DeleteNote removes a note and its cards, reporting whether a note was
// actually deleted.
func (c *Client) DeleteNote(ctx context.Context, noteID int64) (bool, error) {
	deleted, err := content.Delete(c.bridge, contract.NoteURI(noteID)).Execute(ctx)
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// FindDuplicateNotes returns notes of the model whose first field has the
// same checksum as key. Checksum collisions are possible, so callers
// comparing for true duplicates should re-check the field text.
func (c *Client) FindDuplicateNotes(ctx context.Context, modelID int64, key string) ([]Note, error) {
	csum := record.FieldChecksum(key)
	cur, err := content.Query(c.bridge, contract.NotesV2URI).
		Selection(contract.NoteMID+"=? AND "+contract.NoteCsum+"=?",
			strconv.FormatInt(modelID, 10), strconv.FormatInt(csum, 10)).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return content.Collect(cur, readNote)
}
