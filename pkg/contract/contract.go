// Package contract holds the resource paths, column names and sentinel
// values of the AnkiDroid flashcards content interface. The values mirror
// FlashCardsContract in the host app and must not drift from it.
package contract

import "strconv"

const (
	// Authority identifies the host content interface.
	Authority = "com.ichi2.anki.flashcards"

	// ReadWritePermission must be granted to the caller before any write.
	ReadWritePermission = "com.ichi2.anki.permission.READ_WRITE_DATABASE"

	base = "content://" + Authority
)

// Fixed resource paths.
const (
	NotesURI        = base + "/notes"
	NotesV2URI      = base + "/notes_v2"
	CardsURI        = base + "/cards"
	ModelsURI       = base + "/models"
	CurrentModelURI = base + "/models/current"
	DecksURI        = base + "/decks"
	SelectedDeckURI = base + "/selected_deck"
	ScheduleURI     = base + "/schedule"
	MediaURI        = base + "/media"
	ReviewInfoURI   = base + "/review_info"
)

// NoteURI addresses a single note row.
func NoteURI(noteID int64) string {
	return NotesURI + "/" + strconv.FormatInt(noteID, 10)
}

// NoteCardsURI addresses the cards generated for a note.
func NoteCardsURI(noteID int64) string {
	return NoteURI(noteID) + "/cards"
}

// NoteCardURI addresses one card of a note by template ordinal.
func NoteCardURI(noteID int64, ord int) string {
	return NoteCardsURI(noteID) + "/" + strconv.Itoa(ord)
}

// ModelURI addresses a single note type.
func ModelURI(modelID int64) string {
	return ModelsURI + "/" + strconv.FormatInt(modelID, 10)
}

// ModelTemplatesURI addresses the card templates of a note type.
func ModelTemplatesURI(modelID int64) string {
	return ModelURI(modelID) + "/templates"
}

// ModelTemplateURI addresses one card template by ordinal.
func ModelTemplateURI(modelID int64, ord int) string {
	return ModelTemplatesURI(modelID) + "/" + strconv.Itoa(ord)
}
