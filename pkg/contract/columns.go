package contract

// Note columns.
const (
	NoteID    = "_id"
	NoteGUID  = "guid"
	NoteMID   = "mid"
	NoteMod   = "mod"
	NoteUSN   = "usn"
	NoteTags  = "tags"
	NoteFlds  = "flds"
	NoteSfld  = "sfld"
	NoteCsum  = "csum"
	NoteFlags = "flags"
	NoteData  = "data"
)

// Card columns of the raw cards table, used by direct state updates.
const (
	CardID     = "_id"
	CardNid    = "nid"
	CardDid    = "did"
	CardOrd    = "ord"
	CardMod    = "mod"
	CardType   = "type"
	CardQueue  = "queue"
	CardDue    = "due"
	CardIvl    = "ivl"
	CardFactor = "factor"
	CardReps   = "reps"
	CardLapses = "lapses"
	CardLeft   = "left"
	CardODue   = "odue"
	CardODid   = "odid"
	CardFlags  = "flags"
	CardData   = "data"
)

// Columns of the per-note cards sub-resource. These are the projection
// names the host exposes under /notes/{id}/cards, distinct from the raw
// card table spellings.
const (
	NoteCardNoteID   = "note_id"
	NoteCardOrd      = "ord"
	NoteCardName     = "card_name"
	NoteCardDeckID   = "deck_id"
	NoteCardQuestion = "question"
	NoteCardAnswer   = "answer"
)

// Deck columns. The host answers to two spellings depending on the code
// path that produced the row; readers must accept either and writers
// populate both.
const (
	DeckID     = "deck_id"
	DeckName   = "deck_name"
	DeckDesc   = "deck_desc"
	DeckCounts = "deck_counts"
	DeckOption = "options"
	DeckDyn    = "deck_dyn"

	DeckIDAlt   = "did"
	DeckNameAlt = "name"
)

// Model (note type) columns.
const (
	ModelID             = "_id"
	ModelName           = "name"
	ModelFieldNames     = "field_names"
	ModelNumCards       = "num_cards"
	ModelCSS            = "css"
	ModelDeckID         = "deck_id"
	ModelSortFieldIndex = "sort_field_index"
	ModelType           = "type"
	ModelLatexPre       = "latex_pre"
	ModelLatexPost      = "latex_post"
)

// Card template columns.
const (
	TemplateModelID      = "model_id"
	TemplateOrd          = "ord"
	TemplateName         = "card_template_name"
	TemplateQuestionFmt  = "question_format"
	TemplateAnswerFmt    = "answer_format"
	TemplateBrowserQuest = "browser_question_format"
	TemplateBrowserAns   = "browser_answer_format"
)

// Media columns.
const (
	MediaFileURI       = "file_uri"
	MediaPreferredName = "preferred_name"
)

// Review info columns.
const (
	ReviewNoteID          = "note_id"
	ReviewCardOrd         = "ord"
	ReviewButtonCount     = "button_count"
	ReviewNextReviewTimes = "next_review_times"
	ReviewMediaFiles      = "media_files"
	ReviewEase            = "ease"
	ReviewTimeTaken       = "time_taken"
	ReviewBury            = "buried"
	ReviewSuspend         = "suspended"
)
