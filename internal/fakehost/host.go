package fakehost

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ankidroid/flashcards.go/internal/mock"
	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/contract"
	"github.com/ankidroid/flashcards.go/pkg/record"
)

// Host implements bridge.Bridge and bridge.Syncer directly against the
// store, emulating the host app's content interface in-process.
type Host struct {
	store *Store

	mu           sync.Mutex
	selectedDeck int64
	currentModel int64
	syncRequests int
}

// New opens a Host over a fresh store.
func New() (*Host, error) {
	store, err := NewStore()
	if err != nil {
		return nil, err
	}
	return &Host{
		store:        store,
		selectedDeck: contract.DefaultDeckID,
		currentModel: contract.DefaultBasicModelID,
	}, nil
}

// Close releases the backing store.
func (h *Host) Close() error { return h.store.Close() }

// SyncRequests reports how many sync triggers the host received.
func (h *Host) SyncRequests() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.syncRequests
}

// SetSelectedDeck changes the deck the emulated UI has open.
func (h *Host) SetSelectedDeck(deckID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.selectedDeck = deckID
}

var errUnsupported = &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "unsupported resource path"}

func (h *Host) route(uri string) []string {
	trimmed := strings.TrimPrefix(uri, "content://"+contract.Authority)
	trimmed = strings.Trim(path.Clean(trimmed), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

var (
	noteColumns = []string{"_id", "guid", "mid", "mod", "usn", "tags", "flds", "sfld", "csum", "flags", "data"}
	cardColumns = []string{"_id", "nid", "did", "ord", "mod", "type", "queue", "due", "ivl", "factor", "reps", "lapses", "left", "odue", "odid", "flags", "data"}
	deckColumns = []string{"did", "name", "deck_id", "deck_name"}
	modelCols   = []string{"_id", "name", "field_names", "num_cards", "css", "deck_id", "sort_field_index", "type", "latex_pre", "latex_post"}
	tmplColumns = []string{"model_id", "ord", "card_template_name", "question_format", "answer_format"}
)

func (h *Host) Query(_ context.Context, uri string, projection []string, selection string, args []string, sort string) (bridge.RowSet, error) {
	seg := h.route(uri)
	switch {
	case len(seg) == 1 && (seg[0] == "notes" || seg[0] == "notes_v2"):
		return h.tableQuery("notes", noteColumns, projection, selection, args, sort, nil)
	case len(seg) == 2 && seg[0] == "notes":
		return h.tableQuery("notes", noteColumns, projection, "_id = ?", []string{seg[1]}, "", nil)
	case len(seg) == 3 && seg[0] == "notes" && seg[2] == "cards":
		return h.noteCardsQuery(seg[1], projection)
	case len(seg) == 1 && seg[0] == "cards":
		return h.tableQuery("cards", cardColumns, projection, selection, args, sort, nil)
	case len(seg) == 1 && seg[0] == "decks":
		return h.tableQuery("decks", deckColumns, projection, selection, args, sort, rewriteDeckColumn)
	case len(seg) == 1 && seg[0] == "selected_deck":
		h.mu.Lock()
		did := h.selectedDeck
		h.mu.Unlock()
		return h.tableQuery("decks", deckColumns, projection, "did = ?", []string{strconv.FormatInt(did, 10)}, "", rewriteDeckColumn)
	case len(seg) == 1 && seg[0] == "models":
		return h.tableQuery("models", modelCols, projection, selection, args, sort, nil)
	case len(seg) == 2 && seg[0] == "models" && seg[1] == "current":
		h.mu.Lock()
		mid := h.currentModel
		h.mu.Unlock()
		return h.tableQuery("models", modelCols, projection, "_id = ?", []string{strconv.FormatInt(mid, 10)}, "", nil)
	case len(seg) == 2 && seg[0] == "models":
		return h.tableQuery("models", modelCols, projection, "_id = ?", []string{seg[1]}, "", nil)
	case len(seg) == 3 && seg[0] == "models" && seg[2] == "templates":
		return h.tableQuery("templates", tmplColumns, projection, "model_id = ?", []string{seg[1]}, "ord ASC", nil)
	case len(seg) == 1 && seg[0] == "review_info":
		return mock.NewRowSet([]string{contract.ReviewNoteID, contract.ReviewCardOrd}), nil
	default:
		return nil, errUnsupported
	}
}

// rewriteDeckColumn maps the API spellings onto the deck table columns.
func rewriteDeckColumn(col string) string {
	switch col {
	case contract.DeckID:
		return "did"
	case contract.DeckName:
		return "name"
	default:
		return col
	}
}

func (h *Host) tableQuery(table string, defaultCols, projection []string, selection string, args []string, sort string, rewrite func(string) string) (bridge.RowSet, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	cols := projection
	if len(cols) == 0 {
		cols = defaultCols
	}

	var sel []string
	for _, col := range cols {
		src := col
		if rewrite != nil {
			src = rewrite(col)
		}
		if src == col {
			sel = append(sel, quoteIdent(src))
		} else {
			sel = append(sel, quoteIdent(src)+" AS "+quoteIdent(col))
		}
	}

	query := "SELECT " + strings.Join(sel, ", ") + " FROM " + table
	if selection != "" {
		clause := selection
		if rewrite != nil {
			clause = strings.ReplaceAll(clause, contract.DeckName, "name")
			clause = strings.ReplaceAll(clause, contract.DeckID, "did")
		}
		query += " WHERE " + clause
	}
	if sort != "" {
		clause := sort
		if rewrite != nil {
			clause = strings.ReplaceAll(clause, contract.DeckName, "name")
			clause = strings.ReplaceAll(clause, contract.DeckID, "did")
		}
		query += " ORDER BY " + clause
	}

	qargs := make([]any, len(args))
	for i, a := range args {
		qargs[i] = a
	}
	names, rows, err := h.store.selectRows(query, qargs...)
	if err != nil {
		return nil, &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}
	return mock.NewRowSet(names, rows...), nil
}

func (h *Host) noteCardsQuery(noteID string, projection []string) (bridge.RowSet, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	names, rows, err := h.store.selectRows(`
		SELECT c.nid AS note_id, c.ord AS ord,
		       COALESCE(t.card_template_name, 'Card ' || (c.ord + 1)) AS card_name,
		       c.did AS deck_id, '' AS question, '' AS answer
		FROM cards c
		LEFT JOIN notes n ON n._id = c.nid
		LEFT JOIN templates t ON t.model_id = n.mid AND t.ord = c.ord
		WHERE c.nid = ?
		ORDER BY c.ord ASC`, noteID)
	if err != nil {
		return nil, &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}
	if len(projection) > 0 {
		names, rows = project(names, rows, projection)
	}
	return mock.NewRowSet(names, rows...), nil
}

// project narrows materialized rows to the requested columns.
func project(names []string, rows [][]any, projection []string) ([]string, [][]any) {
	idx := make([]int, 0, len(projection))
	for _, want := range projection {
		for i, have := range names {
			if have == want {
				idx = append(idx, i)
				break
			}
		}
	}
	out := make([][]any, len(rows))
	for r, row := range rows {
		narrow := make([]any, len(idx))
		for i, c := range idx {
			narrow[i] = row[c]
		}
		out[r] = narrow
	}
	return projection, out
}

func (h *Host) Insert(_ context.Context, uri string, values bridge.Values) (string, error) {
	seg := h.route(uri)
	switch {
	case len(seg) == 1 && seg[0] == "notes":
		return h.insertNote(values)
	case len(seg) == 1 && seg[0] == "decks":
		return h.insertDeck(values)
	case len(seg) == 1 && seg[0] == "models":
		return h.insertModel(values)
	case len(seg) == 1 && seg[0] == "media":
		return h.insertMedia(values)
	default:
		return "", errUnsupported
	}
}

func (h *Host) insertNote(values bridge.Values) (string, error) {
	mid, ok := vInt64(values, contract.NoteMID)
	if !ok {
		return "", &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "note insert requires mid"}
	}
	flds, _ := vString(values, contract.NoteFlds)
	tags, _ := vString(values, contract.NoteTags)
	guid, ok := vString(values, contract.NoteGUID)
	if !ok || guid == "" {
		guid = uuid.NewString()
	}

	fields := record.SplitFields(flds)
	first := ""
	if len(fields) > 0 {
		first = fields[0]
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return h.insertNoteLocked(mid, guid, flds, tags, first)
}

func (h *Host) insertNoteLocked(mid int64, guid, flds, tags, firstField string) (string, error) {
	var numCards int
	var deckID int64
	err := h.store.db.QueryRow(`SELECT num_cards, deck_id FROM models WHERE _id = ?`, mid).
		Scan(&numCards, &deckID)
	if err != nil {
		return "", &bridge.RemoteError{Code: bridge.CodeNotFound, Message: fmt.Sprintf("model %d not found", mid)}
	}

	now := time.Now().Unix()
	res, err := h.store.db.Exec(
		`INSERT INTO notes (guid, mid, mod, usn, tags, flds, sfld, csum) VALUES (?, ?, ?, -1, ?, ?, ?, ?)`,
		guid, mid, now, tags, flds, firstField, record.FieldChecksum(firstField),
	)
	if err != nil {
		return "", &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}
	noteID, err := res.LastInsertId()
	if err != nil {
		return "", &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}

	for ord := 0; ord < numCards; ord++ {
		if _, err := h.store.db.Exec(
			`INSERT INTO cards (nid, did, ord, mod) VALUES (?, ?, ?, ?)`,
			noteID, deckID, ord, now,
		); err != nil {
			return "", &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
		}
	}
	return contract.NoteURI(noteID), nil
}

func (h *Host) insertDeck(values bridge.Values) (string, error) {
	name, ok := vString(values, contract.DeckName, contract.DeckNameAlt)
	if !ok || name == "" {
		return "", &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "deck insert requires a name"}
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	var existing int64
	err := h.store.db.QueryRow(`SELECT did FROM decks WHERE name = ?`, name).Scan(&existing)
	if err == nil {
		return "", &bridge.RemoteError{
			Code:    bridge.CodeInternal,
			Message: fmt.Sprintf("Deck name already exists: %s", name),
		}
	}

	res, err := h.store.db.Exec(`INSERT INTO decks (name) VALUES (?)`, name)
	if err != nil {
		return "", &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}
	did, _ := res.LastInsertId()
	return contract.DecksURI + "/" + strconv.FormatInt(did, 10), nil
}

func (h *Host) insertModel(values bridge.Values) (string, error) {
	name, _ := vString(values, contract.ModelName)
	fieldNames, _ := vString(values, contract.ModelFieldNames)
	numCards, ok := vInt64(values, contract.ModelNumCards)
	if name == "" || fieldNames == "" || !ok || numCards < 1 {
		return "", &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "model insert requires name, field_names and num_cards"}
	}
	css, _ := vString(values, contract.ModelCSS)
	deckID, ok := vInt64(values, contract.ModelDeckID)
	if !ok {
		deckID = contract.DefaultDeckID
	}
	sortIdx, _ := vInt64(values, contract.ModelSortFieldIndex)
	modelType, _ := vInt64(values, contract.ModelType)

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	res, err := h.store.db.Exec(
		`INSERT INTO models (name, field_names, num_cards, css, deck_id, sort_field_index, type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, fieldNames, numCards, css, deckID, sortIdx, modelType,
	)
	if err != nil {
		return "", &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}
	modelID, _ := res.LastInsertId()

	for ord := int64(0); ord < numCards; ord++ {
		if _, err := h.store.db.Exec(
			`INSERT INTO templates (model_id, ord, card_template_name) VALUES (?, ?, ?)`,
			modelID, ord, fmt.Sprintf("Card %d", ord+1),
		); err != nil {
			return "", &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
		}
	}
	return contract.ModelURI(modelID), nil
}

func (h *Host) insertMedia(values bridge.Values) (string, error) {
	fileURI, _ := vString(values, contract.MediaFileURI)
	preferred, _ := vString(values, contract.MediaPreferredName)
	if fileURI == "" || preferred == "" {
		return "", &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "media insert requires file_uri and preferred_name"}
	}

	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	name := preferred
	ext := path.Ext(preferred)
	stem := strings.TrimSuffix(preferred, ext)
	for i := 1; ; i++ {
		var found string
		err := h.store.db.QueryRow(`SELECT fname FROM media WHERE fname = ?`, name).Scan(&found)
		if err != nil {
			break
		}
		name = fmt.Sprintf("%s_%d%s", stem, i, ext)
	}
	if _, err := h.store.db.Exec(`INSERT INTO media (fname) VALUES (?)`, name); err != nil {
		return "", &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}
	return contract.MediaURI + "/" + name, nil
}

func (h *Host) Update(_ context.Context, uri string, values bridge.Values, selection string, args []string) (int64, error) {
	seg := h.route(uri)
	switch {
	case len(seg) == 2 && seg[0] == "notes":
		return h.execUpdate("notes", noteColumns, values, "_id = ?", []string{seg[1]})
	case len(seg) == 1 && seg[0] == "notes":
		return h.execUpdate("notes", noteColumns, values, selection, args)
	case len(seg) == 4 && seg[0] == "notes" && seg[2] == "cards":
		did, ok := vInt64(values, contract.NoteCardDeckID, contract.CardDid)
		if !ok {
			return 0, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "card move requires a deck id"}
		}
		return h.execRaw(`UPDATE cards SET did = ? WHERE nid = ? AND ord = ?`, did, seg[1], seg[3])
	case len(seg) == 1 && seg[0] == "cards":
		return h.execUpdate("cards", cardColumns, values, selection, args)
	case len(seg) == 4 && seg[0] == "models" && seg[2] == "templates":
		return h.execUpdate("templates", tmplColumns[2:], values,
			"model_id = ? AND ord = ?", []string{seg[1], seg[3]})
	case len(seg) == 2 && seg[0] == "models":
		return h.execUpdate("models", modelCols[1:], values, "_id = ?", []string{seg[1]})
	case len(seg) == 1 && seg[0] == "selected_deck":
		did, ok := vInt64(values, contract.DeckID, contract.DeckIDAlt)
		if !ok {
			return 0, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "selected deck update requires a deck id"}
		}
		h.mu.Lock()
		h.selectedDeck = did
		h.mu.Unlock()
		return 1, nil
	default:
		return 0, errUnsupported
	}
}

// execUpdate writes only whitelisted columns so a stray key cannot smuggle
// SQL into the statement.
func (h *Host) execUpdate(table string, allowed []string, values bridge.Values, selection string, args []string) (int64, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	var sets []string
	var qargs []any
	for _, col := range allowed {
		if v, ok := values[col]; ok {
			sets = append(sets, quoteIdent(col)+" = ?")
			qargs = append(qargs, v)
		}
	}
	if len(sets) == 0 {
		return 0, &bridge.RemoteError{Code: bridge.CodeInvalidParams, Message: "update without recognized columns"}
	}

	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ")
	if selection != "" {
		query += " WHERE " + selection
	}
	for _, a := range args {
		qargs = append(qargs, a)
	}

	res, err := h.store.db.Exec(query, qargs...)
	if err != nil {
		return 0, &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (h *Host) execRaw(query string, args ...any) (int64, error) {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()

	res, err := h.store.db.Exec(query, args...)
	if err != nil {
		return 0, &bridge.RemoteError{Code: bridge.CodeInternal, Message: err.Error()}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (h *Host) Delete(_ context.Context, uri string, selection string, args []string) (int64, error) {
	seg := h.route(uri)
	switch {
	case len(seg) == 2 && seg[0] == "notes":
		if _, err := h.execRaw(`DELETE FROM cards WHERE nid = ?`, seg[1]); err != nil {
			return 0, err
		}
		return h.execRaw(`DELETE FROM notes WHERE _id = ?`, seg[1])
	case len(seg) == 1 && seg[0] == "notes":
		query := "DELETE FROM notes"
		if selection != "" {
			query += " WHERE " + selection
		}
		qargs := make([]any, len(args))
		for i, a := range args {
			qargs[i] = a
		}
		n, err := h.execRaw(query, qargs...)
		if err != nil {
			return 0, err
		}
		_, _ = h.execRaw(`DELETE FROM cards WHERE nid NOT IN (SELECT _id FROM notes)`)
		return n, nil
	default:
		return 0, errUnsupported
	}
}

func (h *Host) BulkInsert(_ context.Context, uri string, rows []bridge.Values) (int64, error) {
	seg := h.route(uri)
	if len(seg) != 1 || seg[0] != "notes" {
		return 0, errUnsupported
	}

	var inserted int64
	for _, values := range rows {
		mid, ok := vInt64(values, contract.NoteMID)
		if !ok {
			continue
		}
		flds, _ := vString(values, contract.NoteFlds)
		tags, _ := vString(values, contract.NoteTags)
		fields := record.SplitFields(flds)
		first := ""
		if len(fields) > 0 {
			first = fields[0]
		}

		h.store.mu.Lock()
		var dup int
		err := h.store.db.QueryRow(
			`SELECT COUNT(*) FROM notes WHERE mid = ? AND csum = ?`,
			mid, record.FieldChecksum(first),
		).Scan(&dup)
		if err == nil && dup > 0 {
			// The host skips duplicates silently; the short count is the
			// caller's only signal.
			h.store.mu.Unlock()
			continue
		}
		_, err = h.insertNoteLocked(mid, uuid.NewString(), flds, tags, first)
		h.store.mu.Unlock()
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// RequestSync records a sync trigger.
func (h *Host) RequestSync(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.syncRequests++
	return nil
}

func vString(values bridge.Values, keys ...string) (string, bool) {
	for _, key := range keys {
		v, ok := values[key]
		if !ok {
			continue
		}
		switch s := v.(type) {
		case string:
			return s, true
		case []byte:
			return string(s), true
		default:
			return fmt.Sprint(v), true
		}
	}
	return "", false
}

func vInt64(values bridge.Values, keys ...string) (int64, bool) {
	for _, key := range keys {
		v, ok := values[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int64:
			return n, true
		case int:
			return int64(n), true
		case uint64:
			return int64(n), true
		case float64:
			return int64(n), true
		case string:
			parsed, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return 0, false
			}
			return parsed, true
		}
	}
	return 0, false
}

var _ bridge.Bridge = (*Host)(nil)
var _ bridge.Syncer = (*Host)(nil)
