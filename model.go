package flashcards

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/buger/jsonparser"
	gojson "github.com/goccy/go-json"

	"github.com/ankidroid/flashcards.go/pkg/bridge"
	"github.com/ankidroid/flashcards.go/pkg/constants"
	"github.com/ankidroid/flashcards.go/pkg/content"
	"github.com/ankidroid/flashcards.go/pkg/contract"
	"github.com/ankidroid/flashcards.go/pkg/record"
)

// Model is one note type. FieldCount is the number of fields notes of
// this model carry; it stays meaningful even when the host answers a
// field_names shape the name decoder cannot turn into a list.
type Model struct {
	ID             int64
	Name           string
	FieldNames     []string
	FieldCount     int
	NumCards       int
	CSS            string
	DeckID         int64
	SortFieldIndex int
	Type           int
	LatexPre       string
	LatexPost      string
}

// minUsableFieldCount is the fewest fields a model can have and still
// produce a valid note.
const minUsableFieldCount = 2

// usableForNotes reports whether notes can be created against the model:
// at least two fields and a standard or cloze type, nothing exotic.
func (m Model) usableForNotes() bool {
	return m.fieldTotal() >= minUsableFieldCount && (m.Type == 0 || m.Type == 1)
}

// fieldTotal prefers the decoded names but falls back to the counted
// total for models whose names did not decode.
func (m Model) fieldTotal() int {
	if n := len(m.FieldNames); n > 0 {
		return n
	}
	return m.FieldCount
}

// parseFieldNames decodes a field_names column. Hosts answer either a
// JSON array or a separator-joined list. A JSON array that does not
// decode into strings yields no names; fieldCount still counts it.
func parseFieldNames(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var names []string
		if err := gojson.Unmarshal([]byte(trimmed), &names); err == nil && len(names) > 0 {
			return names
		}
		return nil
	}
	if strings.Contains(raw, record.FieldSeparator) {
		return record.SplitFields(raw)
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	if raw != "" {
		return []string{raw}
	}
	return nil
}

// fieldCount extracts the number of fields without fully decoding the
// column. Unknown shapes default to two fields, matching the minimum a
// usable model has.
func fieldCount(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		count := 0
		_, err := jsonparser.ArrayEach([]byte(trimmed), func([]byte, jsonparser.ValueType, int, error) {
			count++
		})
		if err == nil && count > 0 {
			return count
		}
	}
	if strings.Contains(raw, record.FieldSeparator) {
		return strings.Count(raw, record.FieldSeparator) + 1
	}
	if strings.Contains(raw, ",") {
		return strings.Count(raw, ",") + 1
	}
	return minUsableFieldCount
}

func readModel(cur *content.Cursor) (Model, error) {
	var m Model

	id, err := cur.GetString(contract.ModelID)
	if err != nil {
		return m, err
	}
	m.ID, err = strconv.ParseInt(id, 10, 64)
	if err != nil {
		return m, fmt.Errorf("%w: model id %q is not numeric", constants.ErrMalformedRow, id)
	}

	if m.Name, err = cur.GetString(contract.ModelName); err != nil {
		return m, err
	}
	raw, err := cur.GetString(contract.ModelFieldNames)
	if err != nil {
		return m, err
	}
	m.FieldNames = parseFieldNames(raw)
	m.FieldCount = len(m.FieldNames)
	if m.FieldCount == 0 {
		m.FieldCount = fieldCount(raw)
	}

	numCards, err := cur.GetInt64(contract.ModelNumCards)
	if err != nil {
		return m, err
	}
	m.NumCards = int(numCards)

	if m.CSS, err = cur.GetString(contract.ModelCSS); err != nil {
		return m, err
	}
	if m.DeckID, err = cur.GetInt64(contract.ModelDeckID); err != nil {
		return m, err
	}
	sortIdx, err := cur.GetInt64(contract.ModelSortFieldIndex)
	if err != nil {
		return m, err
	}
	m.SortFieldIndex = int(sortIdx)

	modelType, err := cur.GetInt64(contract.ModelType)
	if err != nil {
		return m, err
	}
	m.Type = int(modelType)

	if m.LatexPre, err = cur.GetString(contract.ModelLatexPre); err != nil {
		return m, err
	}
	if m.LatexPost, err = cur.GetString(contract.ModelLatexPost); err != nil {
		return m, err
	}
	return m, nil
}

// ListModels returns every note type sorted by name.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	cur, err := content.Query(c.bridge, contract.ModelsURI).
		SortOrder(contract.ModelName + " ASC").
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return content.Collect(cur, readModel)
}

// GetModel fetches one note type by id.
func (c *Client) GetModel(ctx context.Context, modelID int64) (Model, error) {
	return c.singleModel(ctx, contract.ModelURI(modelID))
}

// CurrentModel fetches the note type the host currently has active.
func (c *Client) CurrentModel(ctx context.Context) (Model, error) {
	return c.singleModel(ctx, contract.CurrentModelURI)
}

func (c *Client) singleModel(ctx context.Context, uri string) (Model, error) {
	cur, err := content.Query(c.bridge, uri).Execute(ctx)
	if err != nil {
		return Model{}, err
	}
	models, err := content.Collect(cur, readModel)
	if err != nil {
		return Model{}, err
	}
	if len(models) == 0 {
		return Model{}, fmt.Errorf("%w: model at %s", constants.ErrNotFound, uri)
	}
	return models[0], nil
}

// FindModelIDByName looks a usable model up by exact name first, then
// case-insensitively. Models with fewer than minFieldCount fields are
// skipped even when the name matches.
func (c *Client) FindModelIDByName(ctx context.Context, name string, minFieldCount int) (int64, bool, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return 0, false, err
	}

	usable := func(m Model) bool {
		return m.usableForNotes() && m.fieldTotal() >= minFieldCount
	}
	for _, m := range models {
		if m.Name == name && usable(m) {
			return m.ID, true, nil
		}
	}
	for _, m := range models {
		if strings.EqualFold(m.Name, name) && usable(m) {
			return m.ID, true, nil
		}
	}
	return 0, false, nil
}

// ResolveModel returns a usable model with the given name, creating a
// basic two-field model when none exists. A create failure that looks
// like a name collision is retried as a lookup once.
func (c *Client) ResolveModel(ctx context.Context, name string) (Model, error) {
	if name == "" {
		return Model{}, invalidInput("model name is empty")
	}

	if id, found, err := c.FindModelIDByName(ctx, name, minUsableFieldCount); err != nil {
		return Model{}, err
	} else if found {
		return c.GetModel(ctx, id)
	}

	id, err := c.AddBasicModel(ctx, name)
	if err == nil {
		return c.GetModel(ctx, id)
	}
	if !isNameConflict(err) {
		return Model{}, fmt.Errorf("create model %q: %w", name, err)
	}

	c.log.Debug("model create collided, re-querying", "name", name)
	id, found, ferr := c.FindModelIDByName(ctx, name, minUsableFieldCount)
	if ferr != nil {
		return Model{}, ferr
	}
	if !found {
		return Model{}, fmt.Errorf("model %q reported as existing but not found: %w", name, err)
	}
	return c.GetModel(ctx, id)
}

// ModelInput describes a custom note type to create. CardNames,
// QuestionFormats and AnswerFormats must have equal lengths, one entry
// per generated card.
type ModelInput struct {
	Name            string   `validate:"required,max=100"`
	Fields          []string `validate:"required,min=1,dive,required"`
	CardNames       []string `validate:"required,min=1"`
	QuestionFormats []string `validate:"required,min=1"`
	AnswerFormats   []string `validate:"required,min=1"`
	CSS             string
	DeckID          int64 `validate:"gte=0"`
	SortFieldIndex  int   `validate:"gte=0"`
}

// AddCustomModel creates a note type and fills in its card templates.
// A template update the host ignores is logged, not fatal, because the
// model itself already exists at that point.
func (c *Client) AddCustomModel(ctx context.Context, in ModelInput) (int64, error) {
	if err := validateStruct(in); err != nil {
		return 0, err
	}
	if len(in.QuestionFormats) != len(in.CardNames) || len(in.AnswerFormats) != len(in.CardNames) {
		return 0, invalidInput("card names, question formats and answer formats must have equal lengths")
	}
	if in.SortFieldIndex >= len(in.Fields) {
		return 0, invalidInput("sort field index %d out of range", in.SortFieldIndex)
	}

	values := bridge.Values{
		contract.ModelName:       in.Name,
		contract.ModelFieldNames: record.JoinFields(in.Fields),
		contract.ModelNumCards:   int64(len(in.CardNames)),
	}
	if in.CSS != "" {
		values[contract.ModelCSS] = in.CSS
	}
	if in.DeckID > 0 {
		values[contract.ModelDeckID] = in.DeckID
	}
	if in.SortFieldIndex > 0 {
		values[contract.ModelSortFieldIndex] = int64(in.SortFieldIndex)
	}

	modelID, err := content.Insert(c.bridge, contract.ModelsURI).Values(values).Execute(ctx)
	if err != nil {
		return 0, err
	}

	for ord := range in.CardNames {
		updated, err := content.Update(c.bridge, contract.ModelTemplateURI(modelID, ord)).
			Values(bridge.Values{
				contract.TemplateName:        in.CardNames[ord],
				contract.TemplateQuestionFmt: in.QuestionFormats[ord],
				contract.TemplateAnswerFmt:   in.AnswerFormats[ord],
			}).
			Execute(ctx)
		if err != nil {
			return 0, fmt.Errorf("set template %d of model %d: %w", ord, modelID, err)
		}
		if updated == 0 {
			c.log.Warn("host ignored template update", "model_id", modelID, "ord", ord)
		}
	}

	c.log.Info("model created", "model_id", modelID, "name", in.Name, "cards", len(in.CardNames))
	return modelID, nil
}

// AddBasicModel creates a front/back model with a single card.
func (c *Client) AddBasicModel(ctx context.Context, name string) (int64, error) {
	return c.AddCustomModel(ctx, ModelInput{
		Name:            name,
		Fields:          []string{"Front", "Back"},
		CardNames:       []string{"Card 1"},
		QuestionFormats: []string{"{{Front}}"},
		AnswerFormats:   []string{"{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}"},
	})
}

// AddBasicTwoWayModel creates a front/back model that also generates the
// reversed card.
func (c *Client) AddBasicTwoWayModel(ctx context.Context, name string) (int64, error) {
	return c.AddCustomModel(ctx, ModelInput{
		Name:            name,
		Fields:          []string{"Front", "Back"},
		CardNames:       []string{"Card 1", "Card 2"},
		QuestionFormats: []string{"{{Front}}", "{{Back}}"},
		AnswerFormats: []string{
			"{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}",
			"{{FrontSide}}\n\n<hr id=answer>\n\n{{Front}}",
		},
	})
}
