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

func TestParseFieldNames(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{`["Front","Back"]`, []string{"Front", "Back"}},
		{"Front\x1fBack\x1fExtra", []string{"Front", "Back", "Extra"}},
		{"Front, Back", []string{"Front", "Back"}},
		{"Front", []string{"Front"}},
		{`["Front",7,"Back"]`, nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseFieldNames(tt.raw), "raw %q", tt.raw)
	}
}

func TestFieldCount(t *testing.T) {
	assert.Equal(t, 3, fieldCount(`["a","b","c"]`))
	assert.Equal(t, 3, fieldCount(`["a",7,"c"]`))
	assert.Equal(t, 2, fieldCount("Front\x1fBack"))
	assert.Equal(t, 4, fieldCount("a, b, c, d"))
	assert.Equal(t, 2, fieldCount("whatever"))
}

func TestFindModelIDByNameCountsUndecodableFieldNames(t *testing.T) {
	cols := []string{
		contract.ModelID, contract.ModelName, contract.ModelFieldNames,
		contract.ModelNumCards, contract.ModelCSS, contract.ModelDeckID,
		contract.ModelSortFieldIndex, contract.ModelType,
		contract.ModelLatexPre, contract.ModelLatexPost,
	}
	row := []any{
		int64(42), "Odd", `["Word",7,"Reading"]`,
		int64(1), "", int64(1), int64(0), int64(0), "", "",
	}
	b := &mock.Bridge{
		QueryFunc: func(string, []string, string, []string, string) (bridge.RowSet, error) {
			return mock.NewRowSet(cols, row), nil
		},
	}
	c, err := New(b)
	require.NoError(t, err)
	ctx := context.Background()

	models, err := c.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Nil(t, models[0].FieldNames)
	assert.Equal(t, 3, models[0].FieldCount)

	id, found, err := c.FindModelIDByName(ctx, "Odd", 3)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(42), id)

	_, found, err = c.FindModelIDByName(ctx, "Odd", 4)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListModelsIncludesBasic(t *testing.T) {
	c, _ := newTestClient(t)

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, int64(contract.DefaultBasicModelID), models[0].ID)
	assert.Equal(t, contract.DefaultModelName, models[0].Name)
	assert.Equal(t, []string{"Front", "Back"}, models[0].FieldNames)
	assert.Equal(t, 1, models[0].NumCards)
}

func TestCurrentModel(t *testing.T) {
	c, _ := newTestClient(t)

	m, err := c.CurrentModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(contract.DefaultBasicModelID), m.ID)
}

func TestGetModelNotFound(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.GetModel(context.Background(), 999)
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrNotFound)
}

func TestAddCustomModel(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.AddCustomModel(ctx, ModelInput{
		Name:            "Vocab",
		Fields:          []string{"Word", "Reading", "Meaning"},
		CardNames:       []string{"Recognition", "Recall"},
		QuestionFormats: []string{"{{Word}}", "{{Meaning}}"},
		AnswerFormats:   []string{"{{Reading}}<br>{{Meaning}}", "{{Word}}"},
		CSS:             ".card { font-size: 24px; }",
	})
	require.NoError(t, err)

	m, err := c.GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Vocab", m.Name)
	assert.Equal(t, []string{"Word", "Reading", "Meaning"}, m.FieldNames)
	assert.Equal(t, 2, m.NumCards)
	assert.Equal(t, ".card { font-size: 24px; }", m.CSS)
}

func TestAddCustomModelMismatchedTemplates(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.AddCustomModel(context.Background(), ModelInput{
		Name:            "Broken",
		Fields:          []string{"Front", "Back"},
		CardNames:       []string{"Card 1", "Card 2"},
		QuestionFormats: []string{"{{Front}}"},
		AnswerFormats:   []string{"{{Back}}"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrInvalidInput)
}

func TestAddCustomModelSortFieldOutOfRange(t *testing.T) {
	c, _ := newTestClient(t)

	_, err := c.AddCustomModel(context.Background(), ModelInput{
		Name:            "Broken",
		Fields:          []string{"Front", "Back"},
		CardNames:       []string{"Card 1"},
		QuestionFormats: []string{"{{Front}}"},
		AnswerFormats:   []string{"{{Back}}"},
		SortFieldIndex:  2,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, constants.ErrInvalidInput)
}

func TestAddBasicTwoWayModel(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.AddBasicTwoWayModel(ctx, "Basic Reversed")
	require.NoError(t, err)

	m, err := c.GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumCards)
	assert.Equal(t, []string{"Front", "Back"}, m.FieldNames)
}

func TestFindModelIDByNameSkipsTooFewFields(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.AddCustomModel(ctx, ModelInput{
		Name:            "Wide",
		Fields:          []string{"A", "B", "C", "D"},
		CardNames:       []string{"Card 1"},
		QuestionFormats: []string{"{{A}}"},
		AnswerFormats:   []string{"{{B}}"},
	})
	require.NoError(t, err)

	// Basic has two fields, so it never satisfies a four-field minimum.
	_, found, err := c.FindModelIDByName(ctx, contract.DefaultModelName, 4)
	require.NoError(t, err)
	assert.False(t, found)

	id, found, err := c.FindModelIDByName(ctx, "wide", 4)
	require.NoError(t, err)
	require.True(t, found)

	m, err := c.GetModel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Wide", m.Name)
}

func TestResolveModelFindsExisting(t *testing.T) {
	c, _ := newTestClient(t)

	m, err := c.ResolveModel(context.Background(), contract.DefaultModelName)
	require.NoError(t, err)
	assert.Equal(t, int64(contract.DefaultBasicModelID), m.ID)
}

func TestResolveModelCreatesBasicWhenAbsent(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	m, err := c.ResolveModel(ctx, "My Deck Model")
	require.NoError(t, err)
	assert.Equal(t, "My Deck Model", m.Name)
	assert.Equal(t, []string{"Front", "Back"}, m.FieldNames)
	assert.Equal(t, 1, m.NumCards)

	again, err := c.ResolveModel(ctx, "My Deck Model")
	require.NoError(t, err)
	assert.Equal(t, m.ID, again.ID)
}
