package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Bundled(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 120, b.Len())

	byCat := b.CategoryQuestionIDs()
	assert.Len(t, byCat[string(CategoryPrinciples)], 16)
	assert.Len(t, byCat[string(CategorySystem)], 39)
	assert.Len(t, byCat[string(CategoryRights)], 13)
	assert.Len(t, byCat[string(CategoryColonial)], 16)
	assert.Len(t, byCat[string(Category1800s)], 9)
	assert.Len(t, byCat[string(CategoryRecent)], 12)
	assert.Len(t, byCat[string(CategorySymbols)], 15)

	byMain := b.MainCategoryQuestionIDs()
	assert.Len(t, byMain[string(MainGovernment)], 68)
	assert.Len(t, byMain[string(MainHistory)], 37)
	assert.Len(t, byMain[string(MainCivics)], 15)
}

func TestBank_Get(t *testing.T) {
	b := MustLoad()
	q, ok := b.Get("GOV-P01")
	require.True(t, ok)
	assert.Equal(t, "What is the supreme law of the land?", q.QuestionEN)
	assert.Equal(t, "the Constitution", q.CorrectAnswer().TextEN)
	assert.True(t, q.IsCorrect("the Constitution"))
	assert.False(t, q.IsCorrect("the Declaration of Independence"))

	_, ok = b.Get("NOPE")
	assert.False(t, ok)
}

func TestBank_AllReturnsCopy(t *testing.T) {
	b := MustLoad()
	all := b.All()
	all[0].ID = "mutated"
	_, ok := b.Get("GOV-P01")
	assert.True(t, ok)
	assert.NotEqual(t, "mutated", b.All()[0].ID)
}

func TestNew_Validation(t *testing.T) {
	good := Question{
		ID:       "Q1",
		Category: CategorySymbols,
		Answers:  []Answer{{TextEN: "a", Correct: true}, {TextEN: "b"}},
	}

	tests := []struct {
		name    string
		qs      []Question
		wantErr string
	}{
		{"valid", []Question{good}, ""},
		{"duplicate", []Question{good, good}, "duplicate question ID"},
		{"unknown category", []Question{{ID: "Q2", Category: "Geography", Answers: good.Answers}}, "unknown category"},
		{"no correct answer", []Question{{ID: "Q3", Category: CategorySymbols, Answers: []Answer{{TextEN: "a"}}}}, "0 correct answers"},
		{"two correct answers", []Question{{ID: "Q4", Category: CategorySymbols, Answers: []Answer{{Correct: true}, {Correct: true}}}}, "2 correct answers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.qs)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParse_BadJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)
}

func TestMainCategoryOf(t *testing.T) {
	assert.Equal(t, MainGovernment, MainCategoryOf(CategoryRights))
	assert.Equal(t, MainHistory, MainCategoryOf(Category1800s))
	assert.Equal(t, MainCivics, MainCategoryOf(CategorySymbols))
	assert.Equal(t, MainCivics, MainCategoryOf("unknown"))
}

func TestCategoryName(t *testing.T) {
	assert.Equal(t, "1800s", Category1800s.Name().EN)
	assert.Equal(t, "၁၈၀၀ ပြည့်နှစ်များ", Category1800s.Name().MY)
	assert.Equal(t, "အမေရိကန်သမိုင်း", MainCategoryName(MainHistory).MY)
	assert.Len(t, AllCategories(), 7)
}

func TestParseCategory(t *testing.T) {
	assert.Len(t, ParseCategory("American Government"), 3)
	assert.Equal(t, []Category{CategorySymbols}, ParseCategory("Civics: Symbols and Holidays"))
	assert.Nil(t, ParseCategory("Geography"))
}
