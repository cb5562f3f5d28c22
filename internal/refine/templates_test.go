package refine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRule_Precedence(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Breakfast Ideas.pdf", "breakfast"},
		{"LUNCH Ideas.pdf", "lunch"},
		{"Dinner Ideas - Mains_1.pdf", "dinner-main"},
		{"Dinner Ideas - Sides_2.pdf", "dinner-side"},
		{"Dinner main and side.pdf", "dinner-main"},
		{"Dinner Ideas.pdf", "generic"},
		{"Recipe Book.pdf", "recipe"},
		{"Food Safety.pdf", "food"},
		{"Breakfast recipe food.pdf", "breakfast"},
		{"Learn Acrobat - Fill and Sign.pdf", "generic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContextRule(tt.name))
		})
	}
}

func TestContextText_InterpolatesLowercased(t *testing.T) {
	got := ContextText("Dinner Ideas - Sides.pdf", "Food Contractor", "Prepare a Vegetarian Buffet")
	assert.Equal(t,
		"Comprehensive side dish collection and preparation methods for food contractor executing prepare a vegetarian buffet. Includes complementary vegetables, starches, and accompaniments that enhance the main course while meeting vegetarian and gluten-free requirements.",
		got)

	generic := ContextText("random.pdf", "HR", "Onboard")
	assert.True(t, strings.HasPrefix(generic, "Important information and practical guidelines for hr working on onboard."))
}

func TestContextText_RecipeAndFoodShareTemplate(t *testing.T) {
	assert.Equal(t, ContextText("recipe.pdf", "p", "j"), ContextText("food.pdf", "p", "j"))
}

func TestClassifyDocument(t *testing.T) {
	assert.Equal(t, DomainFood, ClassifyDocument("Meal Prep.pdf"))
	assert.Equal(t, DomainTravel, ClassifyDocument("City Guide.pdf"))
	assert.Equal(t, DomainResearch, ClassifyDocument("Paper on GNNs.pdf"))
	assert.Equal(t, DomainBusiness, ClassifyDocument("Market Strategy.pdf"))
	assert.Equal(t, DomainTechnology, ClassifyDocument("Software Notes.pdf"))
	assert.Equal(t, DomainGeneral, ClassifyDocument("Misc.pdf"))
	// First matching domain wins per document.
	assert.Equal(t, DomainFood, ClassifyDocument("Food travel guide.pdf"))
}

func TestClassifyDocuments_Precedence(t *testing.T) {
	assert.Equal(t, DomainFood, ClassifyDocuments([]string{"Trip.pdf", "Lunch.pdf"}))
	assert.Equal(t, DomainTravel, ClassifyDocuments([]string{"Paper.pdf", "Trip.pdf"}))
	assert.Equal(t, DomainResearch, ClassifyDocuments([]string{"Market.pdf", "Study.pdf"}))
	assert.Equal(t, DomainGeneral, ClassifyDocuments([]string{"Market.pdf", "Software.pdf"}))
	assert.Equal(t, DomainGeneral, ClassifyDocuments(nil))
}

func TestPlaceholders_DomainSets(t *testing.T) {
	tests := []struct {
		docs      []string
		wantPages []int
		prefix    string
	}{
		{[]string{"Breakfast.pdf"}, []int{1, 2, 3}, "This section provides comprehensive information relevant to"},
		{[]string{"Trip.pdf"}, []int{1, 2}, "This section provides comprehensive information relevant to"},
		{[]string{"Study.pdf"}, []int{1, 3}, "Research methodology and findings"},
		{[]string{"Notes.pdf"}, []int{1, 2, 3}, "Essential information and guidelines"},
	}
	for _, tt := range tests {
		t.Run(tt.docs[0], func(t *testing.T) {
			got := Placeholders(tt.docs, "Persona", "Job")
			require.Len(t, got, len(tt.wantPages))
			for i, p := range tt.wantPages {
				assert.Equal(t, p, got[i].PageNumber)
			}
			assert.True(t, strings.HasPrefix(got[0].RefinedText, tt.prefix))
			assert.Equal(t, tt.docs[0], got[0].Document)
			assert.Equal(t, "Document 2", got[1].Document)
		})
	}
}

func TestPlaceholders_FoodMentionsCatering(t *testing.T) {
	got := Placeholders([]string{"Dinner.pdf", "Lunch.pdf", "Sides.pdf"}, "Food Contractor", "Corporate Buffet")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Dinner.pdf", "Lunch.pdf", "Sides.pdf"}, []string{got[0].Document, got[1].Document, got[2].Document})
	assert.Contains(t, got[2].RefinedText, "food contractor engaged in corporate buffet")
	assert.Contains(t, got[2].RefinedText, "buffet service logistics")
}

func TestPlaceholders_DocumentFallbackNames(t *testing.T) {
	got := Placeholders(nil, "p", "j")
	for i, s := range got {
		assert.Equal(t, fmt.Sprintf("Document %d", i+1), s.Document)
	}
}
