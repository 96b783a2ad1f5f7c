package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func activeState() *SearchState {
	s := NewSearchState()
	s.Mode = ModeImage
	s.Query = "wireless headphones"
	s.Category = "Mobile"
	s.SearchPerformed = true
	s.Results = []Product{{ID: "p1", Title: "Headphones"}}
	s.Recommendation = &Recommendation{Title: "Headphones"}
	s.RecommendationQuery = "wireless headphones"
	s.PreviewID = "preview-1"
	s.ImageMatchCount = 1
	return s
}

func TestSetModeClearsEverySearchField(t *testing.T) {
	for _, mode := range []Mode{ModePlain, ModeAI, ModeImage} {
		s := activeState()

		dropped := s.SetMode(mode)

		assert.Equal(t, mode, s.Mode)
		assert.Equal(t, "preview-1", dropped, "the old preview must be handed back for release")
		assert.Empty(t, s.Query)
		assert.False(t, s.SearchPerformed)
		assert.Nil(t, s.Results)
		assert.Nil(t, s.Recommendation)
		assert.Empty(t, s.RecommendationQuery)
		assert.Empty(t, s.PreviewID)
		assert.Zero(t, s.ImageMatchCount)
		assert.Equal(t, "Mobile", s.Category, "mode switches keep the selected category")
	}
}

func TestToggleCategorySelectsAndClears(t *testing.T) {
	s := NewSearchState()

	s.ToggleCategory("Books")
	assert.Equal(t, "Books", s.Category)

	// Same category clicked again clears the filter, case-insensitively.
	s.ToggleCategory("books")
	assert.Empty(t, s.Category)

	s.ToggleCategory("Books")
	s.ToggleCategory("Fashion")
	assert.Equal(t, "Fashion", s.Category)
}

func TestToggleCategoryDropsActiveSearch(t *testing.T) {
	s := activeState()

	dropped := s.ToggleCategory("Books")

	assert.Equal(t, "preview-1", dropped)
	assert.False(t, s.SearchActive())
	assert.Nil(t, s.Results)
	assert.Nil(t, s.Recommendation)
}

func TestSetCategoryFromURL(t *testing.T) {
	s := activeState()

	// Same value is a no-op: nothing to release, nothing cleared.
	dropped, changed := s.SetCategory("mobile")
	assert.False(t, changed)
	assert.Empty(t, dropped)
	assert.True(t, s.SearchActive())

	dropped, changed = s.SetCategory("Books")
	assert.True(t, changed)
	assert.Equal(t, "preview-1", dropped)
	assert.Equal(t, "Books", s.Category)
	assert.False(t, s.SearchActive())

	_, changed = s.SetCategory("")
	assert.True(t, changed)
	assert.Empty(t, s.Category)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	s := NewSearchState()

	first := s.BeginSearch("laptop")
	second := s.BeginSearch("laptop sleeve")
	assert.Greater(t, second, first)

	fresh := []Product{{ID: "sleeve"}}
	assert.True(t, s.AcceptResults(second, fresh))

	// The slow first response lands late and must not win.
	assert.False(t, s.AcceptResults(first, []Product{{ID: "laptop"}}))
	assert.Equal(t, fresh, s.Results)
}

func TestStaleRecommendationIsDiscarded(t *testing.T) {
	s := NewSearchState()

	first := s.BeginSearch("camping gear")
	second := s.BeginSearch("camping tent")

	assert.True(t, s.AcceptRecommendation(second, &Recommendation{Title: "Tent"}, "camping tent"))
	assert.False(t, s.AcceptRecommendation(first, &Recommendation{Title: "Stove"}, "camping gear"))
	assert.Equal(t, "Tent", s.Recommendation.Title)
	assert.Equal(t, "camping tent", s.RecommendationQuery)
}

func TestAttachPreviewHandsBackPreviousResource(t *testing.T) {
	s := NewSearchState()

	assert.Empty(t, s.AttachPreview("a"))
	assert.Equal(t, ModeImage, s.Mode)

	dropped := s.AttachPreview("b")
	assert.Equal(t, "a", dropped)
	assert.Equal(t, "b", s.PreviewID)
}

func TestAcceptImageResultsKeepsReceivedOrder(t *testing.T) {
	s := NewSearchState()
	s.AttachPreview("a")
	seq := s.BeginSearch("")

	ranked := []Product{
		{ID: "best", SimilarityScore: 0.91},
		{ID: "second", SimilarityScore: 0.77},
	}
	assert.True(t, s.AcceptImageResults(seq, ranked))
	assert.Equal(t, ranked, s.Results)
	assert.Equal(t, 2, s.ImageMatchCount)
	assert.True(t, s.SearchPerformed)
}

func TestClearImageSearchRestoresCatalogView(t *testing.T) {
	s := activeState()

	dropped := s.ClearImageSearch()

	assert.Equal(t, "preview-1", dropped)
	assert.Equal(t, ModePlain, s.Mode)
	assert.False(t, s.SearchActive())
	assert.Nil(t, s.Results)
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeAI, ParseMode("ai"))
	assert.Equal(t, ModeImage, ParseMode("image"))
	assert.Equal(t, ModePlain, ParseMode("plain"))
	assert.Equal(t, ModePlain, ParseMode("garbage"))
	assert.Equal(t, ModePlain, ParseMode(""))
}

func TestProductKeyPrefersID(t *testing.T) {
	assert.Equal(t, "abc", Product{ID: "abc", MongoID: "0xf"}.Key())
	assert.Equal(t, "0xf", Product{MongoID: "0xf"}.Key())
}
