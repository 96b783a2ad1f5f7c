package models

import "strings"

// Mode selects which search flavor governs the displayed result set.
type Mode string

const (
	ModePlain Mode = "plain"
	ModeAI    Mode = "ai"
	ModeImage Mode = "image"
)

// ParseMode maps a form value onto a known mode, defaulting to plain.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeAI:
		return ModeAI
	case ModeImage:
		return ModeImage
	default:
		return ModePlain
	}
}

// SearchState is the consolidated view-controller state for one browser
// session. Every user interaction goes through one of the transition
// methods below so the clear-on-switch invariants hold mechanically
// instead of by call-site discipline.
//
// Transitions that can orphan an image preview return the dropped
// preview ID; the caller owns releasing it. That keeps the release on
// every exit path without the state machine knowing about storage.
type SearchState struct {
	Mode            Mode      `json:"mode"`
	Query           string    `json:"query"`
	Category        string    `json:"category"`
	SearchPerformed bool      `json:"search_performed"`
	Results         []Product `json:"results,omitempty"`

	Recommendation      *Recommendation `json:"recommendation,omitempty"`
	RecommendationQuery string          `json:"recommendation_query,omitempty"`

	PreviewID       string `json:"preview_id,omitempty"`
	ImageMatchCount int    `json:"image_match_count"`

	// Seq is bumped for every network command issued on behalf of this
	// state; AcceptedSeq records the newest completion applied. A late
	// completion with a smaller sequence number is discarded so a slow
	// early response can never overwrite a fresher one.
	Seq         uint64 `json:"seq"`
	AcceptedSeq uint64 `json:"accepted_seq"`
}

// NewSearchState returns the idle state a session starts in.
func NewSearchState() *SearchState {
	return &SearchState{Mode: ModePlain}
}

// SearchActive reports whether any text/AI/image search currently
// supersedes category filtering.
func (s *SearchState) SearchActive() bool {
	return s.SearchPerformed || s.Recommendation != nil || s.PreviewID != ""
}

// SetMode switches the search mode and performs the full reset the
// three modes rely on to never show stale mixed state. The selected
// category survives; everything search-related is cleared.
func (s *SearchState) SetMode(m Mode) (droppedPreview string) {
	s.Mode = m
	return s.clearSearch()
}

// ToggleCategory selects the category, or clears it when the already
// selected one is clicked again. Any active search state is dropped so
// the category filter is not masked by stale results.
func (s *SearchState) ToggleCategory(name string) (droppedPreview string) {
	if strings.EqualFold(s.Category, name) {
		s.Category = ""
	} else {
		s.Category = name
	}
	return s.clearSearch()
}

// SetCategory applies a category coming from the URL parameter. Setting
// the already selected category changes nothing; anything else behaves
// like a category click (empty clears the filter).
func (s *SearchState) SetCategory(name string) (droppedPreview string, changed bool) {
	if strings.EqualFold(s.Category, name) {
		return "", false
	}
	s.Category = name
	return s.clearSearch(), true
}

// ClearSearch resets all search-derived state while keeping mode and
// category, restoring the plain catalog view.
func (s *SearchState) ClearSearch() (droppedPreview string) {
	return s.clearSearch()
}

func (s *SearchState) clearSearch() (droppedPreview string) {
	s.Query = ""
	s.SearchPerformed = false
	s.Results = nil
	s.Recommendation = nil
	s.RecommendationQuery = ""
	s.ImageMatchCount = 0
	droppedPreview = s.PreviewID
	s.PreviewID = ""
	return droppedPreview
}

// BeginSearch records an outgoing search for query and hands back the
// sequence number to present on completion.
func (s *SearchState) BeginSearch(query string) uint64 {
	s.Query = query
	s.SearchPerformed = true
	s.Seq++
	return s.Seq
}

// AcceptResults applies a completed search unless a newer completion
// already landed. Returns false when the response was stale.
func (s *SearchState) AcceptResults(seq uint64, products []Product) bool {
	if seq < s.AcceptedSeq {
		return false
	}
	s.AcceptedSeq = seq
	s.Results = products
	return true
}

// AcceptRecommendation applies a completed AI recommendation unless a
// newer completion already landed.
func (s *SearchState) AcceptRecommendation(seq uint64, rec *Recommendation, query string) bool {
	if seq < s.AcceptedSeq {
		return false
	}
	s.AcceptedSeq = seq
	s.Recommendation = rec
	s.RecommendationQuery = query
	s.Results = nil
	return true
}

// AttachPreview enters image mode with a freshly stored preview,
// returning any previous preview so the caller can release it.
func (s *SearchState) AttachPreview(previewID string) (droppedPreview string) {
	droppedPreview = s.PreviewID
	s.PreviewID = previewID
	s.Mode = ModeImage
	s.Query = ""
	s.Recommendation = nil
	s.RecommendationQuery = ""
	return droppedPreview
}

// AcceptImageResults applies a completed reverse-image search. The
// received order is preserved; ranking is the backend's business.
func (s *SearchState) AcceptImageResults(seq uint64, products []Product) bool {
	if seq < s.AcceptedSeq {
		return false
	}
	s.AcceptedSeq = seq
	s.Results = products
	s.ImageMatchCount = len(products)
	s.SearchPerformed = true
	return true
}

// ClearImageSearch leaves image mode and restores the catalog view.
func (s *SearchState) ClearImageSearch() (droppedPreview string) {
	droppedPreview = s.clearSearch()
	s.Mode = ModePlain
	return droppedPreview
}
