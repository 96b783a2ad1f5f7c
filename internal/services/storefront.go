package services

import (
	"bytes"
	"context"
	"errors"
	"hash/fnv"
	"log"
	"math/rand"
	"strings"

	"shopsphere-web/internal/backend"
	"shopsphere-web/internal/models"
	"shopsphere-web/internal/preview"
	"shopsphere-web/internal/session"
	"shopsphere-web/pkg/cache"
)

const (
	// imageSearchTopK caps how many ranked matches the backend returns.
	imageSearchTopK = 10
	// featuredSampleSize bounds the unfiltered landing page grid.
	featuredSampleSize = 50
	relatedProductCap  = 8
)

// StorefrontService is the Search & Catalog View Controller: it owns the
// per-session state transitions and decides which backend call each user
// action turns into.
type StorefrontService struct {
	backend  *backend.Client
	cache    *cache.RedisCache
	sessions *session.Store
	previews *preview.Store
}

func NewStorefrontService(b *backend.Client, c *cache.RedisCache, sessions *session.Store, previews *preview.Store) *StorefrontService {
	return &StorefrontService{
		backend:  b,
		cache:    c,
		sessions: sessions,
		previews: previews,
	}
}

// Catalog returns the full product list, served from cache when warm.
// A backend failure is non-fatal: the storefront renders empty.
func (s *StorefrontService) Catalog(ctx context.Context) []models.Product {
	if s.cache.IsAvailable() {
		if cached, err := s.cache.GetCatalog(); err == nil && cached != nil {
			return cached
		}
	}

	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		log.Printf("Failed to load catalog: %v", err)
		return nil
	}

	if s.cache.IsAvailable() {
		if err := s.cache.SetCatalog(products); err != nil {
			log.Printf("Failed to cache catalog: %v", err)
		}
	}
	return products
}

// Landing assembles the landing page view for a session, applying the
// derived filtering rules: an active search owns the displayed set,
// otherwise the selected category filters the catalog, otherwise the
// session's featured sample shows.
func (s *StorefrontService) Landing(ctx context.Context, sessionID, message string) *LandingView {
	unlock := s.sessions.Lock(sessionID)
	state := s.sessions.Get(sessionID)
	unlock()

	var displayed []models.Product
	switch {
	case state.SearchActive():
		displayed = state.Results
	case state.Category != "":
		displayed = filterByCategory(s.Catalog(ctx), state.Category)
	default:
		displayed = s.featuredSample(sessionID, s.Catalog(ctx))
	}

	return buildLandingView(state, displayed, message)
}

func filterByCategory(products []models.Product, category string) []models.Product {
	filtered := make([]models.Product, 0)
	for _, p := range products {
		if strings.EqualFold(p.Category, category) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// featuredSample shuffles the catalog deterministically per session so
// the "random" front page does not reshuffle on every toggle.
func (s *StorefrontService) featuredSample(sessionID string, catalog []models.Product) []models.Product {
	if len(catalog) <= featuredSampleSize {
		return catalog
	}

	h := fnv.New64a()
	h.Write([]byte(sessionID))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	sample := make([]models.Product, 0, featuredSampleSize)
	for _, i := range rng.Perm(len(catalog))[:featuredSampleSize] {
		sample = append(sample, catalog[i])
	}
	return sample
}

// SetMode switches the search mode, resetting all search-derived state.
func (s *StorefrontService) SetMode(sessionID string, mode models.Mode) {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	state := s.sessions.Get(sessionID)
	s.previews.Release(state.SetMode(mode))
	s.sessions.Save(sessionID, state)
}

// ToggleCategory selects or clears the category and drops any active
// search so the filter is not masked by stale results. It returns the
// category that ended up selected ("" when the click cleared it).
func (s *StorefrontService) ToggleCategory(sessionID, category string) string {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	state := s.sessions.Get(sessionID)
	s.previews.Release(state.ToggleCategory(category))
	s.sessions.Save(sessionID, state)
	return state.Category
}

// SetCategory syncs the selected category from the URL parameter.
func (s *StorefrontService) SetCategory(sessionID, category string) {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	state := s.sessions.Get(sessionID)
	dropped, changed := state.SetCategory(category)
	if !changed {
		return
	}
	s.previews.Release(dropped)
	s.sessions.Save(sessionID, state)
}

// ClearSearch restores the catalog view, keeping mode and category.
func (s *StorefrontService) ClearSearch(sessionID string) {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	state := s.sessions.Get(sessionID)
	s.previews.Release(state.ClearSearch())
	s.sessions.Save(sessionID, state)
}

// Message keys for recoverable failures the user must be told about.
// Handlers map them onto the inline wording.
const (
	MsgAIFailed  = "ai-failed"
	MsgNotImage  = "not-image"
	MsgNotReady  = "not-ready"
	MsgNoMatches = "no-matches"
	MsgImageFail = "image-failed"
)

// SubmitQuery runs the text search for the session's current mode.
// It returns navigate=true when the AI flow should move to the results
// view, and a message key for recoverable failures.
//
// The session lock is dropped while the backend call is in flight; the
// sequence number taken under the lock decides afterwards whether the
// completion may still be applied.
func (s *StorefrontService) SubmitQuery(ctx context.Context, sessionID, query string) (navigate bool, message string) {
	query = strings.TrimSpace(query)

	unlock := s.sessions.Lock(sessionID)
	state := s.sessions.Get(sessionID)

	if query == "" {
		unlock()
		return false, "" // Nothing to search for
	}

	// A text search supersedes any image search in progress.
	if state.Mode == models.ModeImage {
		s.previews.Release(state.ClearImageSearch())
	}

	mode := state.Mode
	seq := state.BeginSearch(query)
	s.sessions.Save(sessionID, state)
	unlock()

	if mode == models.ModeAI {
		return s.completeRecommendation(ctx, sessionID, seq, query)
	}
	return false, s.completeKeywordSearch(ctx, sessionID, seq, query)
}

func (s *StorefrontService) completeKeywordSearch(ctx context.Context, sessionID string, seq uint64, query string) string {
	products, err := s.backend.SimpleSearch(ctx, query)
	if err != nil {
		log.Printf("Keyword search failed for %q: %v", query, err)
		products = nil
	}

	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	state := s.sessions.Get(sessionID)
	if !state.AcceptResults(seq, products) {
		log.Printf("Discarded stale search response (seq %d) for session %s", seq, sessionID)
		return ""
	}
	s.sessions.Save(sessionID, state)
	return ""
}

func (s *StorefrontService) completeRecommendation(ctx context.Context, sessionID string, seq uint64, query string) (bool, string) {
	rec, err := s.backend.Recommend(ctx, query)

	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	state := s.sessions.Get(sessionID)
	if err != nil {
		log.Printf("AI recommendation failed for %q: %v", query, err)
		if state.AcceptRecommendation(seq, nil, "") {
			s.sessions.Save(sessionID, state)
		}
		return false, MsgAIFailed
	}

	if !state.AcceptRecommendation(seq, rec, query) {
		log.Printf("Discarded stale recommendation (seq %d) for session %s", seq, sessionID)
		return false, ""
	}
	s.sessions.Save(sessionID, state)
	return true, ""
}

// ImageSearch validates and stores the uploaded image, enters image
// mode, and runs the reverse search. A non-image upload is rejected
// before any state changes or network calls happen.
func (s *StorefrontService) ImageSearch(ctx context.Context, sessionID, filename string, data []byte) error {
	previewID, err := s.previews.Put(data)
	if err != nil {
		return err
	}

	unlock := s.sessions.Lock(sessionID)
	state := s.sessions.Get(sessionID)
	s.previews.Release(state.AttachPreview(previewID))
	seq := state.BeginSearch("")
	s.sessions.Save(sessionID, state)
	unlock()

	products, searchErr := s.backend.ReverseImageSearch(ctx, filename, bytes.NewReader(data), imageSearchTopK)

	unlock = s.sessions.Lock(sessionID)
	defer unlock()

	state = s.sessions.Get(sessionID)
	if searchErr != nil {
		log.Printf("Reverse image search failed: %v", searchErr)
		products = nil
	}
	if !state.AcceptImageResults(seq, products) {
		// A newer request owns the session now; its outcome is the one
		// the user sees, so this completion's error is dropped with it.
		log.Printf("Discarded stale image search response (seq %d) for session %s", seq, sessionID)
		return nil
	}
	s.sessions.Save(sessionID, state)
	return searchErr
}

// ClearImageSearch releases the preview and restores the catalog view.
func (s *StorefrontService) ClearImageSearch(sessionID string) {
	unlock := s.sessions.Lock(sessionID)
	defer unlock()

	state := s.sessions.Get(sessionID)
	s.previews.Release(state.ClearImageSearch())
	s.sessions.Save(sessionID, state)
}

// RecommendationView returns the AI results page model, or nil when the
// session holds no recommendation (direct link, reload after expiry).
func (s *StorefrontService) RecommendationView(ctx context.Context, sessionID string) *RecommendationView {
	unlock := s.sessions.Lock(sessionID)
	state := s.sessions.Get(sessionID)
	unlock()

	if state.Recommendation == nil {
		return nil
	}

	related := s.featuredSample(sessionID, s.Catalog(ctx))
	if len(related) > relatedProductCap {
		related = related[:relatedProductCap]
	}
	views := make([]ProductView, 0, len(related))
	for _, p := range related {
		views = append(views, newProductView(p, false))
	}

	return buildRecommendationView(state, views)
}

// ProductByID looks a product up in the catalog.
func (s *StorefrontService) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	for _, p := range s.Catalog(ctx) {
		if p.Key() == id {
			return &p, nil
		}
	}
	return nil, backend.ErrNotFound
}

// OpenPreview serves a stored preview's bytes for rendering.
func (s *StorefrontService) OpenPreview(id string) ([]byte, string, error) {
	return s.previews.Open(id)
}

// EndSession is the teardown path: the preview resource is released and
// the state discarded, matching component unmount in the browser.
func (s *StorefrontService) EndSession(sessionID string) {
	unlock := s.sessions.Lock(sessionID)
	state := s.sessions.Get(sessionID)
	s.previews.Release(state.PreviewID)
	unlock()
	s.sessions.Delete(sessionID)
}

// ImageSearchReady proxies the backend readiness probe.
func (s *StorefrontService) ImageSearchReady(ctx context.Context) bool {
	st, err := s.backend.Status(ctx)
	if err != nil {
		log.Printf("Backend status check failed: %v", err)
		return false
	}
	return st.ImageSearchReady
}

// IsNotImage reports whether err is the non-image upload rejection.
func IsNotImage(err error) bool {
	return errors.Is(err, preview.ErrNotImage)
}
