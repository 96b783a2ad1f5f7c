package services

import (
	"fmt"
	"math"

	"shopsphere-web/internal/models"
	"shopsphere-web/pkg/utils"
)

// Categories is the fixed set shown in the landing page grid.
var Categories = []string{
	"Mobile", "Fashion", "Home", "Sports", "Books", "Beauty", "Toys", "Automotive",
}

// ProductView wraps a product with everything the templates derive from
// it, so the templates stay logic-free.
type ProductView struct {
	models.Product

	Badge       string
	Stars       int
	PriceLabel  string
	WasLabel    string
	SoldLabel   string
	MatchLabel  string
	ReviewCount int
	Image       string
}

func newProductView(p models.Product, imageMode bool) ProductView {
	v := ProductView{
		Product:     p,
		Badge:       Badge(p.Sold, p.Rating),
		Stars:       utils.FilledStars(p.Rating),
		PriceLabel:  utils.FormatPrice(p.Price),
		SoldLabel:   utils.FormatSold(p.Sold),
		ReviewCount: len(p.Reviews),
	}
	if p.OriginalPrice > 0 {
		v.WasLabel = utils.FormatPrice(p.OriginalPrice)
	}
	if len(p.Images) > 0 {
		v.Image = p.Images[0]
	}
	if imageMode && p.SimilarityScore > 0 {
		v.MatchLabel = utils.FormatMatchPercent(p.SimilarityScore)
	}
	return v
}

// ProductPage is the detail page model: the product plus its derived
// display fields and gallery.
type ProductPage struct {
	ProductView
	RatingLabel string
	Gallery     []string
}

// NewProductPage builds the detail view for one product.
func NewProductPage(p models.Product) ProductPage {
	return ProductPage{
		ProductView: newProductView(p, false),
		RatingLabel: fmt.Sprintf("%.1f", p.Rating),
		Gallery:     p.Images,
	}
}

// LandingView is the fully derived landing page model.
type LandingView struct {
	State      *models.SearchState
	Products   []ProductView
	Categories []string
	Heading    string
	StatusLine string
	Message    string
}

// RecommendationView is the model for the AI results page.
type RecommendationView struct {
	Recommendation *models.Recommendation
	Query          string
	SentimentLabel string
	SoldLabel      string
	PriceLabel     string
	Stars          int
	Image          string
	Related        []ProductView
}

func buildRecommendationView(state *models.SearchState, related []ProductView) *RecommendationView {
	rec := state.Recommendation
	v := &RecommendationView{
		Recommendation: rec,
		Query:          state.RecommendationQuery,
		SentimentLabel: fmt.Sprintf("%d%% Positive Reviews", int(math.Round(rec.SentimentScore))),
		SoldLabel:      utils.FormatSold(rec.Sold),
		PriceLabel:     utils.FormatPrice(rec.Price),
		Stars:          utils.FilledStars(rec.Rating),
		Related:        related,
	}
	if len(rec.Images) > 0 {
		v.Image = rec.Images[0]
	}
	return v
}

func buildLandingView(state *models.SearchState, displayed []models.Product, message string) *LandingView {
	imageMode := state.Mode == models.ModeImage
	views := make([]ProductView, 0, len(displayed))
	for _, p := range displayed {
		views = append(views, newProductView(p, imageMode))
	}

	heading := "Featured Products"
	switch {
	case imageMode && state.PreviewID != "":
		heading = "Visually Similar Products"
	case state.SearchPerformed && state.Query != "":
		heading = fmt.Sprintf("Search Results for %q", state.Query)
	case state.Category != "":
		heading = state.Category + " Products"
	}

	statusLine := "No products found"
	if len(views) > 0 {
		statusLine = fmt.Sprintf("%d products found", len(views))
	}
	if imageMode && state.PreviewID != "" {
		statusLine = fmt.Sprintf("%d visually similar products", state.ImageMatchCount)
	}

	return &LandingView{
		State:      state,
		Products:   views,
		Categories: Categories,
		Heading:    heading,
		StatusLine: statusLine,
		Message:    message,
	}
}
