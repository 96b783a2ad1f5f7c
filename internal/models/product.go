package models

// Product is the catalog item shape served by the shop backend. The
// storefront never mutates products, it only renders them.
type Product struct {
	ID              string   `json:"id"`
	MongoID         string   `json:"_id,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Price           float64  `json:"price"`
	OriginalPrice   float64  `json:"originalPrice,omitempty"`
	Rating          float64  `json:"rating"`
	Sold            int      `json:"sold"`
	Images          []string `json:"images,omitempty"`
	Reviews         []string `json:"reviews,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	SimilarityScore float64  `json:"similarity_score,omitempty"`
}

// Key returns whichever identifier the backend populated. Documents
// coming straight out of Mongo carry "_id", seeded ones carry "id".
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	return p.MongoID
}

// Recommendation is the single AI-selected product returned by the
// recommend endpoint, with its reasoning and review metrics.
type Recommendation struct {
	Title          string   `json:"title"`
	Price          float64  `json:"price"`
	Rating         float64  `json:"rating"`
	Sold           int      `json:"sold"`
	SentimentScore float64  `json:"sentiment_score"`
	Reasoning      string   `json:"reasoning"`
	Images         []string `json:"images,omitempty"`
}

// SearchResponse is the payload shared by the keyword and
// reverse-image search endpoints.
type SearchResponse struct {
	Products []Product `json:"products"`
}

// BackendStatus reports readiness of the backend search services.
type BackendStatus struct {
	ImageSearchReady bool `json:"image_search_ready"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
