package services

// Badge picks the display badge for a product card. Evaluated top to
// bottom, first match wins: a 31k-sold item with a 4.9 rating is a
// Best Seller, not Top Rated.
func Badge(sold int, rating float64) string {
	if sold > 30000 {
		return "Best Seller"
	}
	if rating >= 4.5 {
		return "Top Rated"
	}
	if sold < 5000 {
		return "Limited"
	}
	return ""
}
