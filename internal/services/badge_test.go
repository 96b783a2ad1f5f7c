package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBadge(t *testing.T) {
	tests := []struct {
		name   string
		sold   int
		rating float64
		want   string
	}{
		{"best seller", 31000, 4.0, "Best Seller"},
		{"top rated", 10000, 4.6, "Top Rated"},
		{"limited", 4000, 3.0, "Limited"},
		{"no badge", 10000, 3.0, ""},
		{"best seller wins over top rated", 31000, 4.6, "Best Seller"},
		{"top rated wins over limited", 4000, 4.5, "Top Rated"},
		{"boundary sold not best seller", 30000, 4.0, ""},
		{"boundary sold is limited below", 4999, 0, "Limited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Badge(tt.sold, tt.rating))
		})
	}
}
