package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMatchPercent renders a 0-1 similarity score as the storefront's
// match chip, e.g. 0.91 -> "91% Match".
func FormatMatchPercent(score float64) string {
	return fmt.Sprintf("%d%% Match", int(math.Round(score*100)))
}

// FormatPrice renders a price without trailing zeros, e.g. 1299 -> "1299",
// 49.9 -> "49.9".
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// FormatSold renders a sold count with thousands separators,
// e.g. 31000 -> "31,000".
func FormatSold(sold int) string {
	s := strconv.Itoa(sold)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FilledStars reports how many of the five rating stars render filled.
func FilledStars(rating float64) int {
	n := int(math.Floor(rating))
	if n < 0 {
		return 0
	}
	if n > 5 {
		return 5
	}
	return n
}
