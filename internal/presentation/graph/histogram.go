package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// DefaultBins is the bucket count of ScoreHistogram.
const DefaultBins = 20

const barWidth = 40

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Bins buckets node scores over [MinScore, DefaultPerfectScore].
// Scores outside the range land in the first or last bucket; the last
// bucket is closed so a perfect score is counted.
func Bins(nodes []domain.Node, n int) []Bin {
	if n <= 0 {
		n = DefaultBins
	}
	lo, hi := domain.MinScore, domain.DefaultPerfectScore
	width := (hi - lo) / float64(n)

	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: lo + float64(i)*width, Hi: lo + float64(i+1)*width}
	}
	for _, node := range nodes {
		i := int((node.Score - lo) / width)
		i = min(max(i, 0), n-1)
		bins[i].Count++
	}
	return bins
}

// ScoreHistogram renders the score distribution as text, one line per bucket.
func ScoreHistogram(nodes []domain.Node, n int) string {
	bins := Bins(nodes, n)
	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Count)
	}

	var sb strings.Builder
	for _, b := range bins {
		bar := 0
		if peak > 0 {
			bar = b.Count * barWidth / peak
		}
		if b.Count > 0 && bar == 0 {
			bar = 1
		}
		sb.WriteString(fmt.Sprintf("%5.2f-%5.2f | %-*s %d\n", b.Lo, b.Hi, barWidth, strings.Repeat("█", bar), b.Count))
	}
	return sb.String()
}
