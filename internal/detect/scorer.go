// Package detect implements streaming scene-change detection: a single
// forward pass over decoded frames that scores each adjacent pair by
// grayscale-histogram correlation and converts the score stream into a
// contiguous partition of the video timeline.
package detect

import (
	"math"

	"github.com/scenesplit/scenesplit-service/internal/domain/port"
)

const histogramBuckets = 256

// Score quantifies the visual change between two adjacent frames as a
// non-negative dissimilarity: 0 for identical intensity distributions,
// approaching 200 for anti-correlated ones. Both frames must share the same
// dimensions and channel layout.
func Score(a, b *port.Frame) float64 {
	ha := intensityHistogram(a)
	hb := intensityHistogram(b)
	return (1 - correlate(ha, hb)) * 100
}

// intensityHistogram bins one luminance sample per pixel into 256 buckets.
// Three-channel frames are reduced with BT.601 weights first.
func intensityHistogram(f *port.Frame) [histogramBuckets]float64 {
	var hist [histogramBuckets]float64

	if f.Channels == 1 {
		for _, v := range f.Pix {
			hist[v]++
		}
		return hist
	}

	for i := 0; i+2 < len(f.Pix); i += f.Channels {
		r := float64(f.Pix[i])
		g := float64(f.Pix[i+1])
		b := float64(f.Pix[i+2])
		y := 0.299*r + 0.587*g + 0.114*b
		hist[int(y)]++
	}
	return hist
}

// correlate computes the normalized cross-correlation of two histograms,
// the standard histogram-correlation metric in [-1, 1]. Zero-variance inputs
// compare as identical.
func correlate(a, b [histogramBuckets]float64) float64 {
	var sumA, sumB float64
	for i := 0; i < histogramBuckets; i++ {
		sumA += a[i]
		sumB += b[i]
	}
	meanA := sumA / histogramBuckets
	meanB := sumB / histogramBuckets

	var num, varA, varB float64
	for i := 0; i < histogramBuckets; i++ {
		da := a[i] - meanA
		db := b[i] - meanB
		num += da * db
		varA += da * da
		varB += db * db
	}

	den := varA * varB
	if den <= math.SmallestNonzeroFloat64 {
		return 1
	}
	return num / math.Sqrt(den)
}
