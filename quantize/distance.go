package quantize

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// pixel holds a color with 8 bit channel scale in floating point so that
// diffused error can push channels outside of [0, 255].
type pixel struct {
	r, g, b, a float64
}

// Distance measures how far apart two pixels are. Smaller is closer.
type Distance func(p, q pixel) float64

const (
	bt709R = 0.2126
	bt709G = 0.7152
	bt709B = 0.0722

	nommydeR = 0.4984
	nommydeG = 0.8625
	nommydeB = 0.2979
)

func weightedEuclidean(wr, wg, wb, wa float64) Distance {
	return func(p, q pixel) float64 {
		dr, dg, db, da := p.r-q.r, p.g-q.g, p.b-q.b, p.a-q.a
		return math.Sqrt(wr*dr*dr + wg*dg*dg + wb*db*db + wa*da*da)
	}
}

func weightedManhattan(wr, wg, wb, wa float64) Distance {
	return func(p, q pixel) float64 {
		return wr*math.Abs(p.r-q.r) + wg*math.Abs(p.g-q.g) + wb*math.Abs(p.b-q.b) + wa*math.Abs(p.a-q.a)
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}

func (p pixel) colorful() colorful.Color {
	return colorful.Color{R: clamp(p.r) / 255, G: clamp(p.g) / 255, B: clamp(p.b) / 255}
}

// CIE94 on the 0-100 L* scale. kL, k1 and k2 select the graphic arts or
// textiles application constants.
func cie94(kL, k1, k2 float64) Distance {
	return func(p, q pixel) float64 {
		l1, a1, b1 := p.colorful().Lab()
		l2, a2, b2 := q.colorful().Lab()
		l1, a1, b1 = l1*100, a1*100, b1*100
		l2, a2, b2 = l2*100, a2*100, b2*100

		dl := l1 - l2
		c1 := math.Hypot(a1, b1)
		c2 := math.Hypot(a2, b2)
		dc := c1 - c2
		da, db := a1-a2, b1-b2
		dh2 := math.Max(0, da*da+db*db-dc*dc)

		sc := 1 + k1*c1
		sh := 1 + k2*c1

		vl := dl / kL
		vc := dc / sc
		return math.Sqrt(vl*vl + vc*vc + dh2/(sh*sh))
	}
}

func ciede2000(p, q pixel) float64 {
	return p.colorful().DistanceCIEDE2000(q.colorful())
}

// Low cost approximation of perceived difference which weights the red and
// blue channels by the mean red level of both colors.
func colorMetric(p, q pixel) float64 {
	rmean := (p.r + q.r) / 2
	dr, dg, db := p.r-q.r, p.g-q.g, p.b-q.b
	return math.Sqrt((2+rmean/256)*dr*dr + 4*dg*dg + (2+(255-rmean)/256)*db*db)
}

var distances = map[string]Distance{
	"euclidean":               weightedEuclidean(1, 1, 1, 1),
	"euclidean-bt709":         weightedEuclidean(bt709R, bt709G, bt709B, 1),
	"euclidean-bt709-noalpha": weightedEuclidean(bt709R, bt709G, bt709B, 0),
	"manhattan":               weightedManhattan(1, 1, 1, 1),
	"manhattan-bt709":         weightedManhattan(bt709R, bt709G, bt709B, 1),
	"manhattan-nommyde":       weightedManhattan(nommydeR, nommydeG, nommydeB, 1),
	"cie94-textiles":          cie94(2, 0.048, 0.014),
	"cie94-graphic-arts":      cie94(1, 0.045, 0.015),
	"ciede2000":               ciede2000,
	"color-metric":            colorMetric,
}

// DefaultDistance is used when no distance calculator is configured.
const DefaultDistance = "euclidean"

// ParseDistance looks up a distance calculator by name.
func ParseDistance(name string) (Distance, error) {
	if name == "" {
		name = DefaultDistance
	}
	d, ok := distances[name]
	if !ok {
		return nil, fmt.Errorf("%w: distance calculator %q", ErrUnknownSetting, name)
	}
	return d, nil
}
