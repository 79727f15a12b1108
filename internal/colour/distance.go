package colour

import (
	"fmt"
	"math"
	"strings"
)

// Algorithm names a colour distance metric.
type Algorithm string

const (
	// AlgorithmEuclidean is the straight-line distance in RGB space.
	AlgorithmEuclidean Algorithm = "euclidean"

	// AlgorithmWeighted weights channel errors 2:4:3 (R:G:B), emphasising green
	// where the eye is most sensitive to luminance changes.
	AlgorithmWeighted Algorithm = "weighted"

	// AlgorithmLab is the Euclidean distance in an approximate Lab space.
	// See ToLab for the exact transform.
	AlgorithmLab Algorithm = "lab"
)

// ValidAlgorithms returns the supported algorithms in display order.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmEuclidean,
		AlgorithmWeighted,
		AlgorithmLab,
	}
}

// IsValidAlgorithm checks if the given algorithm name is supported.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// ParseAlgorithm maps a name to an Algorithm. Unrecognised names fall back
// to AlgorithmEuclidean.
func ParseAlgorithm(name string) Algorithm {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	if IsValidAlgorithm(alg) {
		return alg
	}
	return AlgorithmEuclidean
}

// String implements pflag.Value.
func (a *Algorithm) String() string {
	if a == nil || *a == "" {
		return string(AlgorithmEuclidean)
	}
	return string(*a)
}

// Set implements pflag.Value. Unlike ParseAlgorithm it rejects unknown names,
// so a typo on the command line is reported rather than silently ignored.
func (a *Algorithm) Set(s string) error {
	alg := Algorithm(strings.ToLower(strings.TrimSpace(s)))
	if !IsValidAlgorithm(alg) {
		return fmt.Errorf("unknown algorithm %q (valid algorithms: %v)", s, ValidAlgorithms())
	}
	*a = alg
	return nil
}

// Type implements pflag.Value.
func (a *Algorithm) Type() string {
	return "algorithm"
}

// Distance returns the perceptual dissimilarity between a and b under alg.
// Unrecognised algorithms are treated as AlgorithmEuclidean.
func Distance(a, b RGB, alg Algorithm) float64 {
	switch alg {
	case AlgorithmWeighted:
		return weightedDistance(a, b)
	case AlgorithmLab:
		return ToLab(a).Distance(ToLab(b))
	default:
		return euclideanDistance(a, b)
	}
}

func euclideanDistance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func weightedDistance(a, b RGB) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(2*dr*dr + 4*dg*dg + 3*db*db)
}

// Lab is a colour in the approximate Lab space produced by ToLab.
type Lab struct {
	L float64
	A float64
	B float64
}

// Distance returns the Euclidean distance between two Lab colours.
func (l Lab) Distance(o Lab) float64 {
	dl := l.L - o.L
	da := l.A - o.A
	db := l.B - o.B
	return math.Sqrt(float64(dl*dl) + float64(da*da) + float64(db*db))
}

// ToLab converts an RGB colour to an approximate Lab colour.
//
// This is deliberately not a corrected CIE conversion: pattern output must be
// reproducible, so the constants and the order of operations are fixed.
// Explicit float64 conversions stop the compiler fusing multiply-adds, which
// would otherwise change results on some architectures.
func ToLab(rgb RGB) Lab {
	r := linearise(float64(rgb.R) / 255)
	g := linearise(float64(rgb.G) / 255)
	b := linearise(float64(rgb.B) / 255)

	x := (float64(r*0.4124) + float64(g*0.3576) + float64(b*0.1805)) / 0.95047
	y := (float64(r*0.2126) + float64(g*0.7152) + float64(b*0.0722)) / 1.00000
	z := (float64(r*0.0193) + float64(g*0.1192) + float64(b*0.9505)) / 1.08883

	fx := labF(x)
	fy := labF(y)
	fz := labF(z)

	return Lab{
		L: float64(116*fy) - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

func linearise(c float64) float64 {
	if c > 0.04045 {
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Pow(t, 1.0/3)
	}
	return float64(7.787*t) + 16.0/116
}

// Metric measures distances under one algorithm, caching the per-colour
// conversion so repeated comparisons against the same reference colours
// only convert each colour once.
type Metric struct {
	alg Algorithm
}

// Point is a colour prepared for comparison by a Metric.
type Point struct {
	rgb RGB
	lab Lab
}

// RGB returns the colour the point was prepared from.
func (p Point) RGB() RGB {
	return p.rgb
}

// NewMetric returns a Metric for alg. Unrecognised algorithms are treated as
// AlgorithmEuclidean.
func NewMetric(alg Algorithm) Metric {
	if !IsValidAlgorithm(alg) {
		alg = AlgorithmEuclidean
	}
	return Metric{alg: alg}
}

// Algorithm returns the algorithm the metric applies.
func (m Metric) Algorithm() Algorithm {
	return m.alg
}

// Prepare converts a colour once for repeated use with Between.
func (m Metric) Prepare(rgb RGB) Point {
	p := Point{rgb: rgb}
	if m.alg == AlgorithmLab {
		p.lab = ToLab(rgb)
	}
	return p
}

// Between returns the same value as Distance(a.RGB(), b.RGB(), m.Algorithm()).
func (m Metric) Between(a, b Point) float64 {
	switch m.alg {
	case AlgorithmWeighted:
		return weightedDistance(a.rgb, b.rgb)
	case AlgorithmLab:
		return a.lab.Distance(b.lab)
	default:
		return euclideanDistance(a.rgb, b.rgb)
	}
}
