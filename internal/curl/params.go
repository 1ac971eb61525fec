// Package curl evaluates the cylindrical page-curl transition for a single
// output pixel. Everything here is a pure function of its inputs so the same
// procedure can back a CPU rasterizer or be mirrored in a shader program.
package curl

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"page-curl-renderer/internal/mathutil"
)

// Edge is the vertical edge the curl is lifted from.
type Edge int

const (
	// EdgeBottom is the canonical geometry: the fold starts at the bottom.
	EdgeBottom Edge = iota
	// EdgeTop mirrors the geometry vertically.
	EdgeTop
)

func (e Edge) String() string {
	if e == EdgeTop {
		return "top"
	}
	return "bottom"
}

// ParseEdge parses "top" or "bottom"; the empty string is bottom.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top":
		return EdgeTop, nil
	case "bottom", "":
		return EdgeBottom, nil
	}
	return EdgeBottom, fmt.Errorf("curl: unknown edge %q", s)
}

func (e Edge) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *Edge) UnmarshalText(b []byte) error {
	v, err := ParseEdge(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Geometry holds the fixed constants that define the look of the curl.
type Geometry struct {
	// MinAmount and MaxAmount bound the remapped progress. The range extends
	// past [0,1] so the fold enters and leaves the page off-screen.
	MinAmount float32
	MaxAmount float32

	// Radius of the curl cylinder in page units.
	Radius float32

	// AAScale converts a distance in page units to anti-aliasing units; the
	// ramp spans 2 units.
	AAScale   float32
	Sharpness float32

	// Forward maps homogeneous page coordinates onto the tilted cylinder
	// frame; Inverse maps cylinder hit points back to page coordinates.
	Forward mathutil.Mat3
	Inverse mathutil.Mat3

	// ShadowFalloff is the page-unit distance over which the fold shadow
	// (diagonal of the unit square, 0.71) decays to zero.
	ShadowFalloff float32
}

// TiltDegrees is the rotation of the fold line relative to the page.
const TiltDegrees = 100

// DefaultGeometry returns the constants of the standard page-curl look.
func DefaultGeometry() Geometry {
	tilt := mathutil.Deg2Rad(TiltDegrees)
	return Geometry{
		MinAmount:     -0.26,
		MaxAmount:     1.15,
		Radius:        1 / math32.Pi / 2,
		AAScale:       512,
		Sharpness:     3,
		Forward:       mathutil.Tilt(-tilt, -0.801, 0.89),
		Inverse:       mathutil.Tilt(tilt, 0.985, 0.985),
		ShadowFalloff: 0.71,
	}
}

var defaultGeometry = DefaultGeometry()

// Params are the per-frame values derived from progress.
type Params struct {
	Geometry

	Progress float32
	Amount   float32

	CylinderCenter float32
	CylinderAngle  float32
}

// Progress outside this domain has no further visual effect.
const (
	minProgress = -1
	maxProgress = 2
)

// NewParams derives frame parameters from progress using the default geometry.
func NewParams(progress float64) Params {
	return defaultGeometry.Params(progress)
}

// Params derives frame parameters from progress. Non-finite progress is
// treated as 0 and the value is clamped to [-1, 2]; transient overshoot from
// drags and springs stays visible inside that range.
func (g Geometry) Params(progress float64) Params {
	p := sanitizeProgress(progress)
	amount := p*(g.MaxAmount-g.MinAmount) + g.MinAmount
	return Params{
		Geometry:       g,
		Progress:       p,
		Amount:         amount,
		CylinderCenter: amount,
		CylinderAngle:  2 * math32.Pi * amount,
	}
}

func sanitizeProgress(progress float64) float32 {
	p := float32(progress)
	if math32.IsNaN(p) || math32.IsInf(p, 0) {
		return 0
	}
	if p < minProgress {
		return minProgress
	}
	if p > maxProgress {
		return maxProgress
	}
	return p
}
