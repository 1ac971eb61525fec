package curl

import (
	"github.com/chewxy/math32"

	"page-curl-renderer/internal/mathutil"
)

// Evaluate returns the output color at uv (normalized, origin top-left) for
// a transition from the outgoing page to the incoming page.
//
// Pixels above the fold show the outgoing page untouched, pixels below it
// show the incoming page under a contact shadow, and pixels on the cylinder
// show either the lit backside of the outgoing page or, where the sheet has
// already rolled past the viewer, whatever lies behind it.
func Evaluate(uv mathutil.Vec2, edge Edge, prm *Params, from, to Sampler) Color {
	ev := evaluator{prm: prm, edge: edge, from: from, to: to}
	return ev.pixel(ev.mirror(uv))
}

type evaluator struct {
	prm  *Params
	edge Edge
	from Sampler
	to   Sampler
}

// mirror flips the vertical axis for top-edge curls. Applied once to the
// geometry and again on every lookup so the pages themselves stay upright.
func (ev *evaluator) mirror(p mathutil.Vec2) mathutil.Vec2 {
	if ev.edge == EdgeTop {
		return mathutil.Vec2{p[0], 1 - p[1]}
	}
	return p
}

func (ev *evaluator) fromColor(p mathutil.Vec2) Color {
	return ev.from.Sample(ev.mirror(p))
}

func (ev *evaluator) toColor(p mathutil.Vec2) Color {
	return ev.to.Sample(ev.mirror(p))
}

func (ev *evaluator) pixel(p mathutil.Vec2) Color {
	prm := ev.prm
	r := prm.Radius

	pt := prm.Forward.MulVec3(p.Point())
	yc := pt[1] - prm.CylinderCenter

	if yc < -r {
		return ev.behindSurface(p, yc, pt)
	}
	if yc > r {
		return ev.fromColor(p)
	}

	hitAngle := math32.Acos(yc/r) + prm.CylinderAngle - math32.Pi
	hitAngleMod := mathutil.Mod(hitAngle, 2*math32.Pi)
	if (hitAngleMod > math32.Pi && prm.Amount < 0.5) || (hitAngleMod > math32.Pi/2 && prm.Amount < 0) {
		return ev.seeThrough(yc, p)
	}

	pt = ev.hitPoint(hitAngle, pt)
	if !pt.InUnitSquare() {
		return ev.seeThroughWithShadow(yc, p, pt)
	}

	color := ev.backside(yc, pt)
	var other Color
	if yc < 0 {
		other = Color{0, 0, 0, ev.foldShadow(pt, yc)}
	} else {
		other = ev.fromColor(p)
	}
	color = prm.antiAlias(color, other, r-math32.Abs(yc))

	cl := ev.seeThroughWithShadow(yc, p, pt)
	return prm.antiAlias(color, cl, distanceToEdge(pt))
}

// hitPoint maps a cylinder angle back to page coordinates.
func (ev *evaluator) hitPoint(hitAngle float32, pt mathutil.Vec3) mathutil.Vec3 {
	pt[1] = hitAngle / (2 * math32.Pi)
	return ev.prm.Inverse.MulVec3(pt)
}

// foldShadow is the alpha of the shadow cast near the fold, strongest at the
// page center and at the far side of the cylinder.
func (ev *evaluator) foldShadow(pt mathutil.Vec3, yc float32) float32 {
	prm := ev.prm
	d := pt.XY().Sub(mathutil.Vec2{0.5, 0.5}).Len()
	return (1 - d/prm.ShadowFalloff) * math32.Pow(-yc/prm.Radius, 3) * 0.5
}

func (ev *evaluator) seeThrough(yc float32, p mathutil.Vec2) Color {
	prm := ev.prm
	hitAngle := math32.Pi - (math32.Acos(yc/prm.Radius) - prm.CylinderAngle)
	pt := ev.hitPoint(hitAngle, prm.Forward.MulVec3(p.Point()))
	if yc <= 0 && !pt.InUnitSquare() {
		return ev.toColor(p)
	}
	if yc > 0 {
		return ev.fromColor(p)
	}
	color := ev.fromColor(pt.XY())
	return prm.antiAlias(color, Transparent, distanceToEdge(pt))
}

func (ev *evaluator) seeThroughWithShadow(yc float32, p mathutil.Vec2, pt mathutil.Vec3) Color {
	shadow := (1 - distanceToEdge(pt)*30) / 3
	if shadow < 0 {
		shadow = 0
	} else {
		shadow *= ev.prm.Amount
	}
	return ev.seeThrough(yc, p).Darken(shadow)
}

// backside renders the underside of the outgoing page: desaturated and lit
// brighter toward the crest of the cylinder.
func (ev *evaluator) backside(yc float32, pt mathutil.Vec3) Color {
	c := ev.fromColor(pt.XY())
	gray := (c[0] + c[1] + c[2]) / 15
	gray += 0.8 * (math32.Pow(1-math32.Abs(yc/ev.prm.Radius), 0.2)*0.5 + 0.5)
	return Color{gray, gray, gray, c[3]}
}

// behindSurface shows the incoming page where the sheet has already passed,
// darkened by the contact shadow of the curl resting on it.
func (ev *evaluator) behindSurface(p mathutil.Vec2, yc float32, pt mathutil.Vec3) Color {
	prm := ev.prm
	r := prm.Radius

	yc = -r - r - yc
	hitAngle := math32.Acos(yc/r) + prm.CylinderAngle - math32.Pi
	pt = ev.hitPoint(hitAngle, pt)

	var shadow float32
	if yc < 0 && pt.InUnitSquare() && (hitAngle < math32.Pi || prm.Amount > 0.5) {
		shadow = ev.foldShadow(pt, yc)
	}

	base := ev.toColor(p)
	a := base[3]
	return Color{base[0] - shadow*a, base[1] - shadow*a, base[2] - shadow*a, a}
}
