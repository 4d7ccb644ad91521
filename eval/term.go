package eval

import (
	"github.com/soypat/geometry/ms3"
	"meshvol/geom"
)

// TermCollector receives every trilinear term evaluated during a pass, for
// callers that want to visualize or audit the computation. A nil
// TermCollector is the common case and costs nothing beyond a nil check
// per term.
type TermCollector interface {
	Collect(p, t, u, n ms3.Vec, value float32)
}

// EvaluateTerm computes T(p,t,u,n) = (p.t)(p.u)(p.n), the trilinear form
// whose sum over all surface crossings and inside endpoints yields 6x the
// intersection volume.
func EvaluateTerm(p, t, u, n ms3.Vec) float32 {
	return ms3.Dot(p, t) * ms3.Dot(p, u) * ms3.Dot(p, n)
}

func evaluateAndCollect(p, t, u, n ms3.Vec, collector TermCollector) float32 {
	v := EvaluateTerm(p, t, u, n)
	if collector != nil {
		collector.Collect(p, t, u, n, v)
	}
	return v
}

// orient returns v, flipped to -v if it points away from ref (dot<0). This
// is the sign convention every frame vector below is built with; flipping
// it anywhere produces a wrong but plausible-looking volume.
func orient(ref, v ms3.Vec) ms3.Vec {
	if ms3.Dot(ref, v) < 0 {
		return ms3.Scale(-1, v)
	}
	return v
}

// GenerateIntersectionTerms emits the three trilinear terms of a single
// segment/triangle crossing at point p, where lineDir is the crossed
// side's direction (End-Start, not required to be unit), lineNormal is the
// outward normal of the triangle the side belongs to, and triNormal is the
// outward normal of the triangle the side crossed. Returns their sum.
func GenerateIntersectionTerms(p, lineDir, lineNormal, triNormal ms3.Vec, collector TermCollector) float32 {
	insideDir := ms3.Unit(ms3.Cross(lineNormal, lineDir))

	var sum float32

	// term tangential to the crossed side.
	{
		t := orient(ms3.Scale(-1, triNormal), ms3.Unit(lineDir))
		u := insideDir
		n := lineNormal
		sum += evaluateAndCollect(p, t, u, n, collector)
	}

	// terms along the intersection of the two faces.
	{
		t := orient(insideDir, ms3.Unit(ms3.Cross(lineNormal, triNormal)))

		// coplanar with the side's own face.
		{
			u := orient(ms3.Scale(-1, triNormal), ms3.Unit(ms3.Cross(lineNormal, t)))
			sum += evaluateAndCollect(p, t, u, lineNormal, collector)
		}
		// coplanar with the crossed triangle.
		{
			u := orient(ms3.Scale(-1, lineNormal), ms3.Unit(ms3.Cross(triNormal, t)))
			sum += evaluateAndCollect(p, t, u, triNormal, collector)
		}
	}

	return sum
}

// EvaluateLineIntersection emits the endpoint term(s) of side for whichever
// of its two endpoints are flagged inside the other mesh. This is the
// contribution that makes a fully-enclosed vertex (no surface crossing
// nearby) count toward the intersection volume at all.
func EvaluateLineIntersection(side geom.TriangleSide, startInside, endInside bool, collector TermCollector) float32 {
	var sum float32
	if startInside {
		t := ms3.Unit(ms3.Sub(side.End, side.Start))
		u := ms3.Cross(side.N, t)
		sum += evaluateAndCollect(side.Start, t, u, side.N, collector)
	}
	if endInside {
		t := ms3.Unit(ms3.Sub(side.Start, side.End))
		u := ms3.Scale(-1, ms3.Cross(side.N, t))
		sum += evaluateAndCollect(side.End, t, u, side.N, collector)
	}
	return sum
}
