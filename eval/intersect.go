// Package eval implements the segment/triangle intersector and the
// trilinear term generator that the asymmetric and localized passes
// (package pass) accumulate into a mesh intersection volume.
package eval

import (
	"github.com/soypat/geometry/ms3"
	"meshvol/geom"
)

// DefaultDetEpsilon is the determinant threshold below which a
// segment/triangle system is treated as degenerate (grazing/parallel) and
// rejected.
const DefaultDetEpsilon = 1e-5

// Solution is the result of solving a segment against a triangle's plane:
// the triangle point is A + U*(B-A) + V*(C-A), and the segment point is
// Start + S*(End-Start). Det is the solved system's determinant; a caller
// compares it against an epsilon before trusting U, V, S.
type Solution struct {
	U, V, S, Det float32
}

// InTriangle reports whether (U,V) lies within the (possibly degenerate)
// reference triangle, i.e. U>=0, V>=0, U+V<=1.
func (s Solution) InTriangle() bool {
	return s.U >= 0 && s.V >= 0 && s.U+s.V <= 1
}

// OnSegment reports whether S lies within [0,1].
func (s Solution) OnSegment() bool {
	return s.S >= 0 && s.S <= 1
}

// Solve solves seg against tri's supporting plane, returning the
// barycentric/parametric solution and whether the determinant cleared
// detEps. The 3x3 system
//
//	u*(B-A) + v*(C-A) - s*(End-Start) = Start-A
//
// is solved via geom.Matrix3's Cramer's-rule Solve.
func Solve(seg geom.Segment, tri geom.Triangle, detEps float32) (sol Solution, ok bool) {
	m := geom.Matrix3{
		Col0: ms3.Sub(tri.B, tri.A),
		Col1: ms3.Sub(tri.C, tri.A),
		Col2: ms3.Scale(-1, ms3.Sub(seg.End, seg.Start)),
	}
	x, det := m.Solve(ms3.Sub(seg.Start, tri.A))
	sol = Solution{U: x.X, V: x.Y, S: x.Z, Det: det}
	ok = det >= detEps || det <= -detEps
	return sol, ok
}

// Count accumulates how many triangles of a mesh a directed line crosses,
// split by where along the line the crossing fell. BeforeSegment counts
// crossings with S<0 (the ray extended backward past Start); OnSegment
// counts crossings with 0<=S<=1 (the segment itself). Crossings with S>1
// are not counted: the End vertex's parity is derived from Start's parity
// XOR OnSegment's parity rather than tracked with a third counter, since
// each on-segment crossing toggles inside/outside exactly once walking
// from Start to End.
type Count struct {
	BeforeSegment int
	OnSegment     int
}

// StartInside reports whether Start is classified inside by ray-casting
// parity of the crossings found behind it.
func (c Count) StartInside() bool {
	return c.BeforeSegment%2 == 1
}

// EndInside reports whether End is classified inside, derived from
// Start's parity toggled once per on-segment crossing.
func (c Count) EndInside() bool {
	return (c.BeforeSegment+c.OnSegment)%2 == 1
}

// IntersectLineTriangle solves seg against tri and, if the crossing point
// falls within the triangle, buckets it into count by where S fell.
func IntersectLineTriangle(seg geom.Segment, tri geom.Triangle, detEps float32, count *Count) {
	sol, ok := Solve(seg, tri, detEps)
	if !ok || !sol.InTriangle() {
		return
	}
	if sol.S < 0 {
		count.BeforeSegment++
	} else if sol.S <= 1 {
		count.OnSegment++
	}
}

// LocalizedCount is the localized pass's per-side accumulator: alongside
// the on-segment tally it tracks only the single nearest crossing's
// inside/outside classification, since the localized algorithm classifies
// a side's Start from its closest intersection and derives End from parity,
// propagating the rest by adjacency rather than by full ray parity.
type LocalizedCount struct {
	OnSegment     int
	HasClosest    bool
	ClosestS      float32
	IsStartInside bool
}

// LocalIntersectLineTriangle solves seg (the side of mesh a, with outward
// normal sideNormal) against hit (a triangle of mesh b). If the crossing
// lands within the triangle and on the segment (0<=S<=1), it updates
// count's on-segment tally and, if this is the nearest crossing seen so
// far, its Start inside/outside classification (Start is inside hit's
// volume there iff (Start-crossingPoint).hit.N > 0). Returns the trilinear
// term contribution of the crossing, 0 if there was none.
func LocalIntersectLineTriangle(seg geom.Segment, sideNormal ms3.Vec, hit geom.OrientedTriangle, detEps float32, count *LocalizedCount, collector TermCollector) float32 {
	sol, ok := Solve(seg, hit.Triangle(), detEps)
	if !ok || !sol.InTriangle() || sol.S < 0 || sol.S > 1 {
		return 0
	}
	p := seg.Interpolate(sol.S)
	count.OnSegment++
	if !count.HasClosest || sol.S < count.ClosestS {
		count.HasClosest = true
		count.ClosestS = sol.S
		count.IsStartInside = ms3.Dot(ms3.Sub(seg.Start, p), hit.N) > 0
	}
	return GenerateIntersectionTerms(p, ms3.Sub(seg.End, seg.Start), sideNormal, hit.N, collector)
}
