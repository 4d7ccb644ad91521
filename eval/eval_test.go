package eval

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"meshvol/geom"
)

func TestSolvePerpendicularSegmentThroughTriangleInterior(t *testing.T) {
	tri := geom.Triangle{
		A: ms3.Vec{X: 0, Y: 0, Z: 0},
		B: ms3.Vec{X: 1, Y: 0, Z: 0},
		C: ms3.Vec{X: 0, Y: 1, Z: 0},
	}
	seg := geom.Segment{
		Start: ms3.Vec{X: 0.2, Y: 0.2, Z: -1},
		End:   ms3.Vec{X: 0.2, Y: 0.2, Z: 1},
	}
	sol, ok := Solve(seg, tri, DefaultDetEpsilon)
	if !ok {
		t.Fatalf("Solve reported degenerate for a clearly transverse segment, det=%v", sol.Det)
	}
	if !sol.InTriangle() {
		t.Fatalf("Solve(%v,%v) = %+v, want point inside triangle", seg, tri, sol)
	}
	if math32.Abs(sol.S-0.5) > 1e-4 {
		t.Errorf("S = %v, want 0.5 (segment crosses z=0 plane at its midpoint)", sol.S)
	}
}

func TestSolveMissedTriangle(t *testing.T) {
	tri := geom.Triangle{
		A: ms3.Vec{X: 0, Y: 0, Z: 0},
		B: ms3.Vec{X: 1, Y: 0, Z: 0},
		C: ms3.Vec{X: 0, Y: 1, Z: 0},
	}
	seg := geom.Segment{
		Start: ms3.Vec{X: 5, Y: 5, Z: -1},
		End:   ms3.Vec{X: 5, Y: 5, Z: 1},
	}
	sol, ok := Solve(seg, tri, DefaultDetEpsilon)
	if !ok {
		t.Fatalf("Solve reported degenerate unexpectedly, det=%v", sol.Det)
	}
	if sol.InTriangle() {
		t.Fatalf("Solve found a point inside the triangle for a segment far outside it: %+v", sol)
	}
}

func TestSolveParallelIsDegenerate(t *testing.T) {
	tri := geom.Triangle{
		A: ms3.Vec{X: 0, Y: 0, Z: 0},
		B: ms3.Vec{X: 1, Y: 0, Z: 0},
		C: ms3.Vec{X: 0, Y: 1, Z: 0},
	}
	seg := geom.Segment{
		Start: ms3.Vec{X: 0, Y: 0, Z: 1},
		End:   ms3.Vec{X: 1, Y: 1, Z: 1},
	}
	_, ok := Solve(seg, tri, DefaultDetEpsilon)
	if ok {
		t.Fatalf("Solve did not flag a segment parallel to the triangle's plane as degenerate")
	}
}

func TestCountStartEndInsideParity(t *testing.T) {
	c := Count{BeforeSegment: 1, OnSegment: 2}
	if !c.StartInside() {
		t.Errorf("StartInside() = false, want true for odd BeforeSegment")
	}
	if !c.EndInside() {
		t.Errorf("EndInside() = false, want true: BeforeSegment+OnSegment = 3 is odd")
	}
	c2 := Count{BeforeSegment: 0, OnSegment: 1}
	if c2.StartInside() {
		t.Errorf("StartInside() = true, want false for zero BeforeSegment")
	}
	if !c2.EndInside() {
		t.Errorf("EndInside() = false, want true: one on-segment crossing flips outside->inside")
	}
}

func TestEvaluateTermIsTrilinear(t *testing.T) {
	p := ms3.Vec{X: 1, Y: 2, Z: 3}
	tv := ms3.Vec{X: 1, Y: 0, Z: 0}
	u := ms3.Vec{X: 0, Y: 1, Z: 0}
	n := ms3.Vec{X: 0, Y: 0, Z: 1}
	got := EvaluateTerm(p, tv, u, n)
	want := (p.X) * (p.Y) * (p.Z)
	if math32.Abs(got-want) > 1e-6 {
		t.Errorf("EvaluateTerm(%v,e_x,e_y,e_z) = %v, want %v", p, got, want)
	}
}

func TestIntersectLineTriangleBucketsByParameter(t *testing.T) {
	tri := geom.Triangle{
		A: ms3.Vec{X: 0, Y: 0, Z: 0},
		B: ms3.Vec{X: 1, Y: 0, Z: 0},
		C: ms3.Vec{X: 0, Y: 1, Z: 0},
	}
	var before, on Count
	beforeSeg := geom.Segment{Start: ms3.Vec{X: 0.2, Y: 0.2, Z: 1}, End: ms3.Vec{X: 0.2, Y: 0.2, Z: 2}}
	IntersectLineTriangle(beforeSeg, tri, DefaultDetEpsilon, &before)
	if before.BeforeSegment != 1 || before.OnSegment != 0 {
		t.Errorf("before-segment crossing counted as %+v", before)
	}
	onSeg := geom.Segment{Start: ms3.Vec{X: 0.2, Y: 0.2, Z: -1}, End: ms3.Vec{X: 0.2, Y: 0.2, Z: 1}}
	IntersectLineTriangle(onSeg, tri, DefaultDetEpsilon, &on)
	if on.OnSegment != 1 || on.BeforeSegment != 0 {
		t.Errorf("on-segment crossing counted as %+v", on)
	}
}
