package pass

import (
	"github.com/soypat/geometry/ms3"

	"meshvol/eval"
	"meshvol/geom"
)

// evaluateEdge returns the trilinear contribution of one directed triangle
// edge (start->end, with the owning triangle's outward normal) toward a
// single-mesh volume: evaluate_term at each endpoint with a tangent/surface
// frame built from the edge direction and the face normal.
func evaluateEdge(start, end, normal ms3.Vec) float32 {
	tangent := ms3.Unit(ms3.Sub(end, start))
	surface := ms3.Cross(normal, tangent)
	return eval.EvaluateTerm(start, tangent, surface, normal) +
		eval.EvaluateTerm(end, ms3.Scale(-1, tangent), surface, normal)
}

// Volume returns the signed volume enclosed by mesh, summing evaluateEdge
// over every triangle's three directed edges and dividing by 6. Used both
// as the library's single-mesh entry point and as the localized driver's
// answer on the full-containment short-circuit.
func Volume(mesh geom.Mesh) float32 {
	var sum float32
	for _, t := range mesh {
		sum += evaluateEdge(t.A, t.B, t.N) + evaluateEdge(t.B, t.C, t.N) + evaluateEdge(t.C, t.A, t.N)
	}
	return sum / 6
}
