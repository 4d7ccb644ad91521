// Package meshvol computes the intersection volume of two closed,
// oriented triangle meshes without constructing their intersection
// polyhedron, by summing a trilinear term over every segment/triangle
// crossing between the two meshes (see package eval and package pass).
package meshvol

import (
	"meshvol/geom"
	"meshvol/pass"
)

// Triangle, OrientedTriangle and Mesh are re-exported from geom so callers
// assembling a mesh don't need a second import for the data model.
type (
	Triangle         = geom.Triangle
	OrientedTriangle = geom.OrientedTriangle
	Mesh             = geom.Mesh
)

// GenerateNormals computes outward normals from vertex winding order,
// re-exported from geom for the same reason.
func GenerateNormals(triangles []Triangle) Mesh {
	return geom.GenerateNormals(triangles)
}

// Volume returns the signed volume enclosed by a single mesh.
func Volume(mesh Mesh) float32 {
	return pass.Volume(mesh)
}

// IntersectionVolume returns the signed volume of the intersection of a
// and b, computed as (asymmetric(a,b) + asymmetric(b,a)) / 6.
func IntersectionVolume(a, b Mesh, opts pass.Options) float32 {
	return (pass.AsymmetricIntersect(a, b, opts) + pass.AsymmetricIntersect(b, a, opts)) / 6
}

// LocalizedIntersectionVolume computes the same quantity as
// IntersectionVolume using the localized (nearest-crossing,
// adjacency-propagated) pass instead of full ray-parity counting. Both
// directions are evaluated unconditionally before their "did anything
// cross" booleans are combined: the second call is never skipped just
// because the first direction found no crossing, since a one-sided miss
// (A's sides never cross B) does not imply B's sides never cross A for a
// non-convex mesh pair.
func LocalizedIntersectionVolume(a, b Mesh, opts pass.Options) float32 {
	sumAB, hitAB := pass.LocalizedAsymmetricIntersect(a, b, opts)
	sumBA, hitBA := pass.LocalizedAsymmetricIntersect(b, a, opts)
	anyIntersection := hitAB || hitBA
	if !anyIntersection {
		detEps := opts.DetEpsilonOrDefault()
		if pass.IsInside(a, b, detEps) {
			return Volume(a)
		}
		if pass.IsInside(b, a, detEps) {
			return Volume(b)
		}
		return 0
	}
	return (sumAB + sumBA) / 6
}
