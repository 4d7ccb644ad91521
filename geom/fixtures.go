package geom

import "github.com/soypat/geometry/ms3"

// Transform returns a copy of triangles with every vertex mapped through m,
// used to place a fixture mesh (Tetrahedron, UnitCube) at an arbitrary pose
// instead of threading an optional transform parameter through the
// constructors themselves (Go has no default arguments).
func Transform(triangles []Triangle, m ms3.Mat4) []Triangle {
	out := make([]Triangle, len(triangles))
	for i, t := range triangles {
		out[i] = Triangle{A: m.MulPosition(t.A), B: m.MulPosition(t.B), C: m.MulPosition(t.C)}
	}
	return out
}

// Tetrahedron returns the 4 outward-oriented triangles of a regular
// tetrahedron inscribed in the cube [-1,1]^3, centered at the origin.
// Callers that want a transformed copy call Transform on the result.
func Tetrahedron() []Triangle {
	v0 := ms3.Vec{X: 1, Y: 1, Z: 1}
	v1 := ms3.Vec{X: 1, Y: -1, Z: -1}
	v2 := ms3.Vec{X: -1, Y: 1, Z: -1}
	v3 := ms3.Vec{X: -1, Y: -1, Z: 1}
	return []Triangle{
		{A: v0, B: v1, C: v2},
		{A: v0, B: v3, C: v1},
		{A: v0, B: v2, C: v3},
		{A: v1, B: v3, C: v2},
	}
}

// UnitTetrahedron returns the 4 outward-oriented triangles of the
// tetrahedron with vertices (0,0,0), (1,0,0), (0,1,0), (0,0,1), whose
// enclosed volume is exactly 1/6.
func UnitTetrahedron() []Triangle {
	v0 := ms3.Vec{X: 0, Y: 0, Z: 0}
	v1 := ms3.Vec{X: 1, Y: 0, Z: 0}
	v2 := ms3.Vec{X: 0, Y: 1, Z: 0}
	v3 := ms3.Vec{X: 0, Y: 0, Z: 1}
	return []Triangle{
		{A: v0, B: v3, C: v2},
		{A: v0, B: v2, C: v1},
		{A: v0, B: v1, C: v3},
		{A: v1, B: v2, C: v3},
	}
}

// UnitCube returns the 12 outward-oriented triangles of the axis-aligned
// cube [0,1]^3.
func UnitCube() []Triangle {
	v := [8]ms3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: 1, Y: 0, Z: 1},
		{X: 1, Y: 1, Z: 1},
		{X: 0, Y: 1, Z: 1},
	}
	idx := [12][3]int{
		{0, 2, 1}, {0, 3, 2}, // bottom, z=0
		{4, 5, 6}, {4, 6, 7}, // top, z=1
		{0, 1, 5}, {0, 5, 4}, // front, y=0
		{3, 6, 2}, {3, 7, 6}, // back, y=1
		{0, 4, 7}, {0, 7, 3}, // left, x=0
		{1, 2, 6}, {1, 6, 5}, // right, x=1
	}
	out := make([]Triangle, 12)
	for i, c := range idx {
		out[i] = Triangle{A: v[c[0]], B: v[c[1]], C: v[c[2]]}
	}
	return out
}
