package geom

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// quantizeDigits controls how many decimal digits of a coordinate survive
// unification.
const quantizeDigits = 5

func quantize(v ms3.Vec) [3]int64 {
	const scale = 1e5 // 10^quantizeDigits
	return [3]int64{
		int64(math32.Round(v.X * scale)),
		int64(math32.Round(v.Y * scale)),
		int64(math32.Round(v.Z * scale)),
	}
}

// AdjacencyList maps a unified vertex index to the indices of unified
// vertices it shares a triangle edge with. It is the graph the localized
// pass floods to propagate inside/outside classification.
type AdjacencyList [][]int

// dedupeCorners quantizes the n corner triples returned by corner(i) and
// returns, for every (item, corner) in order, the unique vertex index that
// corner maps to, plus the deduplicated vertex positions themselves (first
// occurrence wins). Shared by UnifyVertices (needs the index to build
// adjacency) and PerturbVertices (needs the positions to jitter each
// unique vertex exactly once).
func dedupeCorners(n int, corner func(i int) (a, b, c ms3.Vec)) (cornerIndex [][3]int, unique []ms3.Vec) {
	index := make(map[[3]int64]int)
	cornerIndex = make([][3]int, n)
	lookup := func(v ms3.Vec) int {
		key := quantize(v)
		if id, ok := index[key]; ok {
			return id
		}
		id := len(unique)
		index[key] = id
		unique = append(unique, v)
		return id
	}
	for i := 0; i < n; i++ {
		a, b, c := corner(i)
		cornerIndex[i] = [3]int{lookup(a), lookup(b), lookup(c)}
	}
	return cornerIndex, unique
}

// UnifyVertices deduplicates the vertices of mesh by quantizing
// coordinates to quantizeDigits decimal digits, and returns, for every
// (triangle, corner) in mesh order, the unified vertex index that corner
// maps to, along with the adjacency list built from every triangle edge
// in the mesh.
func UnifyVertices(mesh Mesh) (cornerIndex [][3]int, adjacency AdjacencyList) {
	cornerIndex, unique := dedupeCorners(len(mesh), func(i int) (a, b, c ms3.Vec) {
		t := mesh[i]
		return t.A, t.B, t.C
	})
	unifiedCount := len(unique)
	adjacency = make(AdjacencyList, unifiedCount)
	addEdge := func(a, b int) {
		for _, n := range adjacency[a] {
			if n == b {
				return
			}
		}
		adjacency[a] = append(adjacency[a], b)
	}
	for _, c := range cornerIndex {
		addEdge(c[0], c[1])
		addEdge(c[1], c[0])
		addEdge(c[1], c[2])
		addEdge(c[2], c[1])
		addEdge(c[2], c[0])
		addEdge(c[0], c[2])
	}
	return cornerIndex, adjacency
}

// PerturbVertices returns a copy of mesh with every geometrically distinct
// vertex displaced once by independent uniform noise in [-eps, eps] scaled
// to that coordinate's order of magnitude, with the same displaced
// position written back to every corner that vertex unifies with. Jittering
// per unique vertex rather than per triangle corner matters: two corners
// that coincide exactly (a shared edge between adjacent triangles) must
// receive the identical displacement, or the jitter tears the edge apart
// and the mesh is no longer the closed oriented manifold every volume
// computation in this module assumes. It is used to push degenerate
// grazing or coplanar intersections off the determinant threshold package
// eval rejects on; it never mutates mesh.
func PerturbVertices(mesh []Triangle, eps float32, rng *rand.Rand) []Triangle {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	cornerIndex, unique := dedupeCorners(len(mesh), func(i int) (a, b, c ms3.Vec) {
		t := mesh[i]
		return t.A, t.B, t.C
	})
	jittered := make([]ms3.Vec, len(unique))
	for i, v := range unique {
		jittered[i] = ms3.Vec{
			X: v.X + eps*orderOfMagnitude(v.X)*(2*rng.Float32()-1),
			Y: v.Y + eps*orderOfMagnitude(v.Y)*(2*rng.Float32()-1),
			Z: v.Z + eps*orderOfMagnitude(v.Z)*(2*rng.Float32()-1),
		}
	}
	out := make([]Triangle, len(mesh))
	for i, c := range cornerIndex {
		out[i] = Triangle{A: jittered[c[0]], B: jittered[c[1]], C: jittered[c[2]]}
	}
	return out
}

// OpposingIndices returns, for each triangle side 0,1,2 of t, the index of
// the vertex on the opposite side of that edge in the adjacent triangle,
// or -1 if the edge is unmatched (boundary or non-manifold). Not consumed
// by the volume computation itself; kept for completeness and testing.
func OpposingIndices(triIndex int, cornerIndex [][3]int) [3]int {
	var out [3]int
	edges := [3][2]int{
		{cornerIndex[triIndex][0], cornerIndex[triIndex][1]},
		{cornerIndex[triIndex][1], cornerIndex[triIndex][2]},
		{cornerIndex[triIndex][2], cornerIndex[triIndex][0]},
	}
	for side, e := range edges {
		out[side] = -1
		for j, c := range cornerIndex {
			if j == triIndex {
				continue
			}
			corners := [3]int{c[0], c[1], c[2]}
			for k := 0; k < 3; k++ {
				a, b := corners[k], corners[(k+1)%3]
				if a == e[1] && b == e[0] {
					out[side] = corners[(k+2)%3]
				}
			}
		}
	}
	return out
}

// ClassicVolume returns the signed volume of mesh via the divergence
// theorem sum sum(dot(a, cross(b,c))) / 6. It requires no intersection
// computation and is used only in tests, as a volume check on the fixture
// meshes.
func ClassicVolume(mesh []Triangle) float32 {
	var sum float32
	for _, t := range mesh {
		sum += ms3.Dot(t.A, ms3.Cross(t.B, t.C))
	}
	return sum / 6
}
