package pass

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"

	"meshvol/geom"
)

func translate(tris []geom.Triangle, offset ms3.Vec) []geom.Triangle {
	out := make([]geom.Triangle, len(tris))
	for i, t := range tris {
		out[i] = geom.Triangle{A: ms3.Add(t.A, offset), B: ms3.Add(t.B, offset), C: ms3.Add(t.C, offset)}
	}
	return out
}

// perturbed applies the spec's documented vertex-jitter preprocessing step
// so exactly coplanar or coincident faces don't trip the intersector's
// determinant threshold in tests that deliberately construct them.
func perturbed(tris []geom.Triangle) []geom.Triangle {
	return geom.PerturbVertices(tris, 1e-5, rand.New(rand.NewSource(1)))
}

func TestVolumeOfUnitCube(t *testing.T) {
	mesh := geom.GenerateNormals(geom.UnitCube())
	got := Volume(mesh)
	if math32.Abs(got-1) > 1e-3 {
		t.Fatalf("Volume(unit cube) = %v, want 1", got)
	}
}

func TestVolumeOfUnitTetrahedron(t *testing.T) {
	mesh := geom.GenerateNormals(geom.UnitTetrahedron())
	got := Volume(mesh)
	want := float32(1.0 / 6.0)
	if math32.Abs(got-want) > 1e-4 {
		t.Fatalf("Volume(unit tetrahedron) = %v, want %v", got, want)
	}
}

func TestAsymmetricIntersectDisjointCubesIsZero(t *testing.T) {
	a := geom.GenerateNormals(geom.UnitCube())
	b := geom.GenerateNormals(translate(geom.UnitCube(), ms3.Vec{X: 10, Y: 10, Z: 10}))
	got := AsymmetricIntersect(a, b, Options{})
	if got != 0 {
		t.Errorf("AsymmetricIntersect(disjoint cubes) = %v, want 0", got)
	}
}

func TestAsymmetricIntersectCoincidentCubesIsNonzero(t *testing.T) {
	a := geom.GenerateNormals(perturbed(geom.UnitCube()))
	b := geom.GenerateNormals(perturbed(geom.UnitCube()))
	got := AsymmetricIntersect(a, b, Options{})
	if got == 0 {
		t.Errorf("AsymmetricIntersect(cube, cube) = 0, want a nonzero contribution from coincident meshes")
	}
}

func TestAsymmetricIntersectWorkerCountDoesNotChangeResult(t *testing.T) {
	a := geom.GenerateNormals(geom.UnitCube())
	b := geom.GenerateNormals(translate(geom.UnitCube(), ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5}))
	single := AsymmetricIntersect(a, b, Options{Workers: 1})
	multi := AsymmetricIntersect(a, b, Options{Workers: 8})
	if math32.Abs(single-multi) > 1e-3 {
		t.Errorf("AsymmetricIntersect with 1 worker = %v, with 8 workers = %v, want equal regardless of worker count", single, multi)
	}
}

// probeFrom builds a single-triangle mesh whose first directed side (A->B,
// per geom.ExtractSide's index-0 convention) runs from point straight up
// along +Z, so IsInside(probeFrom(point), outer, ...) tests point against
// outer the same way the localized driver tests a real mesh's first vertex.
func probeFrom(point ms3.Vec) geom.Mesh {
	return geom.Mesh{{
		A: point,
		B: ms3.Add(point, ms3.Vec{X: 0, Y: 0, Z: 1e6}),
		C: ms3.Vec{X: 1, Y: 0, Z: 0},
		N: ms3.Vec{X: 0, Y: 0, Z: 1},
	}}
}

func TestIsInsideUnitCube(t *testing.T) {
	// Perturbed: a +Z ray from (0.5,0.5) would otherwise run exactly through
	// the bottom face's diagonal edge and be counted by both triangles.
	mesh := geom.GenerateNormals(perturbed(geom.UnitCube()))
	inside := ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	outside := ms3.Vec{X: 5, Y: 5, Z: 5}
	if !IsInside(probeFrom(inside), mesh, Options{}.detEpsilon()) {
		t.Errorf("IsInside(%v, unit cube) = false, want true", inside)
	}
	if IsInside(probeFrom(outside), mesh, Options{}.detEpsilon()) {
		t.Errorf("IsInside(%v, unit cube) = true, want false", outside)
	}
}

func TestLocalizedAsymmetricIntersectAgreesWithAsymmetricOnOverlap(t *testing.T) {
	a := geom.GenerateNormals(perturbed(geom.UnitCube()))
	b := geom.GenerateNormals(perturbed(translate(geom.UnitCube(), ms3.Vec{X: 0.5, Y: 0, Z: 0})))
	counted := AsymmetricIntersect(a, b, Options{}) + AsymmetricIntersect(b, a, Options{})
	localizedAB, hitAB := LocalizedAsymmetricIntersect(a, b, Options{})
	localizedBA, hitBA := LocalizedAsymmetricIntersect(b, a, Options{})
	if !hitAB || !hitBA {
		t.Fatalf("expected both directions to report a crossing, got hitAB=%v hitBA=%v", hitAB, hitBA)
	}
	if math32.Abs(counted-(localizedAB+localizedBA)) > 1e-2 {
		t.Errorf("counted sum = %v, localized sum = %v, want agreement", counted, localizedAB+localizedBA)
	}
}

func TestLocalizedAsymmetricIntersectNoCrossingOnDisjointMeshes(t *testing.T) {
	a := geom.GenerateNormals(geom.UnitCube())
	b := geom.GenerateNormals(translate(geom.UnitCube(), ms3.Vec{X: 10, Y: 10, Z: 10}))
	sum, hit := LocalizedAsymmetricIntersect(a, b, Options{})
	if hit {
		t.Errorf("LocalizedAsymmetricIntersect(disjoint cubes) reported a crossing, want none")
	}
	if sum != 0 {
		t.Errorf("LocalizedAsymmetricIntersect(disjoint cubes) sum = %v, want 0", sum)
	}
}

func TestSumPartialsMatchesSequentialSum(t *testing.T) {
	parts := []float32{1, 2, 3, 4, 5}
	var want float32
	for _, p := range parts {
		want += p
	}
	got := sumPartials(parts)
	if math32.Abs(got-want) > 1e-4 {
		t.Errorf("sumPartials(%v) = %v, want %v", parts, got, want)
	}
}
