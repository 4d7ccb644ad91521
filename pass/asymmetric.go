package pass

import (
	"runtime"
	"sync"

	"github.com/soypat/geometry/ms3"

	"meshvol/eval"
	"meshvol/geom"
)

func defaultWorkers() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		return 1
	}
	return n
}

// sideWork wraps a TriangleSide so work batches can be handed to workers by
// slice index.
type sideWork struct {
	side geom.TriangleSide
}

// enumerateSides returns every directed side of every triangle in mesh,
// three sides per triangle, triangles in mesh order.
func enumerateSides(mesh geom.Mesh) []sideWork {
	out := make([]sideWork, 0, len(mesh)*3)
	for _, t := range mesh {
		for s := 0; s < 3; s++ {
			out = append(out, sideWork{side: geom.ExtractSide(t, s)})
		}
	}
	return out
}

// intersectSideAgainstMesh solves side against every triangle of mesh,
// accumulating both the ray-parity bucket counts and the trilinear term
// sum for crossings landing on the segment itself, then adds the endpoint
// term(s) for whichever of side's two ends the accumulated parity
// classifies as inside mesh.
func intersectSideAgainstMesh(side geom.TriangleSide, mesh geom.Mesh, detEps float32, collector eval.TermCollector) (sum float32, count eval.Count) {
	lineDir := ms3.Sub(side.End, side.Start)
	for _, hit := range mesh {
		sol, ok := eval.Solve(side.Segment, hit.Triangle(), detEps)
		if !ok || !sol.InTriangle() {
			continue
		}
		switch {
		case sol.S < 0:
			count.BeforeSegment++
		case sol.S <= 1:
			count.OnSegment++
			p := side.Interpolate(sol.S)
			sum += eval.GenerateIntersectionTerms(p, lineDir, side.N, hit.N, collector)
		}
	}
	sum += eval.EvaluateLineIntersection(side, count.StartInside(), count.EndInside(), collector)
	return sum, count
}

// AsymmetricIntersect enumerates every directed side of mesh a against
// every triangle of mesh b, returning the sum of trilinear terms
// contributed by all on-segment crossings plus the endpoint terms of every
// side end that ray parity classifies inside b. Work is split into
// contiguous side batches across opts.workers() goroutines; each batch's
// partial sum is stored by batch index and combined afterward by
// sumPartials in fixed side order rather than a single shared atomic, so
// the result is reproducible regardless of goroutine scheduling.
func AsymmetricIntersect(a, b geom.Mesh, opts Options) float32 {
	sides := enumerateSides(a)
	if len(sides) == 0 {
		return 0
	}
	workers := opts.workers()
	if workers > len(sides) {
		workers = len(sides)
	}
	detEps := opts.detEpsilon()
	partials := make([]float32, workers)

	type job struct {
		idx, lo, hi int
	}
	jobs := make(chan job, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				var local float32
				for i := j.lo; i < j.hi; i++ {
					s, _ := intersectSideAgainstMesh(sides[i].side, b, detEps, opts.Collector)
					local += s
				}
				partials[j.idx] = local
			}
		}()
	}
	batch := (len(sides) + workers - 1) / workers
	for idx, lo := 0, 0; lo < len(sides); idx, lo = idx+1, lo+batch {
		hi := lo + batch
		if hi > len(sides) {
			hi = len(sides)
		}
		jobs <- job{idx: idx, lo: lo, hi: hi}
	}
	close(jobs)
	wg.Wait()

	return sumPartials(partials)
}

// sumPartials combines worker partial sums via a fixed pairwise tree
// reduction instead of a running accumulator, so floating-point rounding
// is identical across runs regardless of how work was scheduled.
func sumPartials(partials []float32) float32 {
	if len(partials) == 0 {
		return 0
	}
	for len(partials) > 1 {
		next := make([]float32, (len(partials)+1)/2)
		for i := range next {
			lo := 2 * i
			hi := lo + 1
			if hi < len(partials) {
				next[i] = partials[lo] + partials[hi]
			} else {
				next[i] = partials[lo]
			}
		}
		partials = next
	}
	return partials[0]
}
