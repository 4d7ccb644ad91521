package pass

import (
	"fmt"
	"sync"

	"meshvol/eval"
	"meshvol/geom"
)

// IsInside reports whether inner is contained in outer by shooting a ray
// along the first directed side of inner and counting, across every
// triangle of outer, how many crossings fall behind the ray's start
// (parameter<0); odd parity means inner's first vertex is inside outer.
// Used as the localized pass's full-containment fallback when no side of
// either mesh crosses the other mesh at all.
func IsInside(inner, outer geom.Mesh, detEps float32) bool {
	if len(inner) == 0 || len(outer) == 0 {
		return false
	}
	side := geom.ExtractSide(inner[0], 0)
	var count eval.Count
	for _, t := range outer {
		eval.IntersectLineTriangle(side.Segment, t.Triangle(), detEps, &count)
	}
	return count.StartInside()
}

// assignLocation records that unified vertex id was classified as inside
// (or outside, if !inside) by some side's nearest-crossing test. A vertex
// still unknown takes the classification unconditionally. A vertex already
// classified the same way is untouched. A vertex classified the other way
// is a numerical inconsistency across sides sharing the vertex: if strict
// is set this aborts with a diagnostic (spec's debug mode), otherwise the
// new write wins.
func assignLocation(locations []geom.VertexLocation, id int, inside, strict bool) {
	want := geom.LocationOutside
	if inside {
		want = geom.LocationInside
	}
	switch locations[id] {
	case geom.LocationUnknown:
		locations[id] = want
	case want:
		// already agrees
	default:
		if strict {
			panic(fmt.Sprintf("meshvol: inconsistent localized classification at unified vertex %d: had %v, this side says %v", id, locations[id], want))
		}
		locations[id] = want
	}
}

// propagateInside floods the "inside" classification across adjacency from
// every vertex already marked inside to any neighbor still unknown. A
// segment between two mesh vertices that never crossed the other mesh
// cannot change inside/outside state along the way, so this never needs to
// cross an edge that carried an intersection: those edges' endpoints are
// already both classified by assignLocation before propagation runs.
// Vertices marked outside never propagate and are never overwritten;
// vertices that stay unknown contribute no endpoint term.
func propagateInside(adjacency geom.AdjacencyList, locations []geom.VertexLocation) {
	queue := make([]int, 0, len(locations))
	for i, loc := range locations {
		if loc == geom.LocationInside {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, n := range adjacency[v] {
			if locations[n] == geom.LocationUnknown {
				locations[n] = geom.LocationInside
				queue = append(queue, n)
			}
		}
	}
}

// LocalizedAsymmetricIntersect enumerates every directed side of a against
// every triangle of b. Every on-segment crossing contributes the same
// trilinear intersection terms the counted asymmetric pass does; in
// addition, each side's nearest crossing (if any) classifies its Start as
// inside/outside b and its End by parity from there. Vertices whose every
// incident side missed b entirely are classified instead by flooding the
// "inside" tag along a's own vertex adjacency, then a second sweep emits
// the endpoint term for every side whose unified endpoint ended up
// classified inside. Returns the summed term contribution and whether any
// side of a crossed b at all.
func LocalizedAsymmetricIntersect(a, b geom.Mesh, opts Options) (sum float32, anyIntersection bool) {
	detEps := opts.detEpsilon()
	sides := enumerateSides(a)
	if len(sides) == 0 {
		return 0, false
	}

	sideSums := make([]float32, len(sides))
	sideCounts := make([]eval.LocalizedCount, len(sides))

	workers := opts.workers()
	if workers > len(sides) {
		workers = len(sides)
	}
	jobs := make(chan int, len(sides))
	for i := range sides {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				side := sides[i].side
				var local float32
				var c eval.LocalizedCount
				for _, hit := range b {
					local += eval.LocalIntersectLineTriangle(side.Segment, side.N, hit, detEps, &c, opts.Collector)
				}
				sideSums[i] = local
				sideCounts[i] = c
			}
		}()
	}
	wg.Wait()

	cornerIndex, adjacency := geom.UnifyVertices(a)
	locations := make([]geom.VertexLocation, len(adjacency))

	var intersectionSum float32
	for i, c := range sideCounts {
		intersectionSum += sideSums[i]
		if c.OnSegment == 0 {
			continue
		}
		anyIntersection = true
		triIdx, corner := i/3, i%3
		startID := cornerIndex[triIdx][corner]
		endID := cornerIndex[triIdx][(corner+1)%3]
		startInside := c.IsStartInside
		endInside := startInside != (c.OnSegment%2 == 1)
		assignLocation(locations, startID, startInside, opts.StrictConsistency)
		assignLocation(locations, endID, endInside, opts.StrictConsistency)
	}

	propagateInside(adjacency, locations)

	var endpointSum float32
	for i, sw := range sides {
		triIdx, corner := i/3, i%3
		startID := cornerIndex[triIdx][corner]
		endID := cornerIndex[triIdx][(corner+1)%3]
		startInside := locations[startID] == geom.LocationInside
		endInside := locations[endID] == geom.LocationInside
		endpointSum += eval.EvaluateLineIntersection(sw.side, startInside, endInside, opts.Collector)
	}

	return intersectionSum + endpointSum, anyIntersection
}
