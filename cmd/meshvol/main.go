// Command meshvol computes the intersection volume of two triangle
// meshes, loaded from STL files or generated from the built-in fixtures:
// flag parsing, optional GPU backend, and a timed run logged to stderr.
package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/soypat/geometry/ms3"

	"meshvol"
	"meshvol/geom"
	"meshvol/pass"
	"meshvol/stl"
	"meshvol/visualize"
)

func main() {
	runtime.LockOSThread()

	var (
		meshAPath = flag.String("a", "", "STL path for mesh A (default: unit cube)")
		meshBPath = flag.String("b", "", "STL path for mesh B (default: unit cube offset by 0.5)")
		localized = flag.Bool("localized", false, "use the localized (adjacency-propagated) algorithm instead of full ray-parity counting")
		gpu       = flag.Bool("gpu", false, "use the GPU accelerator backend for the asymmetric pass")
		workers   = flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		svgPath   = flag.String("svg", "", "write an SVG trace of every evaluated trilinear term to this path")
	)
	flag.Parse()

	meshA, err := loadOrFixture(*meshAPath, geom.UnitCube())
	if err != nil {
		log.Fatalf("meshvol: loading mesh A: %v", err)
	}
	meshB, err := loadOrFixture(*meshBPath, translate(geom.UnitCube(), ms3.Vec{X: 0.5, Y: 0.5, Z: 0.5}))
	if err != nil {
		log.Fatalf("meshvol: loading mesh B: %v", err)
	}

	a := meshvol.GenerateNormals(meshA)
	b := meshvol.GenerateNormals(meshB)

	opts := pass.Options{Workers: *workers}

	if *svgPath != "" {
		f, err := os.Create(*svgPath)
		if err != nil {
			log.Fatalf("meshvol: creating SVG trace file: %v", err)
		}
		defer f.Close()
		collector := visualize.NewSVGCollector(f, 800, 800, 200)
		defer func() {
			collector.Close()
			log.Printf("wrote %d terms to %s", collector.Count(), *svgPath)
		}()
		opts.Collector = collector
	}

	if *gpu {
		accel, err := pass.NewGPUAccelerator()
		if err != nil {
			log.Fatalf("meshvol: GPU accelerator unavailable: %v", err)
		}
		defer accel.Close()
		start := time.Now()
		sumAB, err := accel.AsymmetricIntersect(a, b, opts)
		if err != nil {
			log.Fatalf("meshvol: GPU pass failed: %v", err)
		}
		sumBA, err := accel.AsymmetricIntersect(b, a, opts)
		if err != nil {
			log.Fatalf("meshvol: GPU pass failed: %v", err)
		}
		volume := (sumAB + sumBA) / 6
		log.Printf("intersection volume = %g (gpu, %s)", volume, time.Since(start))
		return
	}

	start := time.Now()
	var volume float32
	if *localized {
		volume = meshvol.LocalizedIntersectionVolume(a, b, opts)
	} else {
		volume = meshvol.IntersectionVolume(a, b, opts)
	}
	log.Printf("intersection volume = %g (%s)", volume, time.Since(start))
}

func loadOrFixture(path string, fixture []geom.Triangle) ([]geom.Triangle, error) {
	if path == "" {
		return fixture, nil
	}
	return stl.Load(path)
}

func translate(triangles []geom.Triangle, offset ms3.Vec) []geom.Triangle {
	out := make([]geom.Triangle, len(triangles))
	for i, t := range triangles {
		out[i] = geom.Triangle{
			A: ms3.Add(t.A, offset),
			B: ms3.Add(t.B, offset),
			C: ms3.Add(t.C, offset),
		}
	}
	return out
}
