// Package pass implements the whole-mesh algorithms that walk every side of
// one mesh against every triangle of another: the asymmetric intersection
// pass, the localized variant, and the CPU worker pool (with an optional
// GPU accelerator backend, see gpu_cgo.go/gpu_nocgo.go) that drives them.
package pass

import "meshvol/eval"

// Options configures a pass. The zero value is a usable non-strict pass
// with runtime.GOMAXPROCS(0) workers and no term collector.
type Options struct {
	// Workers is the number of goroutines processing sides concurrently.
	// Zero or negative means runtime.GOMAXPROCS(0).
	Workers int
	// StrictConsistency enables the localized pass's redundant
	// classification check instead of last-write-wins on conflicting
	// vertex-location writes.
	StrictConsistency bool
	// DetEpsilon overrides eval.DefaultDetEpsilon when non-zero.
	DetEpsilon float32
	// Collector, if non-nil, receives every trilinear term evaluated.
	Collector eval.TermCollector
}

func (o Options) detEpsilon() float32 {
	return o.DetEpsilonOrDefault()
}

// DetEpsilonOrDefault returns DetEpsilon, or eval.DefaultDetEpsilon if it
// was left at its zero value.
func (o Options) DetEpsilonOrDefault() float32 {
	if o.DetEpsilon != 0 {
		return o.DetEpsilon
	}
	return eval.DefaultDetEpsilon
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return defaultWorkers()
}
