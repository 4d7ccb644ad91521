// Package visualize renders the trilinear terms evaluated by package eval
// as SVG line segments, giving the debug term sink a concrete, inspectable
// output instead of a process-global buffer.
package visualize

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/soypat/geometry/ms3"
)

// SVGCollector implements eval.TermCollector, projecting each term's frame
// onto the XY plane and drawing it as a fixed-length line from the
// evaluation point p in the direction of t, colored by the sign of the
// term's value. Lines carry no label.
type SVGCollector struct {
	canvas        *svg.SVG
	width, height int
	scale         float32
	count         int
}

// NewSVGCollector starts an SVG document of the given pixel size written
// to w; callers must call Close when done collecting to emit the closing
// tag.
func NewSVGCollector(w io.Writer, width, height int, scale float32) *SVGCollector {
	canvas := svg.New(w)
	canvas.Start(width, height)
	return &SVGCollector{canvas: canvas, width: width, height: height, scale: scale}
}

func (c *SVGCollector) project(v ms3.Vec) (x, y int) {
	cx, cy := float32(c.width)/2, float32(c.height)/2
	return int(cx + v.X*c.scale), int(cy - v.Y*c.scale)
}

// Collect draws term (p,t,u,n,value) as a short line from p in the
// direction of t, colored green for a positive contribution and red for
// negative.
func (c *SVGCollector) Collect(p, t, u, n ms3.Vec, value float32) {
	x0, y0 := c.project(p)
	tip := ms3.Add(p, ms3.Scale(0.1, t))
	x1, y1 := c.project(tip)
	color := "green"
	if value < 0 {
		color = "red"
	}
	c.canvas.Line(x0, y0, x1, y1, fmt.Sprintf(`stroke:%s;stroke-width:1`, color))
	c.count++
}

// Count returns the number of terms collected so far.
func (c *SVGCollector) Count() int { return c.count }

// Close finishes the SVG document.
func (c *SVGCollector) Close() {
	c.canvas.End()
}
