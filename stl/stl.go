// Package stl loads triangle meshes from the STL format (ASCII and binary),
// the one mesh-loading collaborator this module ships, since nothing in
// the example pack carries an existing STL or mesh-format library.
package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/soypat/geometry/ms3"

	"meshvol/geom"
)

// Load reads the mesh at path, choosing between the binary and ASCII STL
// readers by a content check rather than the "solid" header: that word is
// not conclusive since many binary files also start with it in their
// header comment, so Load does not look at it. It reads the file as binary
// when the declared binary triangle count matches the file size, and falls
// back to the ASCII reader otherwise.
func Load(path string) ([]geom.Triangle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}

	header := make([]byte, 84)
	if _, err := io.ReadFull(f, header); err == nil {
		count := binary.LittleEndian.Uint32(header[80:84])
		expected := int64(84) + int64(count)*50
		if expected == info.Size() {
			if _, err := f.Seek(84, io.SeekStart); err != nil {
				return nil, fmt.Errorf("stl: %w", err)
			}
			return loadBinary(f, int(count))
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}
	return loadASCII(f)
}

func loadBinary(r io.Reader, count int) ([]geom.Triangle, error) {
	out := make([]geom.Triangle, 0, count)
	var rec [50]byte
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, fmt.Errorf("stl: reading triangle %d: %w", i, err)
		}
		// rec[0:12] is the facet normal, unused: geom.GenerateNormals
		// recomputes it from vertex order instead of trusting the file.
		a := readVec(rec[12:24])
		b := readVec(rec[24:36])
		c := readVec(rec[36:48])
		out = append(out, geom.Triangle{A: a, B: b, C: c})
	}
	return out, nil
}

func readVec(b []byte) ms3.Vec {
	var v [3]float32
	for i := 0; i < 3; i++ {
		bits := binary.LittleEndian.Uint32(b[i*4 : i*4+4])
		v[i] = math.Float32frombits(bits)
	}
	return ms3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func loadASCII(f *os.File) ([]geom.Triangle, error) {
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var out []geom.Triangle
	var verts [3][3]float32
	var vertCount int
	for scanner.Scan() {
		line := scanner.Text()
		var x, y, z float32
		n, err := fmt.Sscanf(trimLeadingSpace(line), "vertex %f %f %f", &x, &y, &z)
		if err != nil || n != 3 {
			continue
		}
		verts[vertCount] = [3]float32{x, y, z}
		vertCount++
		if vertCount == 3 {
			out = append(out, geom.Triangle{
				A: toVec(verts[0]),
				B: toVec(verts[1]),
				C: toVec(verts[2]),
			})
			vertCount = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("stl: %w", err)
	}
	return out, nil
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return s[i:]
}

func toVec(a [3]float32) ms3.Vec {
	return ms3.Vec{X: a[0], Y: a[1], Z: a[2]}
}
