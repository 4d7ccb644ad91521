package stl

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func writeBinarySTL(t *testing.T, path string, triangles [][3][3]float32) {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, 80))
	binary.Write(&buf, binary.LittleEndian, uint32(len(triangles)))
	for _, tri := range triangles {
		binary.Write(&buf, binary.LittleEndian, [3]float32{0, 0, 0}) // normal, unused
		for _, v := range tri {
			binary.Write(&buf, binary.LittleEndian, v)
		}
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // attribute byte count
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
}

func TestLoadBinarySTL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.stl")
	writeBinarySTL(t, path, [][3][3]float32{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	})
	tris, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("len(tris) = %d, want 2", len(tris))
	}
	if tris[0].B.X != 1 {
		t.Errorf("tris[0].B.X = %v, want 1", tris[0].B.X)
	}
}

func TestLoadASCIISTL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.stl")
	contents := `solid test
facet normal 0 0 1
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 1 0
  endloop
endfacet
endsolid test
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing test fixture: %v", err)
	}
	tris, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tris) != 1 {
		t.Fatalf("len(tris) = %d, want 1", len(tris))
	}
	if tris[0].B.X != 1 {
		t.Errorf("tris[0].B.X = %v, want 1", tris[0].B.X)
	}
}
