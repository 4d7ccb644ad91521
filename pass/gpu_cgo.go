//go:build !tinygo && cgo

package pass

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.1-core/glgl"

	"meshvol/geom"
)

func init() {
	runtime.LockOSThread()
}

// intersectKernelSource is the GLSL compute kernel for the data-parallel
// accelerator backend's first pass, spec.md §5's "(side_id, triangle_id)"
// partitioning: one invocation solves one side against one triangle of the
// other mesh, exactly mirroring eval.Solve's Cramer's-rule system and
// eval.GenerateIntersectionTerms' three orientation-rule terms. On-segment
// crossings atomically add their trilinear term sum into a global
// accumulator via the compare-and-swap loop spec.md §9 documents as the
// portable fallback for hardware without native atomic float add; before-
// segment crossings atomically increment that side's integer counter using
// GLSL's native atomicAdd (ints, unlike floats, have a hardware atomic).
const intersectKernelSource = `#version 430
layout(local_size_x=64) in;
#define NSIDES %d
#define NTRIS %d
#define DET_EPS %g
layout(std430, binding=0) buffer SidesBuf { vec4 sides[NSIDES*3]; };
layout(std430, binding=1) buffer TrisBuf { vec4 tris[NTRIS*4]; };
layout(std430, binding=2) buffer CountsBuf { uint counts[NSIDES*2]; };
layout(std430, binding=3) buffer AccumBuf { uint accum[1]; };

void addTerm(float add) {
	uint old = accum[0];
	uint assumed;
	do {
		assumed = old;
		float newVal = uintBitsToFloat(assumed) + add;
		old = atomicCompSwap(accum[0], assumed, floatBitsToUint(newVal));
	} while (assumed != old);
}

vec3 orient(vec3 ref, vec3 v) {
	return dot(ref, v) < 0.0 ? -v : v;
}

float evalTerm(vec3 p, vec3 t, vec3 u, vec3 n) {
	return dot(p, t) * dot(p, u) * dot(p, n);
}

void main() {
	uint id = gl_GlobalInvocationID.x;
	if (id >= uint(NSIDES * NTRIS)) {
		return;
	}
	uint sideIdx = id / uint(NTRIS);
	uint triIdx = id %% uint(NTRIS);

	vec3 start = sides[sideIdx*3+0].xyz;
	vec3 end = sides[sideIdx*3+1].xyz;
	vec3 lineNormal = sides[sideIdx*3+2].xyz;

	vec3 a = tris[triIdx*4+0].xyz;
	vec3 b = tris[triIdx*4+1].xyz;
	vec3 c = tris[triIdx*4+2].xyz;
	vec3 triNormal = tris[triIdx*4+3].xyz;

	vec3 col0 = b - a;
	vec3 col1 = c - a;
	vec3 col2 = -(end - start);
	float det = dot(col0, cross(col1, col2));
	if (abs(det) < DET_EPS) {
		return;
	}
	float invDet = 1.0 / det;
	vec3 target = start - a;
	float ubar = dot(target, cross(col1, col2)) * invDet;
	float vbar = dot(col0, cross(target, col2)) * invDet;
	float s = dot(col0, cross(col1, target)) * invDet;
	if (ubar < 0.0 || vbar < 0.0 || ubar+vbar > 1.0) {
		return;
	}

	if (s < 0.0) {
		atomicAdd(counts[sideIdx*2+0], 1u);
		return;
	}
	if (s > 1.0) {
		return;
	}
	atomicAdd(counts[sideIdx*2+1], 1u);

	vec3 p = mix(start, end, s);
	vec3 lineDir = end - start;
	vec3 insideDir = normalize(cross(lineNormal, lineDir));

	float sum = 0.0;
	{
		vec3 t = orient(-triNormal, normalize(lineDir));
		sum += evalTerm(p, t, insideDir, lineNormal);
	}
	vec3 t2 = orient(insideDir, normalize(cross(lineNormal, triNormal)));
	{
		vec3 u2 = orient(-triNormal, normalize(cross(lineNormal, t2)));
		sum += evalTerm(p, t2, u2, lineNormal);
	}
	{
		vec3 u3 = orient(-lineNormal, normalize(cross(triNormal, t2)));
		sum += evalTerm(p, t2, u3, triNormal);
	}
	addTerm(sum);
}
`

// endpointKernelSource is the accelerator backend's second pass: one
// invocation per side, deriving start/end inside-classification from the
// first kernel's before/on-segment counts (the same parity rule as
// eval.Count) and atomically adding eval.EvaluateLineIntersection's
// endpoint term into the same global accumulator — the sparse-reduction
// option spec.md §5 allows for this kernel's results.
const endpointKernelSource = `#version 430
layout(local_size_x=64) in;
#define NSIDES %d
layout(std430, binding=0) buffer SidesBuf { vec4 sides[NSIDES*3]; };
layout(std430, binding=2) buffer CountsBuf { uint counts[NSIDES*2]; };
layout(std430, binding=3) buffer AccumBuf { uint accum[1]; };

void addTerm(float add) {
	uint old = accum[0];
	uint assumed;
	do {
		assumed = old;
		float newVal = uintBitsToFloat(assumed) + add;
		old = atomicCompSwap(accum[0], assumed, floatBitsToUint(newVal));
	} while (assumed != old);
}

float evalTerm(vec3 p, vec3 t, vec3 u, vec3 n) {
	return dot(p, t) * dot(p, u) * dot(p, n);
}

void main() {
	uint sideIdx = gl_GlobalInvocationID.x;
	if (sideIdx >= uint(NSIDES)) {
		return;
	}
	uint before = counts[sideIdx*2+0];
	uint on = counts[sideIdx*2+1];
	bool startInside = (before %% 2u) == 1u;
	bool endInside = ((before + on) %% 2u) == 1u;
	if (!startInside && !endInside) {
		return;
	}

	vec3 start = sides[sideIdx*3+0].xyz;
	vec3 end = sides[sideIdx*3+1].xyz;
	vec3 n = sides[sideIdx*3+2].xyz;

	float sum = 0.0;
	if (startInside) {
		vec3 t = normalize(end - start);
		vec3 u = cross(n, t);
		sum += evalTerm(start, t, u, n);
	}
	if (endInside) {
		vec3 t = normalize(start - end);
		vec3 u = -cross(n, t);
		sum += evalTerm(end, t, u, n);
	}
	addTerm(sum);
}
`

// GPUAccelerator runs the asymmetric pass's (side, triangle) enumeration as
// two GLSL compute dispatches against a hidden GLFW/OpenGL 4.3 context,
// instead of the CPU goroutine pool in asymmetric.go.
type GPUAccelerator struct {
	window *glfw.Window
}

// NewGPUAccelerator creates a hidden 1x1 GLFW window with a current OpenGL
// 4.3 context, the minimum GL version that supports compute shaders and
// SSBOs.
func NewGPUAccelerator() (*GPUAccelerator, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("meshvol: glfw init: %w", err)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	win, err := glfw.CreateWindow(1, 1, "meshvol", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("meshvol: glfw window: %w", err)
	}
	win.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("meshvol: gl init: %w", err)
	}
	return &GPUAccelerator{window: win}, nil
}

// Close destroys the accelerator's hidden window and GL context.
func (g *GPUAccelerator) Close() {
	if g.window != nil {
		g.window.Destroy()
	}
}

// flattenSides packs every directed side of mesh into 3 vec4s each (start,
// end, owning-triangle normal; .w unused, kept for std430's vec4 array
// stride) for upload as an SSBO.
func flattenSides(mesh geom.Mesh) ([]float32, int) {
	sides := enumerateSides(mesh)
	buf := make([]float32, len(sides)*12)
	for i, sw := range sides {
		s := sw.side
		off := i * 12
		buf[off+0], buf[off+1], buf[off+2] = s.Start.X, s.Start.Y, s.Start.Z
		buf[off+4], buf[off+5], buf[off+6] = s.End.X, s.End.Y, s.End.Z
		buf[off+8], buf[off+9], buf[off+10] = s.N.X, s.N.Y, s.N.Z
	}
	return buf, len(sides)
}

// flattenTriangles packs every triangle of mesh into 4 vec4s each (a, b, c,
// outward normal) for upload as an SSBO.
func flattenTriangles(mesh geom.Mesh) ([]float32, int) {
	buf := make([]float32, len(mesh)*16)
	for i, t := range mesh {
		off := i * 16
		buf[off+0], buf[off+1], buf[off+2] = t.A.X, t.A.Y, t.A.Z
		buf[off+4], buf[off+5], buf[off+6] = t.B.X, t.B.Y, t.B.Z
		buf[off+8], buf[off+9], buf[off+10] = t.C.X, t.C.Y, t.C.Z
		buf[off+12], buf[off+13], buf[off+14] = t.N.X, t.N.Y, t.N.Z
	}
	return buf, len(mesh)
}

// AsymmetricIntersect dispatches the intersection kernel over every
// (side of a, triangle of b) pair, then the endpoint kernel over every
// side of a, reading back the single accumulated trilinear term sum. Mesh
// sizes are baked into both shaders' source as #define constants (the
// same per-call shader-text specialization the teacher's own
// gleval.Batcher.runBinop uses for its invocation count) rather than
// passed as uniforms, since a fresh program is compiled per call anyway.
func (g *GPUAccelerator) AsymmetricIntersect(a, b geom.Mesh, opts Options) (float32, error) {
	sidesBuf, nSides := flattenSides(a)
	if nSides == 0 {
		return 0, nil
	}
	trisBuf, nTris := flattenTriangles(b)
	if nTris == 0 {
		return 0, nil
	}
	counts := make([]uint32, nSides*2)
	accum := make([]uint32, 1)

	intersectProg, err := glgl.CompileProgram(glgl.ShaderSource{
		Compute: fmt.Sprintf(intersectKernelSource, nSides, nTris, opts.detEpsilon()),
	})
	if err != nil {
		return 0, fmt.Errorf("meshvol: compile intersect kernel: %w", err)
	}
	defer intersectProg.Delete()

	endpointProg, err := glgl.CompileProgram(glgl.ShaderSource{
		Compute: fmt.Sprintf(endpointKernelSource, nSides),
	})
	if err != nil {
		return 0, fmt.Errorf("meshvol: compile endpoint kernel: %w", err)
	}
	defer endpointProg.Delete()

	var p runtime.Pinner
	sidesSSBO := loadSSBO(sidesBuf, 0, gl.STATIC_DRAW)
	p.Pin(&sidesSSBO)
	defer gl.DeleteBuffers(1, &sidesSSBO)
	trisSSBO := loadSSBO(trisBuf, 1, gl.STATIC_DRAW)
	p.Pin(&trisSSBO)
	defer gl.DeleteBuffers(1, &trisSSBO)
	countsSSBO := loadSSBO(counts, 2, gl.DYNAMIC_READ)
	p.Pin(&countsSSBO)
	defer gl.DeleteBuffers(1, &countsSSBO)
	accumSSBO := loadSSBO(accum, 3, gl.DYNAMIC_READ)
	p.Pin(&accumSSBO)
	defer gl.DeleteBuffers(1, &accumSSBO)
	p.Unpin()

	if err := glgl.Err(); err != nil {
		return 0, fmt.Errorf("meshvol: uploading GPU buffers: %w", err)
	}

	intersectProg.Bind()
	nPairWork := (nSides*nTris + 63) / 64
	gl.DispatchCompute(uint32(nPairWork), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
	intersectProg.Unbind()
	if err := glgl.Err(); err != nil {
		return 0, fmt.Errorf("meshvol: dispatching intersect kernel: %w", err)
	}

	endpointProg.Bind()
	nSideWork := (nSides + 63) / 64
	gl.DispatchCompute(uint32(nSideWork), 1, 1)
	gl.MemoryBarrier(gl.SHADER_STORAGE_BARRIER_BIT)
	endpointProg.Unbind()
	if err := glgl.Err(); err != nil {
		return 0, fmt.Errorf("meshvol: dispatching endpoint kernel: %w", err)
	}

	if err := copySSBO(accum, accumSSBO); err != nil {
		return 0, fmt.Errorf("meshvol: reading back accumulator: %w", err)
	}
	return math.Float32frombits(accum[0]), nil
}

func elemSize[T any]() int {
	var z T
	return int(unsafe.Sizeof(z))
}

func loadSSBO[T any](slice []T, base uint32, usage uint32) (ssbo uint32) {
	var p runtime.Pinner
	p.Pin(&ssbo)
	gl.GenBuffers(1, &ssbo)
	p.Unpin()
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	size := len(slice) * elemSize[T]()
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, unsafe.Pointer(&slice[0]), usage)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, base, ssbo)
	return ssbo
}

func copySSBO[T any](dst []T, ssbo uint32) error {
	singleSize := elemSize[T]()
	bufSize := singleSize * len(dst)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, ssbo)
	ptr := gl.MapBufferRange(gl.SHADER_STORAGE_BUFFER, 0, bufSize, gl.MAP_READ_BIT)
	if ptr == nil {
		if err := glgl.Err(); err != nil {
			return err
		}
		return fmt.Errorf("meshvol: failed to map SSBO buffer during copy")
	}
	defer gl.UnmapBuffer(gl.SHADER_STORAGE_BUFFER)
	gpuBytes := unsafe.Slice((*byte)(ptr), bufSize)
	bufBytes := unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), bufSize)
	copy(bufBytes, gpuBytes)
	return glgl.Err()
}
