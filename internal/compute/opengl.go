package compute

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/san-kum/bounce/internal/dynamo"
	"github.com/san-kum/bounce/internal/render"
)

// glBodyFloats is the std430 size of one body in floats:
// vec2 center, vec2 velocity, vec4 color, float radius, int mass, vec2 pad.
const glBodyFloats = 12

const renderVertexShader = `#version 430 core
layout(location = 0) in vec2 position;
void main() {
	gl_Position = vec4(position, 0.0, 1.0);
}
`

const renderFragmentShader = `#version 430 core
uniform vec4 color;
out vec4 fragColor;
void main() {
	fragColor = color;
}
`

// OpenGLBackend runs the kernels as compute shaders in the current GL context.
// The vertex buffer it writes is the one it draws from.
type OpenGLBackend struct {
	workgroup int
	points    int
	log       *log.Logger

	programs      map[string]uint32
	renderProgram uint32

	ssboBodies uint32
	ssboPairs  uint32
	ssboHits   uint32
	vbo        uint32
	vao        uint32

	numBodies int
	numPairs  int
	buf       *render.SharedBuffer
	closed    bool
}

// OpenGLPlatform describes the GPU behind the current GL context. It must be
// called on the thread that owns the context, after the window is created.
func OpenGLPlatform() (Platform, error) {
	if err := gl.Init(); err != nil {
		return Platform{}, fmt.Errorf("%w: init opengl: %w", dynamo.ErrNoPlatform, err)
	}

	vendor := gl.GoStr(gl.GetString(gl.VENDOR))
	version := gl.GoStr(gl.GetString(gl.VERSION))
	renderer := gl.GoStr(gl.GetString(gl.RENDERER))

	var invocations int32
	gl.GetIntegerv(gl.MAX_COMPUTE_WORK_GROUP_INVOCATIONS, &invocations)

	info := DeviceInfo{
		Name:         renderer,
		Vendor:       vendor,
		Version:      version,
		Type:         DeviceGPU,
		ComputeUnits: int(invocations),
	}
	return Platform{
		Name:    "OpenGL",
		Vendor:  vendor,
		Version: version,
		Devices: []Device{
			NewDevice(info, func(opts Options) (Backend, error) {
				return NewOpenGLBackend(opts)
			}),
		},
	}, nil
}

func NewOpenGLBackend(opts Options) (*OpenGLBackend, error) {
	opts = opts.withDefaults()
	if opts.Resolve != ResolveOrdered {
		return nil, &dynamo.InputError{
			Field:  "resolve",
			Value:  string(opts.Resolve),
			Reason: "the opengl device only supports ordered",
		}
	}
	return &OpenGLBackend{
		workgroup: opts.Workgroup,
		points:    opts.Points,
		log:       opts.Logger.WithPrefix("opengl"),
		programs:  make(map[string]uint32),
	}, nil
}

func (g *OpenGLBackend) Name() string { return "opengl" }

func (g *OpenGLBackend) Upload(bodies dynamo.State, pairs dynamo.PairIndex) error {
	if g.closed {
		return &dynamo.ResourceError{Resource: "device bodies", Op: "upload", Err: errClosed}
	}
	g.numBodies, g.numPairs = len(bodies), len(pairs)

	packed, flat := packBodies(bodies), pairs.Flatten()
	var err error
	if g.ssboBodies, err = newBuffer("device bodies", 0, len(packed)*4, packed); err != nil {
		return err
	}
	if g.ssboPairs, err = newBuffer("device pairs", 1, len(flat)*4, flat); err != nil {
		return err
	}
	if g.ssboHits, err = newBuffer("collision counter", 3, 4, []uint32{0}); err != nil {
		return err
	}

	size := render.VertexFloats(g.numBodies, g.points) * 4
	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, max(size, 4), nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, 2, g.vbo)
	if err := glError("vertex buffer", "allocate"); err != nil {
		return err
	}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 0, 0)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	g.buf = render.NewDeviceBuffer(g.vbo, g.points)
	g.log.Debug("uploaded", "bodies", g.numBodies, "pairs", g.numPairs, "vbo_bytes", size)
	return glError("vertex array", "allocate")
}

// newBuffer allocates a storage buffer of size bytes at binding and fills it
// from data when data is non-empty.
func newBuffer(resource string, binding uint32, size int, data any) (uint32, error) {
	var id uint32
	gl.GenBuffers(1, &id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, id)
	if size == 0 {
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, 4, nil, gl.DYNAMIC_COPY)
	} else {
		gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, gl.Ptr(data), gl.DYNAMIC_COPY)
	}
	gl.BindBufferBase(gl.SHADER_STORAGE_BUFFER, binding, id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	return id, glError(resource, "upload")
}

func packBodies(bodies dynamo.State) []float32 {
	data := make([]float32, len(bodies)*glBodyFloats)
	for i, b := range bodies {
		o := data[i*glBodyFloats : (i+1)*glBodyFloats]
		o[0], o[1] = float32(b.Center.X), float32(b.Center.Y)
		o[2], o[3] = float32(b.Velocity.X), float32(b.Velocity.Y)
		o[4], o[5], o[6], o[7] = b.Color.R, b.Color.G, b.Color.B, b.Color.A
		o[8] = float32(b.Radius)
		o[9] = math.Float32frombits(uint32(int32(b.Mass)))
	}
	return data
}

func unpackBodies(data []float32, dst dynamo.State) {
	for i := range dst {
		o := data[i*glBodyFloats : (i+1)*glBodyFloats]
		dst[i].Center.X, dst[i].Center.Y = float64(o[0]), float64(o[1])
		dst[i].Velocity.X, dst[i].Velocity.Y = float64(o[2]), float64(o[3])
		dst[i].Color = dynamo.Color{R: o[4], G: o[5], B: o[6], A: o[7]}
		dst[i].Radius = float64(o[8])
		dst[i].Mass = int(int32(math.Float32bits(o[9])))
	}
}

func glError(resource, op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return &dynamo.ResourceError{Resource: resource, Op: op, Err: fmt.Errorf("gl error 0x%x", code)}
	}
	return nil
}

// Build compiles one compute program per kernel section of src plus the
// program that draws the vertex buffer.
func (g *OpenGLBackend) Build(src *KernelSource) error {
	if src == nil {
		return &dynamo.BuildError{Log: "opengl device needs a kernel source file"}
	}
	if err := src.Validate(); err != nil {
		return err
	}
	defines := map[string]string{"WORKGROUP": strconv.Itoa(g.workgroup)}
	for _, k := range Kernels {
		program, err := createComputeProgram(k, src.Section(k, defines))
		if err != nil {
			return err
		}
		g.programs[k] = program
		g.log.Debug("kernel built", "kernel", k, "source", src.Path)
	}

	program, err := createRenderProgram(renderVertexShader, renderFragmentShader)
	if err != nil {
		return err
	}
	g.renderProgram = program
	return nil
}

func compileShader(kernel string, kind uint32, source string) (uint32, error) {
	shader := gl.CreateShader(kind)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		buildLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(buildLog))
		gl.DeleteShader(shader)
		return 0, &dynamo.BuildError{Kernel: kernel, Log: strings.TrimRight(buildLog, "\x00")}
	}
	return shader, nil
}

func linkProgram(kernel string, shaders ...uint32) (uint32, error) {
	program := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(program, s)
	}
	gl.LinkProgram(program)
	for _, s := range shaders {
		gl.DeleteShader(s)
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		linkLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(linkLog))
		gl.DeleteProgram(program)
		return 0, &dynamo.BuildError{Kernel: kernel, Log: strings.TrimRight(linkLog, "\x00")}
	}
	return program, nil
}

func createComputeProgram(kernel, source string) (uint32, error) {
	shader, err := compileShader(kernel, gl.COMPUTE_SHADER, source)
	if err != nil {
		return 0, err
	}
	return linkProgram(kernel, shader)
}

func createRenderProgram(vertex, fragment string) (uint32, error) {
	vs, err := compileShader("render.vert", gl.VERTEX_SHADER, vertex)
	if err != nil {
		return 0, err
	}
	fs, err := compileShader("render.frag", gl.FRAGMENT_SHADER, fragment)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, err
	}
	return linkProgram("render", vs, fs)
}

// dispatch runs kernel over items work items and waits until its storage
// writes are visible to the next command.
func (g *OpenGLBackend) dispatch(kernel string, items int, barrier uint32, uniforms func(program uint32)) error {
	if g.closed {
		return &dynamo.ResourceError{Resource: kernel, Op: "dispatch", Err: errClosed}
	}
	program, ok := g.programs[kernel]
	if !ok {
		return &dynamo.ResourceError{Resource: kernel, Op: "dispatch", Err: fmt.Errorf("kernel not built")}
	}
	if items == 0 {
		return nil
	}
	gl.UseProgram(program)
	if uniforms != nil {
		uniforms(program)
	}
	groups := (items + g.workgroup - 1) / g.workgroup
	gl.DispatchCompute(uint32(groups), 1, 1)
	gl.MemoryBarrier(barrier)
	gl.UseProgram(0)
	return glError(kernel, "dispatch")
}

func uniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (g *OpenGLBackend) WallPass(dt float64) error {
	return g.dispatch(KernelWallBounce, g.numBodies, gl.SHADER_STORAGE_BARRIER_BIT, func(p uint32) {
		gl.Uniform1f(uniform(p, "dt"), float32(dt))
		gl.Uniform1ui(uniform(p, "count"), uint32(g.numBodies))
	})
}

func (g *OpenGLBackend) PairPass() (int, error) {
	zero := []uint32{0}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, g.ssboHits)
	gl.BufferSubData(gl.SHADER_STORAGE_BUFFER, 0, 4, gl.Ptr(zero))

	err := g.dispatch(KernelBallBounce, g.numPairs, gl.SHADER_STORAGE_BARRIER_BIT|gl.BUFFER_UPDATE_BARRIER_BIT, func(p uint32) {
		gl.Uniform1ui(uniform(p, "count"), uint32(g.numPairs))
	})
	if err != nil {
		return 0, err
	}

	hits := []uint32{0}
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, g.ssboHits)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, 4, gl.Ptr(hits))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	return int(hits[0]), glError("collision counter", "read")
}

func (g *OpenGLBackend) ReadBodies(dst dynamo.State) error {
	if len(dst) != g.numBodies {
		return &dynamo.ResourceError{
			Resource: "device bodies",
			Op:       "read",
			Err:      fmt.Errorf("destination holds %d bodies, device holds %d", len(dst), g.numBodies),
		}
	}
	if g.numBodies == 0 {
		return nil
	}
	data := make([]float32, g.numBodies*glBodyFloats)
	gl.MemoryBarrier(gl.BUFFER_UPDATE_BARRIER_BIT)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, g.ssboBodies)
	gl.GetBufferSubData(gl.SHADER_STORAGE_BUFFER, 0, len(data)*4, gl.Ptr(data))
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)
	if err := glError("device bodies", "read"); err != nil {
		return err
	}
	unpackBodies(data, dst)
	return nil
}

// UpdateVertices runs update_vbo into the shared vertex buffer, which the
// caller must have acquired.
func (g *OpenGLBackend) UpdateVertices(buf *render.SharedBuffer) error {
	if buf.Handle() != g.vbo {
		return &dynamo.ResourceError{Resource: "vertex buffer", Op: KernelUpdateVBO, Err: fmt.Errorf("buffer %d is not shared with this device", buf.Handle())}
	}
	items := g.numBodies * g.points
	return g.dispatch(KernelUpdateVBO, items, gl.VERTEX_ATTRIB_ARRAY_BARRIER_BIT, func(p uint32) {
		gl.Uniform1ui(uniform(p, "count"), uint32(g.numBodies))
		gl.Uniform1ui(uniform(p, "points"), uint32(g.points))
	})
}

func (g *OpenGLBackend) SharedBuffer() (*render.SharedBuffer, error) {
	if g.buf == nil {
		return nil, &dynamo.ResourceError{Resource: "vertex buffer", Op: "share", Err: fmt.Errorf("nothing uploaded")}
	}
	return g.buf, nil
}

// DrawResident draws each circle of g as a triangle fan from the vertex
// buffer, without reading it back.
func (g *OpenGLBackend) DrawResident(geom *render.Geometry) error {
	if g.renderProgram == 0 {
		return &dynamo.ResourceError{Resource: "render program", Op: "draw", Err: fmt.Errorf("not built")}
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.UseProgram(g.renderProgram)
	loc := uniform(g.renderProgram, "color")
	gl.BindVertexArray(g.vao)
	for i, c := range geom.Colors {
		gl.Uniform4f(loc, c.R, c.G, c.B, c.A)
		gl.DrawArrays(gl.TRIANGLE_FAN, int32(i*geom.Points), int32(geom.Points))
	}
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	return glError("render program", "draw")
}

// Close deletes every GL object this backend created. It is safe to call more
// than once.
func (g *OpenGLBackend) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	for k, p := range g.programs {
		gl.DeleteProgram(p)
		delete(g.programs, k)
	}
	if g.renderProgram != 0 {
		gl.DeleteProgram(g.renderProgram)
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	for _, id := range []uint32{g.ssboBodies, g.ssboPairs, g.ssboHits, g.vbo} {
		if id != 0 {
			gl.DeleteBuffers(1, &id)
		}
	}
	g.buf = nil
	return glError("device", "release")
}
