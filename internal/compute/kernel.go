package compute

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/san-kum/bounce/internal/dynamo"
)

// Kernel names, in dispatch order.
const (
	KernelWallBounce = "wall_bounce"
	KernelBallBounce = "ball_bounce"
	KernelUpdateVBO  = "update_vbo"
)

var Kernels = []string{KernelWallBounce, KernelBallBounce, KernelUpdateVBO}

// DefaultKernelPath is where the kernel source ships relative to the repo root.
const DefaultKernelPath = "assets/kernels/bounce.comp"

var versionLine = regexp.MustCompile(`(?m)^\s*#version[^\n]*\n`)

// KernelSource is a kernel file holding one `#ifdef NAME` section per kernel,
// NAME being the upper-cased kernel name.
type KernelSource struct {
	Path string
	Text string
}

// LoadSource reads and validates a kernel file.
func LoadSource(path string) (*KernelSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dynamo.ResourceError{Resource: "kernel source " + path, Op: "read", Err: err}
	}
	src := &KernelSource{Path: path, Text: string(data)}
	if err := src.Validate(); err != nil {
		return nil, err
	}
	return src, nil
}

func macro(kernel string) string { return strings.ToUpper(kernel) }

// Has reports whether the source contains the section of kernel.
func (s *KernelSource) Has(kernel string) bool {
	return strings.Contains(s.Text, "#ifdef "+macro(kernel))
}

// Validate checks that every kernel has a section. The returned BuildError
// lists each missing kernel on its own log line.
func (s *KernelSource) Validate() error {
	var missing []string
	for _, k := range Kernels {
		if !s.Has(k) {
			missing = append(missing, fmt.Sprintf("%s: error: kernel %q not found (expected #ifdef %s)", s.Path, k, macro(k)))
		}
	}
	if len(missing) > 0 {
		return &dynamo.BuildError{Log: strings.Join(missing, "\n")}
	}
	return nil
}

// Section returns the source specialised for one kernel: the #version line,
// then the kernel macro and any extra defines, then the rest of the file.
func (s *KernelSource) Section(kernel string, defines map[string]string) string {
	var head strings.Builder
	head.WriteString("#define " + macro(kernel) + "\n")
	for _, k := range slices.Sorted(maps.Keys(defines)) {
		fmt.Fprintf(&head, "#define %s %s\n", k, defines[k])
	}

	loc := versionLine.FindStringIndex(s.Text)
	if loc == nil {
		return head.String() + s.Text
	}
	return s.Text[:loc[1]] + head.String() + s.Text[loc[1]:]
}
