package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation setup. Every one of them is fatal: nothing in
// the simulation retries.
var (
	// ErrNoPlatform indicates no compute platform could be enumerated.
	ErrNoPlatform = errors.New("dynamo: no compute platform found")

	// ErrNoDevice indicates the selected platform exposes no device.
	ErrNoDevice = errors.New("dynamo: no compute device found")

	// ErrContext indicates the device context could not be created.
	ErrContext = errors.New("dynamo: device context creation failed")

	// ErrResource indicates a buffer allocation or transfer failure.
	ErrResource = errors.New("dynamo: device resource failure")

	// ErrBuild indicates the kernel source failed to build.
	ErrBuild = errors.New("dynamo: kernel build failed")

	// ErrInput indicates an invalid operator-supplied value.
	ErrInput = errors.New("dynamo: invalid input")

	// ErrInvalidRadius indicates a radius outside the allowed classes.
	ErrInvalidRadius = errors.New("dynamo: radius is not an allowed class")
)

// ResourceError names the device resource that failed and the operation that
// was attempted on it.
type ResourceError struct {
	Resource string
	Op       string
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failed", e.Resource, e.Op)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Resource, e.Op, e.Err)
}

func (e *ResourceError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrResource}
	}
	return []error{ErrResource, e.Err}
}

// BuildError carries the compiler diagnostic log verbatim.
type BuildError struct {
	Kernel string
	Log    string
}

func (e *BuildError) Error() string {
	if e.Kernel == "" {
		return "kernel build failed"
	}
	return fmt.Sprintf("kernel %s: build failed", e.Kernel)
}

func (e *BuildError) Unwrap() error { return ErrBuild }

// InputError rejects a ball count, radius or device index.
type InputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInput }
