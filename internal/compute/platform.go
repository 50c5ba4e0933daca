package compute

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/san-kum/bounce/internal/dynamo"
)

type DeviceType int

const (
	DeviceDefault DeviceType = iota
	DeviceCPU
	DeviceGPU
	DeviceAccelerator
)

func (t DeviceType) String() string {
	switch t {
	case DeviceCPU:
		return "CPU"
	case DeviceGPU:
		return "GPU"
	case DeviceAccelerator:
		return "ACCELERATOR"
	default:
		return "DEFAULT"
	}
}

type DeviceInfo struct {
	Name         string
	Vendor       string
	Version      string
	Type         DeviceType
	ComputeUnits int
}

// Opener creates a backend on a device.
type Opener func(opts Options) (Backend, error)

type Device struct {
	DeviceInfo
	open Opener
}

func NewDevice(info DeviceInfo, open Opener) Device {
	return Device{DeviceInfo: info, open: open}
}

// Open creates a backend with opts, filling unset options with defaults.
func (d Device) Open(opts Options) (Backend, error) {
	if d.open == nil {
		return nil, fmt.Errorf("%w: device %s cannot be opened", dynamo.ErrContext, d.Name)
	}
	b, err := d.open(opts.withDefaults())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", dynamo.ErrContext, d.Name, err)
	}
	return b, nil
}

type Platform struct {
	Name    string
	Vendor  string
	Version string
	Devices []Device
}

// Registry lists the platforms a device can be selected from.
type Registry struct {
	platforms []Platform
}

// NewRegistry returns a registry holding the cpu platform.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(CPUPlatform())
	return r
}

func (r *Registry) Register(p Platform) { r.platforms = append(r.platforms, p) }

func (r *Registry) Platforms() []Platform { return r.platforms }

// Lookup resolves 1-based platform and device indices.
func (r *Registry) Lookup(platform, device int) (Device, error) {
	p, err := r.platform(platform)
	if err != nil {
		return Device{}, err
	}
	return pickDevice(p, device)
}

func (r *Registry) platform(idx int) (Platform, error) {
	if len(r.platforms) == 0 {
		return Platform{}, dynamo.ErrNoPlatform
	}
	if idx < 1 || idx > len(r.platforms) {
		return Platform{}, &dynamo.InputError{
			Field:  "platform",
			Value:  strconv.Itoa(idx),
			Reason: fmt.Sprintf("must be between 1 and %d", len(r.platforms)),
		}
	}
	return r.platforms[idx-1], nil
}

func pickDevice(p Platform, idx int) (Device, error) {
	if len(p.Devices) == 0 {
		return Device{}, fmt.Errorf("%w on platform %s", dynamo.ErrNoDevice, p.Name)
	}
	if idx < 1 || idx > len(p.Devices) {
		return Device{}, &dynamo.InputError{
			Field:  "device",
			Value:  strconv.Itoa(idx),
			Reason: fmt.Sprintf("must be between 1 and %d", len(p.Devices)),
		}
	}
	return p.Devices[idx-1], nil
}

// CPUPlatform describes the goroutine worker pool of this process.
func CPUPlatform() Platform {
	info := DeviceInfo{
		Name:         fmt.Sprintf("%s/%s worker pool", runtime.GOOS, runtime.GOARCH),
		Vendor:       "The Go Authors",
		Version:      runtime.Version(),
		Type:         DeviceCPU,
		ComputeUnits: runtime.NumCPU(),
	}
	return Platform{
		Name:    "Go runtime",
		Vendor:  "The Go Authors",
		Version: runtime.Version(),
		Devices: []Device{
			NewDevice(info, func(opts Options) (Backend, error) {
				return NewCPUBackend(opts), nil
			}),
		},
	}
}
