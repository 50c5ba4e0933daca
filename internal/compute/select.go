package compute

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/bounce/internal/dynamo"
)

// PrintPlatforms writes the numbered platform listing.
func PrintPlatforms(w io.Writer, platforms []Platform) {
	fmt.Fprintf(w, "Found %d platform(s).\n\n", len(platforms))
	for i, p := range platforms {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintf(tw, "Platform (%d)\n", i+1)
		fmt.Fprintf(tw, "  Vendor:\t%s\n", p.Vendor)
		fmt.Fprintf(tw, "  Name:\t%s\n", p.Name)
		fmt.Fprintf(tw, "  Version:\t%s\n", p.Version)
		tw.Flush()
		fmt.Fprintln(w)
	}
}

// PrintDevices writes the numbered device listing of one platform.
func PrintDevices(w io.Writer, devices []Device) {
	fmt.Fprintf(w, "Found %d device(s).\n\n", len(devices))
	for i, d := range devices {
		tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
		fmt.Fprintf(tw, "Device (%d)\n", i+1)
		fmt.Fprintf(tw, "  Type:\t%s\n", d.Type)
		fmt.Fprintf(tw, "  Name:\t%s\n", d.Name)
		fmt.Fprintf(tw, "  Vendor:\t%s\n", d.Vendor)
		fmt.Fprintf(tw, "  Version:\t%s\n", d.Version)
		fmt.Fprintf(tw, "  Max Compute Units:\t%d\n", d.ComputeUnits)
		tw.Flush()
		fmt.Fprintln(w)
	}
}

// Select lists the platforms, reads a 1-based platform choice from in, lists
// that platform's devices and reads a 1-based device choice.
func Select(r *Registry, in io.Reader, out io.Writer) (Device, error) {
	platforms := r.Platforms()
	if len(platforms) == 0 {
		return Device{}, dynamo.ErrNoPlatform
	}
	sc := bufio.NewScanner(in)

	PrintPlatforms(out, platforms)
	pi, err := prompt(sc, out, "platform", "Platform choice: ")
	if err != nil {
		return Device{}, err
	}
	p, err := r.platform(pi)
	if err != nil {
		return Device{}, err
	}
	if len(p.Devices) == 0 {
		return Device{}, fmt.Errorf("%w on platform %s", dynamo.ErrNoDevice, p.Name)
	}

	PrintDevices(out, p.Devices)
	di, err := prompt(sc, out, "device", "Device choice: ")
	if err != nil {
		return Device{}, err
	}
	return pickDevice(p, di)
}

func prompt(sc *bufio.Scanner, out io.Writer, field, text string) (int, error) {
	fmt.Fprint(out, text)
	defer fmt.Fprintln(out)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("read %s choice: %w", field, err)
		}
		return 0, &dynamo.InputError{Field: field, Value: "", Reason: "no choice entered"}
	}
	text = strings.TrimSpace(sc.Text())
	idx, err := strconv.Atoi(text)
	if err != nil {
		return 0, &dynamo.InputError{Field: field, Value: text, Reason: "not a number"}
	}
	return idx, nil
}
