package executor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ppg-tools/ppg/internal/gir"
)

// KernelCode mirrors the bit-exact device/host contract of spec.md §4.5.
// No real GPU/CUDA binding exists anywhere in the reference corpus this
// codebase is grounded on, so the "device" here is a software simulation
// running the identical gather on the calling goroutine — its job is to exercise
// the same error-code contract a hardware backend would, not to provide
// real hardware acceleration. See DESIGN.md for the reasoning.
type KernelCode int

const (
	KernelSuccess KernelCode = iota
	KernelDeviceAllocFailure
	KernelHostToDeviceCopyFailure
	KernelLaunchFailure
	KernelExecutionFailure
	KernelDeviceToHostCopyFailure
)

func (c KernelCode) String() string {
	switch c {
	case KernelSuccess:
		return "success"
	case KernelDeviceAllocFailure:
		return "device allocation failure"
	case KernelHostToDeviceCopyFailure:
		return "host to device copy failure"
	case KernelLaunchFailure:
		return "kernel launch failure"
	case KernelExecutionFailure:
		return "kernel execution failure"
	case KernelDeviceToHostCopyFailure:
		return "device to host copy failure"
	default:
		return fmt.Sprintf("unknown kernel code %d", int(c))
	}
}

// KernelError wraps a non-zero KernelCode; any non-zero code aborts the
// run (spec.md §4.5 "Any non-zero code aborts the run").
type KernelError struct {
	Code KernelCode
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("gpu kernel failure: %s (code %d)", e.Code, int(e.Code))
}

// deviceArrays is the parallel-array task encoding the real kernel
// contract operates on: four integer arrays plus three byte arenas,
// instead of a []Task slice, mirroring what a device-side launch would
// actually receive.
type deviceArrays struct {
	stream        []uint8
	startInStream []int32
	length        []int32
	startInResult []int32
}

func toDeviceArrays(tasks []gir.Task) deviceArrays {
	d := deviceArrays{
		stream:        make([]uint8, len(tasks)),
		startInStream: make([]int32, len(tasks)),
		length:        make([]int32, len(tasks)),
		startInResult: make([]int32, len(tasks)),
	}
	for i, t := range tasks {
		d.stream[i] = uint8(t.Stream)
		d.startInStream[i] = int32(t.StartInStream)
		d.length[i] = int32(t.Length)
		d.startInResult[i] = int32(t.StartInResult)
	}
	return d
}

// ExecuteGPU simulates the data-parallel backend: one logical thread per
// task, synchronous from the caller's perspective, same slice-copy
// semantics as ExecuteST. It is structured around the same host/device
// copy and launch stages a real binding would have, so that the error
// codes it can surface match the documented contract even though no
// actual device is involved.
func ExecuteGPU(g gir.GIR, log *zap.Logger) ([]byte, error) {
	if log != nil && len(g.Tasks) > 0 {
		log.Debug("gpu dispatch", zap.Int("tasks", len(g.Tasks)), zap.Int("result_len", g.ResultLen))
	}

	// Stage 1: device allocation. A negative result length indicates a
	// sizing bug upstream; treat it as an allocation failure rather than
	// silently succeeding.
	if g.ResultLen < 0 {
		return nil, &KernelError{Code: KernelDeviceAllocFailure}
	}
	deviceResult := make([]byte, g.ResultLen)

	// Stage 2: host to device copy of the task descriptor arrays and
	// source arenas.
	device := toDeviceArrays(g.Tasks)
	if len(device.stream) != len(g.Tasks) {
		return nil, &KernelError{Code: KernelHostToDeviceCopyFailure}
	}

	// Stage 3: kernel launch validation. A malformed task (stream out of
	// {0,1,2}) is a launch failure: the dispatch itself is invalid, not a
	// runtime fault.
	for i := range device.stream {
		if device.stream[i] > uint8(gir.StreamPhi) {
			return nil, &KernelError{Code: KernelLaunchFailure}
		}
	}

	// Stage 4: kernel execution. Each task's slice copy runs in turn on
	// the calling goroutine; tasks within one GIR have disjoint result
	// ranges (invariant 2), so their order does not affect the output.
	for i := range device.stream {
		stream := gir.Stream(device.stream[i])
		if stream == gir.StreamPhi {
			continue
		}
		start, length, resStart := int(device.startInStream[i]), int(device.length[i]), int(device.startInResult[i])

		var arena []byte
		switch stream {
		case gir.StreamRef:
			arena = g.RefArena
		case gir.StreamAlt:
			arena = g.AltArena
		}
		if start+length > len(arena) || resStart+length > len(deviceResult) {
			return nil, &KernelError{Code: KernelExecutionFailure}
		}
		copy(deviceResult[resStart:resStart+length], arena[start:start+length])
	}

	// Stage 5: device to host copy of the result buffer.
	hostResult := make([]byte, len(deviceResult))
	copy(hostResult, deviceResult)
	if len(hostResult) != len(deviceResult) {
		return nil, &KernelError{Code: KernelDeviceToHostCopyFailure}
	}

	return hostResult, nil
}
