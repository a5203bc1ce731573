package canvas

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Readback owns a map-readable buffer holding a finished offscreen
// render. It crosses the channel to the dashboard side, which maps it
// once and releases it; the receiver never touches the device directly.
type Readback struct {
	device *wgpu.Device
	buffer *wgpu.Buffer
	width  uint32
	height uint32
	stride uint32 // padded bytes per row in the buffer
}

func (r *Readback) Width() uint32  { return r.width }
func (r *Readback) Height() uint32 { return r.height }

// Pixels blocks until the GPU finishes, then returns tightly packed
// rows of raw RGBA16Float bytes. Call at most once.
func (r *Readback) Pixels() ([]byte, error) {
	size := uint64(r.stride) * uint64(r.height)
	var status wgpu.BufferMapAsyncStatus
	err := r.buffer.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	if err != nil {
		return nil, err
	}
	r.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("mapping readback buffer: status %v", status)
	}

	src := r.buffer.GetMappedRange(0, uint(size))
	rowBytes := r.width * 8
	out := make([]byte, uint64(rowBytes)*uint64(r.height))
	for y := uint32(0); y < r.height; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], src[y*r.stride:y*r.stride+rowBytes])
	}
	r.buffer.Unmap()
	return out, nil
}

// Release frees the buffer.
func (r *Readback) Release() {
	r.buffer.Destroy()
	r.buffer.Release()
}
