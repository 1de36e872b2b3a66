package video

// #cgo pkg-config: libavutil libavcodec
// #include <libavcodec/avcodec.h>
// #include <libavutil/avutil.h>
//
// static const int64_t avNoPTSValue = AV_NOPTS_VALUE;
import "C"
import (
	"fmt"
	"unsafe"
)

// Frame is one decoded picture. It is the sole owner of its pixel storage
// (reference counted by libav underneath) and is single-use: the decode
// pipeline allocates a fresh Frame for every picture it yields instead of
// resetting and reusing one. Close releases the storage; any PlaneView
// borrowed from the Frame is invalid from that point on.
type Frame struct {
	inner *C.AVFrame
}

func newFrame() (*Frame, error) {
	inner := C.av_frame_alloc()
	if inner == nil {
		return nil, fmt.Errorf("%w: couldn't allocate a new frame", ErrDecode)
	}

	return &Frame{inner: inner}, nil
}

// PTS returns the presentation timestamp of the frame in stream time-base
// units, falling back to the decoder's best-effort estimate when the
// frame carries none.
func (f *Frame) PTS() int64 {
	if f.inner.pts != C.avNoPTSValue {
		return int64(f.inner.pts)
	}

	return int64(f.inner.best_effort_timestamp)
}

// Width returns the width of the frame in pixels.
func (f *Frame) Width() int {
	return int(f.inner.width)
}

// Height returns the height of the frame in pixels.
func (f *Frame) Height() int {
	return int(f.inner.height)
}

func (f *Frame) pixelFormat() C.enum_AVPixelFormat {
	return C.enum_AVPixelFormat(f.inner.format)
}

// Plane borrows the pixel storage of one color plane. The view carries no
// ownership and must not be used after the Frame is closed.
func (f *Frame) Plane(index int) PlaneView {
	stride := int(f.inner.linesize[index])
	height := f.Height()

	return PlaneView{
		data:   unsafe.Slice((*byte)(unsafe.Pointer(f.inner.data[index])), stride*height),
		stride: stride,
		width:  f.Width(),
		height: height,
	}
}

// Close frees the pixel storage. Safe to call more than once.
func (f *Frame) Close() {
	C.av_frame_free(&f.inner)
	f.inner = nil
}

// PlaneView is a non-owning view over one color plane of a Frame: the raw
// bytes plus the shape needed to address them. It never mutates the plane
// and is valid only while the source Frame is alive.
type PlaneView struct {
	data   []byte
	stride int
	width  int
	height int
}

// Bytes returns the borrowed plane storage, stride*height bytes, without
// trimming row-alignment padding.
func (v PlaneView) Bytes() []byte {
	return v.data
}

// Stride returns the number of bytes between the starts of two
// consecutive rows.
func (v PlaneView) Stride() int {
	return v.stride
}

// Width returns the plane width in pixels.
func (v PlaneView) Width() int {
	return v.width
}

// Height returns the plane height in rows.
func (v PlaneView) Height() int {
	return v.height
}
