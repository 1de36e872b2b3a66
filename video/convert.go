package video

// #cgo pkg-config: libavutil libavcodec libswscale
// #include <libavcodec/avcodec.h>
// #include <libavutil/avutil.h>
// #include <libswscale/swscale.h>
import "C"
import (
	"fmt"
	"unsafe"
)

// outputPixelFormat is the fixed export format: packed RGB, 3 bytes per
// pixel, one plane.
const outputPixelFormat = C.enum_AVPixelFormat(C.AV_PIX_FMT_RGB24)

// converter turns decoded frames of arbitrary pixel format into the fixed
// output format at identical dimensions. The swscale context is cached
// keyed by the source format and size and rebuilt on mismatch, so
// repeated requests against the same stream pay the setup cost once. The
// cache belongs to the Stream and is not visible to callers.
type converter struct {
	swsCtx *C.struct_SwsContext
	srcW   C.int
	srcH   C.int
	srcFmt C.enum_AVPixelFormat
}

func (c *converter) ensure(src *Frame) error {
	w := C.int(src.Width())
	h := C.int(src.Height())
	format := src.pixelFormat()

	if c.swsCtx != nil && w == c.srcW && h == c.srcH && format == c.srcFmt {
		return nil
	}

	c.free()

	c.swsCtx = C.sws_getContext(w, h, format, w, h,
		outputPixelFormat, C.SWS_BILINEAR, nil, nil, nil)
	if c.swsCtx == nil {
		return fmt.Errorf("%w: couldn't create an SWS context", ErrDecode)
	}

	c.srcW = w
	c.srcH = h
	c.srcFmt = format

	return nil
}

// toOutputFormat converts one frame to the output pixel format. The
// destination rows are written bottom-to-top, so the export step flips
// them back while trimming. The caller owns the returned Frame; the
// source frame is left untouched.
func (c *converter) toOutputFormat(src *Frame) (*Frame, error) {
	if err := c.ensure(src); err != nil {
		return nil, err
	}

	dst, err := newFrame()
	if err != nil {
		return nil, err
	}

	dst.inner.width = c.srcW
	dst.inner.height = c.srcH
	dst.inner.format = C.int(outputPixelFormat)

	if ret := C.av_frame_get_buffer(dst.inner, 1); ret < 0 {
		dst.Close()
		return nil, fmt.Errorf("%w: %d: couldn't allocate the output frame buffer", ErrDecode, ret)
	}

	// Point the destination at its last row with a negated stride, which
	// makes swscale fill the plane upside down.
	stride := dst.inner.linesize[0]
	bottom := (*C.uint8_t)(unsafe.Pointer(
		uintptr(unsafe.Pointer(dst.inner.data[0])) + uintptr(c.srcH-1)*uintptr(stride)))

	dstData := [4]*C.uint8_t{bottom, nil, nil, nil}
	dstStride := [4]C.int{-stride, 0, 0, 0}

	ret := C.sws_scale(c.swsCtx, &src.inner.data[0], &src.inner.linesize[0],
		0, c.srcH, &dstData[0], &dstStride[0])
	if ret < 0 {
		dst.Close()
		return nil, fmt.Errorf("%w: %d: couldn't convert the frame", ErrDecode, ret)
	}

	dst.inner.pts = src.inner.pts
	dst.inner.best_effort_timestamp = src.inner.best_effort_timestamp

	return dst, nil
}

func (c *converter) free() {
	if c.swsCtx != nil {
		C.sws_freeContext(c.swsCtx)
		c.swsCtx = nil
	}
}
