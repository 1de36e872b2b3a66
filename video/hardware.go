package video

// #cgo pkg-config: libavutil libavcodec
// #include <stdint.h>
// #include <stdlib.h>
// #include <libavcodec/avcodec.h>
// #include <libavutil/hwcontext.h>
// #include <libavutil/pixfmt.h>
//
// // selectHardwareFormat picks the hardware surface format matching the
// // device type of the session from the decoder's candidate list. The
// // wanted format travels in the codec context's opaque field, so there
// // is no global state shared between sessions. When the decoder offers
// // no match, the decoder's default software format applies.
// static enum AVPixelFormat selectHardwareFormat(AVCodecContext *ctx,
//                                                const enum AVPixelFormat *fmts) {
//     enum AVPixelFormat want = (enum AVPixelFormat)(intptr_t)ctx->opaque;
//     const enum AVPixelFormat *p;
//
//     for (p = fmts; *p != AV_PIX_FMT_NONE; p++) {
//         if (*p == want) {
//             return *p;
//         }
//     }
//
//     return avcodec_default_get_format(ctx, fmts);
// }
//
// static void installHardwareFormat(AVCodecContext *ctx, enum AVPixelFormat want) {
//     ctx->opaque = (void *)(intptr_t)want;
//     ctx->get_format = selectHardwareFormat;
// }
import "C"
import (
	"fmt"
	"unsafe"
)

// hardware holds the optional hardware decode state of a session: the
// device context and the pixel format of frames living in device memory.
type hardware struct {
	deviceCtx *C.AVBufferRef
	pixFmt    C.enum_AVPixelFormat
	enabled   bool
}

// enableHardware configures the decoder for the named accelerator before
// the codec context is opened. The codec must advertise a hardware
// configuration for the device type; any failure is ErrHardwareInit.
func (s *Stream) enableHardware(name string) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	devType := C.av_hwdevice_find_type_by_name(cName)
	if devType == C.AV_HWDEVICE_TYPE_NONE {
		return fmt.Errorf("%w: unknown device type %q", ErrHardwareInit, name)
	}

	pixFmt := C.enum_AVPixelFormat(C.AV_PIX_FMT_NONE)

	for i := C.int(0); ; i++ {
		config := C.avcodec_get_hw_config(s.codec, i)
		if config == nil {
			break
		}

		if config.methods&C.AV_CODEC_HW_CONFIG_METHOD_HW_DEVICE_CTX != 0 &&
			config.device_type == devType {
			pixFmt = config.pix_fmt
			break
		}
	}

	if pixFmt == C.AV_PIX_FMT_NONE {
		return fmt.Errorf("%w: decoder %s has no %q configuration",
			ErrHardwareInit, s.CodecName(), name)
	}

	if ret := C.av_hwdevice_ctx_create(&s.hw.deviceCtx, devType, nil, nil, 0); ret < 0 {
		return fmt.Errorf("%w: %d: couldn't create a %q device context",
			ErrHardwareInit, ret, name)
	}

	s.codecCtx.hw_device_ctx = C.av_buffer_ref(s.hw.deviceCtx)
	if s.codecCtx.hw_device_ctx == nil {
		C.av_buffer_unref(&s.hw.deviceCtx)
		return fmt.Errorf("%w: couldn't reference the %q device context",
			ErrHardwareInit, name)
	}

	C.installHardwareFormat(s.codecCtx, pixFmt)

	s.hw.pixFmt = pixFmt
	s.hw.enabled = true

	return nil
}

// transferFrame moves a decoded frame out of device memory into a freshly
// allocated software frame, consuming the source. Frames the decoder
// already produced in software memory pass through unchanged.
func (s *Stream) transferFrame(src *Frame) (*Frame, error) {
	if src.pixelFormat() != s.hw.pixFmt {
		return src, nil
	}

	dst, err := newFrame()
	if err != nil {
		src.Close()
		return nil, err
	}

	if ret := C.av_hwframe_transfer_data(dst.inner, src.inner, 0); ret < 0 {
		dst.Close()
		src.Close()
		return nil, fmt.Errorf("%w: %d", ErrHardwareTransfer, ret)
	}

	dst.inner.pts = src.inner.pts
	dst.inner.best_effort_timestamp = src.inner.best_effort_timestamp
	src.Close()

	return dst, nil
}

// HardwareDeviceTypes returns the names of the hardware accelerators the
// stream's codec advertises configurations for.
func (s *Stream) HardwareDeviceTypes() []string {
	var names []string

	for i := C.int(0); ; i++ {
		config := C.avcodec_get_hw_config(s.codec, i)
		if config == nil {
			break
		}

		name := C.GoString(C.av_hwdevice_get_type_name(config.device_type))
		if name == "" {
			continue
		}

		duplicate := false
		for _, n := range names {
			if n == name {
				duplicate = true
				break
			}
		}

		if !duplicate {
			names = append(names, name)
		}
	}

	return names
}
