package video

// #cgo pkg-config: libavformat libavcodec
// #include <libavcodec/avcodec.h>
// #include <libavformat/avformat.h>
import "C"
import "fmt"

// seekKeyframe issues a backward container seek to the nearest keyframe
// at or before timestamp (in stream time-base units) and flushes the
// decoder, so no frames from before the seek survive in its buffers.
// Every decode pass starts with one of these: decoding without first
// targeting the enclosing GOP would mean replaying from the file start.
func (s *Stream) seekKeyframe(timestamp int64) error {
	ret := C.av_seek_frame(s.ctx, s.index,
		C.int64_t(timestamp), C.AVSEEK_FLAG_BACKWARD)
	if ret < 0 {
		return fmt.Errorf("%w: %d: timestamp %d", ErrSeek, ret, timestamp)
	}

	C.avcodec_flush_buffers(s.codecCtx)

	return nil
}
