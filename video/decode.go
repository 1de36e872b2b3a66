package video

// #cgo pkg-config: libavformat libavcodec libavutil
// #include <errno.h>
// #include <libavcodec/avcodec.h>
// #include <libavformat/avformat.h>
// #include <libavutil/error.h>
//
// static const int avErrorAgain       = AVERROR(EAGAIN);
// static const int avErrorEndOfStream = AVERROR_EOF;
// static const int avErrorInvalid     = AVERROR(EINVAL);
// static const int avErrorNoMemory    = AVERROR(ENOMEM);
import "C"
import "fmt"

// frameReader is the packet→frame decode pipeline expressed as a
// restartable pull cursor: every next produces the following decoded
// picture of the selected substream, reading and dispatching container
// packets on demand, and terminates after the decoder has been drained at
// end of stream. A packet, once sent, may yield zero, one or more frames;
// the cursor never assumes exactly one.
//
// The same shape serves every per-request seek-and-decode pass; the
// opening scan walks packets only and never instantiates one of these.
type frameReader struct {
	stream   *Stream
	packets  *packetReader
	draining bool
}

func (s *Stream) newFrameReader() (*frameReader, error) {
	packets, err := newPacketReader(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return &frameReader{stream: s, packets: packets}, nil
}

// next returns the following decoded frame. The second return value is
// false once the stream is exhausted and the decoder drained. The caller
// owns the returned Frame and must close it.
func (r *frameReader) next() (*Frame, bool, error) {
	codecCtx := r.stream.codecCtx

	for {
		frame, err := newFrame()
		if err != nil {
			return nil, false, err
		}

		ret := C.avcodec_receive_frame(codecCtx, frame.inner)
		switch {
		case ret == 0:
			return frame, true, nil

		case ret == C.avErrorAgain && !r.draining:
			// The decoder needs more input; feed it one packet.
			frame.Close()

			if err := r.dispatch(); err != nil {
				return nil, false, err
			}

		case ret == C.avErrorAgain || ret == C.avErrorEndOfStream ||
			ret == C.avErrorInvalid || ret == C.avErrorNoMemory:
			// Known empty-result conditions: nothing more to pull.
			frame.Close()
			return nil, false, nil

		default:
			// Receive codes outside the empty-result set mean the
			// decoder itself failed, never a normal end of the pull.
			frame.Close()
			return nil, false, fmt.Errorf(
				"%w: %d: couldn't receive a frame from the codec context", ErrDecode, ret)
		}
	}
}

// dispatch reads container packets until one belonging to the selected
// substream has been sent to the decoder, or signals end of stream with
// the drain packet when the container is exhausted.
func (r *frameReader) dispatch() error {
	codecCtx := r.stream.codecCtx

	for {
		pkt, ok, err := r.packets.next()
		if err != nil {
			return err
		}

		if !ok {
			r.draining = true

			if ret := C.avcodec_send_packet(codecCtx, nil); ret < 0 && ret != C.avErrorEndOfStream {
				return fmt.Errorf(
					"%w: %d: couldn't send the drain packet to the codec context", ErrDecode, ret)
			}

			return nil
		}

		if pkt.StreamIndex() != int(r.stream.index) {
			continue
		}

		if ret := C.avcodec_send_packet(codecCtx, r.packets.pkt); ret < 0 && ret != C.avErrorAgain {
			return fmt.Errorf(
				"%w: %d: couldn't send the packet to the codec context", ErrDecode, ret)
		}

		return nil
	}
}

// free releases the cursor and resets the decoder's internal state so a
// later seek starts clean.
func (r *frameReader) free() {
	r.packets.free()
	C.avcodec_flush_buffers(r.stream.codecCtx)
}
