// Package video decodes single frames out of variable-frame-rate video
// containers by frame index. Opening a Stream scans the container once to
// build a presentation-order index of every access unit; afterwards any
// frame can be requested in any order, and the engine seeks to the
// enclosing keyframe, decodes forward to the exact timestamp and exports
// the picture as packed RGB bytes.
package video

// #cgo pkg-config: libavformat libavcodec libavutil
// #include <stdlib.h>
// #include <libavcodec/avcodec.h>
// #include <libavformat/avformat.h>
// #include <libavutil/pixdesc.h>
import "C"
import (
	"fmt"
	"unsafe"
)

// DefaultInputFormat is the demuxer used when the caller gives no
// container hint.
const DefaultInputFormat = "mp4"

// Options controls how a Stream is opened.
type Options struct {
	// InputFormat is the short name of the container demuxer. Empty
	// selects DefaultInputFormat.
	InputFormat string

	// Hardware names the decode accelerator (e.g. "cuda", "vaapi").
	// Empty means software-only decode. Naming one is an explicit
	// opt-in: if the device can't be set up, Open fails instead of
	// silently falling back.
	Hardware string
}

// Stream owns one container/decoder session over a single video file and
// answers point queries by frame index. It is not safe for concurrent use:
// every call mutates the shared container cursor and decoder buffers.
type Stream struct {
	path      string
	ctx       *C.AVFormatContext
	inner     *C.AVStream
	codec     *C.AVCodec
	codecCtx  *C.AVCodecContext
	index     C.int
	hw        hardware
	conv      converter
	timetable timetable
}

// Open opens the container at location, binds a decoder to its best video
// substream and builds the frame index with one full forward pass over the
// container. Close must be called on the returned Stream.
func Open(location string, opts *Options) (*Stream, error) {
	if opts == nil {
		opts = &Options{}
	}

	inputFormat := opts.InputFormat
	if inputFormat == "" {
		inputFormat = DefaultInputFormat
	}

	cFormat := C.CString(inputFormat)
	defer C.free(unsafe.Pointer(cFormat))

	demuxer := C.av_find_input_format(cFormat)
	if demuxer == nil {
		return nil, fmt.Errorf("%w: unknown input format %q", ErrOpen, inputFormat)
	}

	s := &Stream{path: location, index: -1}

	cLocation := C.CString(location)
	defer C.free(unsafe.Pointer(cLocation))

	if ret := C.avformat_open_input(&s.ctx, cLocation, demuxer, nil); ret < 0 {
		return nil, fmt.Errorf("%w: %d: %s", ErrOpen, ret, location)
	}

	if ret := C.avformat_find_stream_info(s.ctx, nil); ret < 0 {
		s.Close()
		return nil, fmt.Errorf("%w: %d", ErrStreamInfo, ret)
	}

	index := C.av_find_best_stream(s.ctx, C.AVMEDIA_TYPE_VIDEO, -1, -1, nil, 0)
	if index < 0 {
		s.Close()
		return nil, fmt.Errorf("%w: %d", ErrNoVideoStream, index)
	}

	s.index = index
	s.inner = unsafe.Slice(s.ctx.streams, s.ctx.nb_streams)[index]

	s.codec = C.avcodec_find_decoder(s.inner.codecpar.codec_id)
	if s.codec == nil {
		s.Close()
		return nil, fmt.Errorf("%w: no decoder for the stream codec", ErrDecoderInit)
	}

	s.codecCtx = C.avcodec_alloc_context3(s.codec)
	if s.codecCtx == nil {
		s.Close()
		return nil, fmt.Errorf("%w: couldn't allocate a codec context", ErrDecoderInit)
	}

	if ret := C.avcodec_parameters_to_context(s.codecCtx, s.inner.codecpar); ret < 0 {
		s.Close()
		return nil, fmt.Errorf("%w: %d: couldn't copy the codec parameters", ErrDecoderInit, ret)
	}

	if opts.Hardware != "" {
		if err := s.enableHardware(opts.Hardware); err != nil {
			s.Close()
			return nil, err
		}
	}

	if ret := C.avcodec_open2(s.codecCtx, s.codec, nil); ret < 0 {
		s.Close()
		return nil, fmt.Errorf("%w: %d: couldn't open the codec context", ErrDecoderInit, ret)
	}

	if err := s.scan(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// scan performs the one-time full forward pass over the container,
// recording presentation timestamp, decode timestamp and keyframe flag of
// every access unit of the selected substream from the packet headers —
// no pixel data gets decoded. The collected entries are then re-sorted by
// presentation timestamp: decode order differs from presentation order
// whenever the codec uses backward references, so the sort is what makes
// position a valid frame index. Afterwards the container is rewound and
// the decoder left flushed.
func (s *Stream) scan() error {
	packets, err := newPacketReader(s.ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOpen, err)
	}
	defer packets.free()

	for {
		pkt, ok, err := packets.next()
		if err != nil {
			return err
		}

		if !ok {
			break
		}

		if pkt.StreamIndex() != int(s.index) {
			continue
		}

		s.timetable = append(s.timetable, entry{
			pts:      pkt.PTS(),
			dts:      pkt.DTS(),
			keyframe: pkt.Keyframe(),
		})
	}

	s.timetable.sortByPresentation()

	if len(s.timetable) > 0 {
		if err := s.seekKeyframe(s.timetable[0].pts); err != nil {
			return err
		}
	}

	C.avcodec_flush_buffers(s.codecCtx)

	return nil
}

// TotalFrames returns the number of frames in the stream.
func (s *Stream) TotalFrames() int {
	return len(s.timetable)
}

// Timestamp returns the presentation timestamp of the indexed frame in
// stream time-base units.
func (s *Stream) Timestamp(index int) (int64, error) {
	if !s.timetable.contains(index) {
		return 0, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.timetable))
	}

	return s.timetable[index].pts, nil
}

// FrameBuffer decodes the indexed frame and returns its pixels as packed
// RGB bytes: Width()*Height()*3 of them, rows top to bottom, pixels left
// to right. When the exact timestamp can't be located after seeking — an
// expected condition in variable-frame-rate material — a solid-black
// buffer of the same length is returned instead of an error.
func (s *Stream) FrameBuffer(index int) ([]byte, error) {
	if !s.timetable.contains(index) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.timetable))
	}

	target := s.timetable[index].pts

	if err := s.seekKeyframe(target); err != nil {
		return nil, err
	}

	frames, err := s.newFrameReader()
	if err != nil {
		return nil, err
	}
	defer frames.free()

	for {
		frame, ok, err := frames.next()
		if err != nil {
			return nil, err
		}

		if !ok {
			return s.blackFrame(), nil
		}

		if frame.PTS() != target {
			frame.Close()
			continue
		}

		if s.hw.enabled {
			frame, err = s.transferFrame(frame)
			if err != nil {
				return nil, err
			}
		}

		return s.export(frame)
	}
}

// NearbyKeyframeBuffer returns the frame buffer of the keyframe that is
// offset keyframes away from index: negative counts backward, positive
// forward, 0 is FrameBuffer(index) itself. Offsets pointing outside the
// available keyframe range yield the black fallback buffer.
func (s *Stream) NearbyKeyframeBuffer(index, offset int) ([]byte, error) {
	if !s.timetable.contains(index) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(s.timetable))
	}

	keyframe, ok := s.timetable.nearbyKeyframe(index, offset)
	if !ok {
		return s.blackFrame(), nil
	}

	return s.FrameBuffer(keyframe)
}

// export converts a decoded frame to the output pixel format and packs
// its sole plane into a Go buffer, flipping the bottom-to-top plane into
// row-major top-to-bottom order and trimming row-alignment padding. The
// source frame is consumed.
func (s *Stream) export(frame *Frame) ([]byte, error) {
	converted, err := s.conv.toOutputFormat(frame)
	frame.Close()
	if err != nil {
		return nil, err
	}
	defer converted.Close()

	view := converted.Plane(0)

	return flipRows(view.Bytes(), view.Stride(), view.Width()*3, view.Height()), nil
}

// blackFrame is the display fallback for decode misses: a solid-black
// buffer with the byte length of a real frame.
func (s *Stream) blackFrame() []byte {
	return make([]byte, s.Width()*s.Height()*3)
}

// Path returns the location the stream was opened from.
func (s *Stream) Path() string {
	return s.path
}

// CodecName returns the short name of the stream codec.
func (s *Stream) CodecName() string {
	if s.codec.name == nil {
		return ""
	}

	return C.GoString(s.codec.name)
}

// DecoderName returns the display name of the stream decoder.
func (s *Stream) DecoderName() string {
	if s.codec.long_name == nil {
		return ""
	}

	return C.GoString(s.codec.long_name)
}

// PixelFormat returns the name of the decoder's source pixel format.
func (s *Stream) PixelFormat() string {
	return C.GoString(C.av_get_pix_fmt_name(
		C.enum_AVPixelFormat(s.inner.codecpar.format)))
}

// OutputPixelFormat returns the name of the fixed export pixel format.
func (s *Stream) OutputPixelFormat() string {
	return C.GoString(C.av_get_pix_fmt_name(outputPixelFormat))
}

// Width returns the frame width in pixels.
func (s *Stream) Width() int {
	return int(s.inner.codecpar.width)
}

// Height returns the frame height in pixels.
func (s *Stream) Height() int {
	return int(s.inner.codecpar.height)
}

// TimeBase returns the numerator and the denominator of the stream time
// base fraction. All the timestamp values of the stream are multiplied by
// this fraction to get seconds.
func (s *Stream) TimeBase() (int, int) {
	return int(s.inner.time_base.num),
		int(s.inner.time_base.den)
}

// Close releases the session: the hardware device context, then the codec
// context, then the container, in that order. Safe to call more than once
// and on partially opened streams.
func (s *Stream) Close() {
	s.conv.free()

	if s.hw.deviceCtx != nil {
		C.av_buffer_unref(&s.hw.deviceCtx)
		s.hw.deviceCtx = nil
		s.hw.enabled = false
	}

	if s.codecCtx != nil {
		C.avcodec_free_context(&s.codecCtx)
		s.codecCtx = nil
	}

	if s.ctx != nil {
		C.avformat_close_input(&s.ctx)
		s.ctx = nil
	}
}
