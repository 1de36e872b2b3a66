package video

import "errors"

// Errors reported by Stream operations. Every failure returned by this
// package wraps exactly one of these sentinels, so callers can classify
// with errors.Is while still seeing the libav return code in the message.
var (
	// ErrOpen means the container couldn't be opened or parsed.
	ErrOpen = errors.New("couldn't open the container")
	// ErrStreamInfo means the stream metadata couldn't be probed.
	ErrStreamInfo = errors.New("couldn't read the stream information")
	// ErrNoVideoStream means the container holds no video substream.
	ErrNoVideoStream = errors.New("no video stream")
	// ErrDecoderInit means the decoder couldn't be allocated or opened.
	ErrDecoderInit = errors.New("couldn't initialize the decoder")
	// ErrHardwareInit means the requested hardware decode path couldn't
	// be set up. Hardware acceleration is an explicit opt-in: this is a
	// hard failure, never a silent software fallback.
	ErrHardwareInit = errors.New("couldn't initialize the hardware device")
	// ErrHardwareTransfer means a decoded hardware frame couldn't be
	// moved into software memory.
	ErrHardwareTransfer = errors.New("couldn't transfer the hardware frame")
	// ErrSeek means the container couldn't satisfy a keyframe seek.
	ErrSeek = errors.New("couldn't seek the container")
	// ErrDecode means the decoder failed outside of the known
	// empty-result conditions.
	ErrDecode = errors.New("couldn't decode")
	// ErrIndexOutOfRange means a frame index outside [0, TotalFrames()).
	ErrIndexOutOfRange = errors.New("frame index out of range")
)
