package video

// #cgo pkg-config: libavformat libavcodec libavutil
// #include <libavcodec/avcodec.h>
// #include <libavformat/avformat.h>
//
// static const int64_t avPacketNoPTSValue = AV_NOPTS_VALUE;
import "C"
import (
	"fmt"
	"unsafe"
)

// Packet is one compressed access unit pulled from the container. It owns
// its backing storage for exactly one iteration step of a packetReader:
// the next call to the reader consumes it, so none of the borrowed state
// may be held across iterations.
type Packet struct {
	inner *C.AVPacket
}

// StreamIndex returns the index of the substream the packet belongs to.
func (pkt *Packet) StreamIndex() int {
	return int(pkt.inner.stream_index)
}

// PTS returns the presentation timestamp from the packet header, or the
// decode timestamp when the header carries none.
func (pkt *Packet) PTS() int64 {
	if pkt.inner.pts != C.avPacketNoPTSValue {
		return int64(pkt.inner.pts)
	}

	return int64(pkt.inner.dts)
}

// DTS returns the decode timestamp from the packet header.
func (pkt *Packet) DTS() int64 {
	return int64(pkt.inner.dts)
}

// Keyframe reports whether the packet starts at a keyframe boundary.
func (pkt *Packet) Keyframe() bool {
	return pkt.inner.flags&C.AV_PKT_FLAG_KEY != 0
}

// Size returns the size of the packet data in bytes.
func (pkt *Packet) Size() int {
	return int(pkt.inner.size)
}

// Data returns the compressed payload without copying. The slice is valid
// only until the packetReader advances.
func (pkt *Packet) Data() []byte {
	if pkt.inner.data == nil || pkt.inner.size <= 0 {
		return nil
	}

	return unsafe.Slice((*byte)(unsafe.Pointer(pkt.inner.data)), int(pkt.inner.size))
}

// packetReader is a pull-based cursor over the container's packets. One
// owned AVPacket is recycled underneath: each next unrefs the previous
// access unit before reading the following one.
type packetReader struct {
	ctx  *C.AVFormatContext
	pkt  *C.AVPacket
	wrap Packet
}

func newPacketReader(ctx *C.AVFormatContext) (*packetReader, error) {
	pkt := C.av_packet_alloc()
	if pkt == nil {
		return nil, fmt.Errorf("couldn't allocate a new packet")
	}

	r := &packetReader{ctx: ctx, pkt: pkt}
	r.wrap.inner = pkt

	return r, nil
}

// next pulls the next access unit from the container. The second return
// value is false when no packets remain.
func (r *packetReader) next() (*Packet, bool, error) {
	C.av_packet_unref(r.pkt)

	if ret := C.av_read_frame(r.ctx, r.pkt); ret < 0 {
		// No packets anymore.
		return nil, false, nil
	}

	return &r.wrap, true, nil
}

func (r *packetReader) free() {
	C.av_packet_free(&r.pkt)
	r.pkt = nil
	r.wrap.inner = nil
}
