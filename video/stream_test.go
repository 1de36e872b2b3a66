package video

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testVideoOnce sync.Once
	testVideoErr  error
)

// testVideo synthesizes the 60-frame test clip once per run: 640x480,
// 60 fps, one second, H.264 in MP4 with a 9000 Hz track timescale. Tests
// needing it are skipped when the ffmpeg CLI is not installed.
func testVideo(t *testing.T) string {
	t.Helper()

	path := filepath.Join("testdata", "testsrc2.mp4")

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}

	testVideoOnce.Do(func() {
		if _, err := os.Stat(path); err == nil {
			return
		}

		if testVideoErr = os.MkdirAll("testdata", 0o755); testVideoErr != nil {
			return
		}

		cmd := exec.Command(ffmpeg,
			"-f", "lavfi",
			"-i", "testsrc2=s=640x480:r=60:d=1,format=yuv420p",
			"-c", "h264",
			"-video_track_timescale", "9000",
			path)
		testVideoErr = cmd.Run()
	})
	require.NoError(t, testVideoErr)

	return path
}

func openTestStream(t *testing.T) *Stream {
	t.Helper()

	stream, err := Open(testVideo(t), nil)
	require.NoError(t, err)
	t.Cleanup(stream.Close)

	return stream
}

func TestOpenErrors(t *testing.T) {
	path := testVideo(t)

	_, err := Open(filepath.Join("testdata", "none.mp4"), nil)
	assert.ErrorIs(t, err, ErrOpen)

	_, err = Open(path, &Options{InputFormat: "nosuchformat"})
	assert.ErrorIs(t, err, ErrOpen)

	// An MP4 file doesn't parse under a mismatched demuxer.
	_, err = Open(path, &Options{InputFormat: "avi"})
	assert.Error(t, err)
}

func TestOpenHardware(t *testing.T) {
	path := testVideo(t)

	hw, err := Open(path, &Options{Hardware: "vaapi"})
	if err != nil {
		// Hardware decode is an explicit opt-in with hard failure; on
		// hosts without a VAAPI device Open must report ErrHardwareInit
		// instead of silently decoding in software.
		assert.ErrorIs(t, err, ErrHardwareInit)
		return
	}
	defer hw.Close()

	sw, err := Open(path, nil)
	require.NoError(t, err)
	defer sw.Close()

	// Both decode paths yield the same picture bytes for the same
	// frame index.
	for _, index := range []int{0, 17, 42} {
		accelerated, err := hw.FrameBuffer(index)
		require.NoError(t, err)

		software, err := sw.FrameBuffer(index)
		require.NoError(t, err)

		assert.Equal(t, software, accelerated, "index %d", index)
	}
}

func TestStreamProperties(t *testing.T) {
	stream := openTestStream(t)

	assert.Equal(t, "H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10", stream.DecoderName())
	assert.Equal(t, 640, stream.Width())
	assert.Equal(t, 480, stream.Height())
	assert.Equal(t, 60, stream.TotalFrames())
	assert.Equal(t, "yuv420p", stream.PixelFormat())
	assert.Equal(t, "rgb24", stream.OutputPixelFormat())

	num, den := stream.TimeBase()
	assert.Equal(t, 1, num)
	assert.Equal(t, 9000, den)

	// The accelerator list depends on the libav build, but never
	// repeats a device type.
	seen := map[string]bool{}
	for _, name := range stream.HardwareDeviceTypes() {
		assert.False(t, seen[name], name)
		seen[name] = true
	}
}

func TestTimestampMonotonic(t *testing.T) {
	stream := openTestStream(t)

	prev := int64(-1)
	for index := 0; index < stream.TotalFrames(); index++ {
		ts, err := stream.Timestamp(index)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ts, prev)
		prev = ts
	}

	_, err := stream.Timestamp(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = stream.Timestamp(stream.TotalFrames())
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestFrameBuffer(t *testing.T) {
	stream := openTestStream(t)
	want := stream.Width() * stream.Height() * 3

	for _, index := range []int{0, 1, 30, stream.TotalFrames() - 1} {
		buf, err := stream.FrameBuffer(index)
		require.NoError(t, err)
		assert.Len(t, buf, want)
	}
}

func TestFrameBufferBounds(t *testing.T) {
	stream := openTestStream(t)

	_, err := stream.FrameBuffer(-1)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = stream.FrameBuffer(stream.TotalFrames())
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestFrameBufferUnreachableTimestamp(t *testing.T) {
	stream := openTestStream(t)
	want := stream.Width() * stream.Height() * 3

	// A presentation timestamp between two real access units can be
	// seeked to but never decoded; the lookup has to end in the
	// solid-black fallback instead of an error.
	stream.timetable[5].pts++

	buf, err := stream.FrameBuffer(5)
	require.NoError(t, err)
	require.Len(t, buf, want)

	for _, b := range buf {
		if b != 0 {
			t.Fatal("fallback buffer isn't solid black")
		}
	}
}

func TestFrameBufferIdempotent(t *testing.T) {
	stream := openTestStream(t)

	first, err := stream.FrameBuffer(17)
	require.NoError(t, err)

	second, err := stream.FrameBuffer(17)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestFrameBufferRandomAccess(t *testing.T) {
	stream := openTestStream(t)

	forward, err := stream.FrameBuffer(42)
	require.NoError(t, err)

	_, err = stream.FrameBuffer(3)
	require.NoError(t, err)

	// Going back to a later index reproduces the same bytes.
	again, err := stream.FrameBuffer(42)
	require.NoError(t, err)
	assert.Equal(t, forward, again)
}

func TestScanReordersBackwardReferences(t *testing.T) {
	stream := openTestStream(t)

	// H.264 with default settings emits B-frames, so decode order and
	// presentation order differ somewhere in the scan.
	reordered := false
	for i := 1; i < len(stream.timetable); i++ {
		if stream.timetable[i].dts < stream.timetable[i-1].dts {
			reordered = true
			break
		}
	}
	if !reordered {
		t.Skip("encoder produced no backward references")
	}

	// Lookup goes by presentation timestamp, not decode order: the
	// buffers of two adjacent indices come back stable regardless of
	// the order they were requested in.
	later, err := stream.FrameBuffer(31)
	require.NoError(t, err)

	_, err = stream.FrameBuffer(30)
	require.NoError(t, err)

	again, err := stream.FrameBuffer(31)
	require.NoError(t, err)
	assert.Equal(t, later, again)
}

func TestNearbyKeyframeBuffer(t *testing.T) {
	stream := openTestStream(t)
	want := stream.Width() * stream.Height() * 3

	t.Run("zero offset equals FrameBuffer", func(t *testing.T) {
		direct, err := stream.FrameBuffer(5)
		require.NoError(t, err)

		nearby, err := stream.NearbyKeyframeBuffer(5, 0)
		require.NoError(t, err)

		assert.Equal(t, direct, nearby)
	})

	t.Run("backward lands on the previous keyframe", func(t *testing.T) {
		keyframe, err := stream.FrameBuffer(0)
		require.NoError(t, err)

		nearby, err := stream.NearbyKeyframeBuffer(5, -1)
		require.NoError(t, err)

		assert.Equal(t, keyframe, nearby)
	})

	t.Run("out of range offsets fall back to black", func(t *testing.T) {
		for _, offset := range []int{-1000, 1000} {
			buf, err := stream.NearbyKeyframeBuffer(5, offset)
			require.NoError(t, err)
			require.Len(t, buf, want)

			for _, b := range buf {
				if b != 0 {
					t.Fatal("fallback buffer isn't solid black")
				}
			}
		}
	})

	t.Run("invalid index", func(t *testing.T) {
		_, err := stream.NearbyKeyframeBuffer(-1, 0)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestOpenReleasesPartialState(t *testing.T) {
	// A failed hardware setup must not leak the container or codec
	// handles; opening the same file again right away has to work.
	path := testVideo(t)

	if _, err := Open(path, &Options{Hardware: "nosuchdevice"}); err != nil {
		assert.ErrorIs(t, err, ErrHardwareInit)
	}

	stream, err := Open(path, nil)
	require.NoError(t, err)
	stream.Close()
	// Close is idempotent.
	stream.Close()
}
