package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketCursor(t *testing.T) {
	stream := openTestStream(t)

	packets, err := newPacketReader(stream.ctx)
	require.NoError(t, err)
	defer packets.free()

	count := 0
	for {
		pkt, ok, err := packets.next()
		require.NoError(t, err)

		if !ok {
			break
		}

		if pkt.StreamIndex() != int(stream.index) {
			continue
		}

		// The payload view covers exactly the compressed access unit.
		assert.Positive(t, pkt.Size())
		assert.Len(t, pkt.Data(), pkt.Size())
		count++
	}

	assert.Equal(t, stream.TotalFrames(), count)
}
