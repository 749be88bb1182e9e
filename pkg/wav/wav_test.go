package wav

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func waveFile(formatTag byte, channels byte, bitDepth byte, data []byte) []byte {
	buf := []byte{
		'R', 'I', 'F', 'F',
		0, 0, 0, 0, // File size, unchecked.
		'W', 'A', 'V', 'E',
		'f', 'm', 't', ' ',
		16, 0, 0, 0, // Format chunk size.
		formatTag, 0,
		channels, 0,
		0x40, 0x1f, 0, 0, // Sample rate 8000.
		0x80, 0x3e, 0, 0, // Byte rate.
		2, 0, // Block align.
		bitDepth, 0,
		'd', 'a', 't', 'a',
		byte(len(data)), 0, 0, 0,
	}
	return append(buf, data...)
}

func TestDecode(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6}
	track, err := Decode(waveFile(1, 2, 16, data))
	require.NoError(t, err)
	require.Equal(t, data, track.Data)
	require.Equal(t, 2, track.Channels)
	require.Equal(t, 8000, track.SampleRate)
	require.Equal(t, 16, track.BitDepth)
}

func TestDecodeOddChunk(t *testing.T) {
	// An odd-sized chunk before the format chunk is padded to an even
	// boundary.
	buf := []byte{
		'R', 'I', 'F', 'F',
		0, 0, 0, 0,
		'W', 'A', 'V', 'E',
		'n', 'o', 't', 'e',
		3, 0, 0, 0, // Odd chunk size.
		'h', 'i', '!', 0, // Payload plus pad byte.
	}
	buf = append(buf, waveFile(1, 1, 16, []byte{9, 9})[12:]...)

	track, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9}, track.Data)
	require.Equal(t, 1, track.Channels)
}

func TestDecodeErrors(t *testing.T) {
	t.Run("notWave", func(t *testing.T) {
		_, err := Decode([]byte("RIFF....AVI "))
		require.ErrorIs(t, err, ErrInvalidFile)
	})
	t.Run("empty", func(t *testing.T) {
		_, err := Decode(nil)
		require.ErrorIs(t, err, ErrInvalidFile)
	})
	t.Run("compressedFormat", func(t *testing.T) {
		_, err := Decode(waveFile(3, 2, 16, []byte{1, 2}))
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})
	t.Run("eightBitSamples", func(t *testing.T) {
		_, err := Decode(waveFile(1, 1, 8, []byte{1, 2}))
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	})
	t.Run("noData", func(t *testing.T) {
		buf := waveFile(1, 1, 16, nil)
		buf = buf[:len(buf)-8] // Strip the data chunk.
		_, err := Decode(buf)
		require.ErrorIs(t, err, ErrNoData)
	})
	t.Run("truncatedChunk", func(t *testing.T) {
		buf := waveFile(1, 1, 16, []byte{1, 2, 3, 4})
		buf = buf[:len(buf)-2]
		_, err := Decode(buf)
		require.ErrorIs(t, err, ErrInvalidFile)
	})
}
