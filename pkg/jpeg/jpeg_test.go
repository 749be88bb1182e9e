package jpeg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validImage(sofMarker byte) []byte {
	return []byte{
		0xff, 0xd8, // Start of image.
		0xff, 0xe0, // APP0.
		0, 16, // Segment length.
		'J', 'F', 'I', 'F', 0,
		1, 1, 0, 0, 1, 0, 1, 0, 0,
		0xff, sofMarker, // Start of frame.
		0, 17, // Segment length.
		8,      // Sample precision.
		0, 240, // Height.
		1, 64, // Width 320.
		3, // Component count.
		1, 0x22, 0,
		2, 0x11, 1,
		3, 0x11, 1,
	}
}

func TestDimensions(t *testing.T) {
	t.Run("baseline", func(t *testing.T) {
		width, height, err := Dimensions(validImage(0xc0))
		require.NoError(t, err)
		require.Equal(t, 320, width)
		require.Equal(t, 240, height)
	})
	t.Run("progressive", func(t *testing.T) {
		width, height, err := Dimensions(validImage(0xc2))
		require.NoError(t, err)
		require.Equal(t, 320, width)
		require.Equal(t, 240, height)
	})
	t.Run("huffmanTableSkipped", func(t *testing.T) {
		buf := []byte{
			0xff, 0xd8, // Start of image.
			0xff, 0xc4, // DHT, not a frame header.
			0, 4, 1, 2,
			0xff, 0xc0, // Start of frame.
			0, 17,
			8,
			0, 2, // Height.
			0, 3, // Width.
		}
		width, height, err := Dimensions(buf)
		require.NoError(t, err)
		require.Equal(t, 3, width)
		require.Equal(t, 2, height)
	})
}

func TestDimensionsErrors(t *testing.T) {
	t.Run("notJPEG", func(t *testing.T) {
		_, _, err := Dimensions([]byte{0x89, 'P', 'N', 'G'})
		require.ErrorIs(t, err, ErrInvalidImage)
	})
	t.Run("empty", func(t *testing.T) {
		_, _, err := Dimensions(nil)
		require.ErrorIs(t, err, ErrInvalidImage)
	})
	t.Run("noFrameHeader", func(t *testing.T) {
		buf := []byte{
			0xff, 0xd8,
			0xff, 0xda, // Start of scan before any frame header.
		}
		_, _, err := Dimensions(buf)
		require.ErrorIs(t, err, ErrNoFrameSize)
	})
	t.Run("truncatedSegment", func(t *testing.T) {
		buf := []byte{
			0xff, 0xd8,
			0xff, 0xe0,
			0, 16, // Declares more bytes than remain.
			'J', 'F',
		}
		_, _, err := Dimensions(buf)
		require.ErrorIs(t, err, ErrInvalidImage)
	})
	t.Run("badMarker", func(t *testing.T) {
		buf := []byte{
			0xff, 0xd8,
			0x12, 0x34,
		}
		_, _, err := Dimensions(buf)
		require.ErrorIs(t, err, ErrInvalidImage)
	})
}
