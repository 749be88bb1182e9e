// Package jpeg extracts frame dimensions from encoded JPEG images.
package jpeg

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/icza/bitio"
)

// Errors.
var (
	ErrInvalidImage = errors.New("invalid jpeg image")
	ErrNoFrameSize  = errors.New("no start-of-frame segment")
)

const (
	markerSOI = 0xffd8
	markerEOI = 0xffd9
	markerSOS = 0xffda

	// Start-of-frame range, with the three non-frame exceptions.
	markerSOF0  = 0xffc0
	markerSOF15 = 0xffcf
	markerDHT   = 0xffc4
	markerJPG   = 0xffc8
	markerDAC   = 0xffcc
)

// Dimensions scans the marker segments of a JPEG image and returns the
// frame width and height from its start-of-frame header.
func Dimensions(buf []byte) (int, int, error) {
	br := bitio.NewReader(bytes.NewReader(buf))

	soi, err := br.ReadBits(16)
	if err != nil || soi != markerSOI {
		return 0, 0, fmt.Errorf("%w: missing start-of-image marker", ErrInvalidImage)
	}

	for {
		marker, err := br.ReadBits(16)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: truncated marker", ErrInvalidImage)
		}
		if marker&0xff00 != 0xff00 {
			return 0, 0, fmt.Errorf("%w: bad marker 0x%04x", ErrInvalidImage, marker)
		}
		if marker == markerEOI || marker == markerSOS {
			return 0, 0, ErrNoFrameSize
		}

		length, err := br.ReadBits(16)
		if err != nil || length < 2 {
			return 0, 0, fmt.Errorf("%w: truncated segment", ErrInvalidImage)
		}

		isSOF := marker >= markerSOF0 && marker <= markerSOF15 &&
			marker != markerDHT && marker != markerJPG && marker != markerDAC
		if isSOF {
			if _, err := br.ReadBits(8); err != nil { // Sample precision.
				return 0, 0, fmt.Errorf("%w: truncated frame header", ErrInvalidImage)
			}
			height, err := br.ReadBits(16)
			if err != nil {
				return 0, 0, fmt.Errorf("%w: truncated frame header", ErrInvalidImage)
			}
			width, err := br.ReadBits(16)
			if err != nil {
				return 0, 0, fmt.Errorf("%w: truncated frame header", ErrInvalidImage)
			}
			return int(width), int(height), nil
		}

		if _, err := io.CopyN(io.Discard, br, int64(length)-2); err != nil {
			return 0, 0, fmt.Errorf("%w: truncated segment", ErrInvalidImage)
		}
	}
}
