// Package wav decodes RIFF/WAVE files into raw PCM tracks.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// Errors.
var (
	ErrInvalidFile       = errors.New("invalid wave file")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrNoData            = errors.New("no data chunk")
)

// Track is a decoded audio capture.
type Track struct {
	Data       []byte
	Channels   int
	SampleRate int
	BitDepth   int
}

const pcmFormatTag = 1

// Decode parses a RIFF/WAVE file. Only integer 16-bit PCM is accepted.
// The returned track borrows the data chunk from buf.
func Decode(buf []byte) (*Track, error) {
	if len(buf) < 12 ||
		!bytes.Equal(buf[0:4], []byte("RIFF")) ||
		!bytes.Equal(buf[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidFile)
	}

	track := &Track{}
	haveFormat := false

	pos := 12
	for pos+8 <= len(buf) {
		tag := string(buf[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(buf[pos+4 : pos+8]))
		pos += 8
		if pos+size > len(buf) {
			return nil, fmt.Errorf("%w: truncated %q chunk", ErrInvalidFile, tag)
		}

		switch tag {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: short format chunk", ErrInvalidFile)
			}
			format := binary.LittleEndian.Uint16(buf[pos : pos+2])
			if format != pcmFormatTag {
				return nil, fmt.Errorf("%w: format tag %d", ErrUnsupportedFormat, format)
			}
			track.Channels = int(binary.LittleEndian.Uint16(buf[pos+2 : pos+4]))
			track.SampleRate = int(binary.LittleEndian.Uint32(buf[pos+4 : pos+8]))
			track.BitDepth = int(binary.LittleEndian.Uint16(buf[pos+14 : pos+16]))
			if track.BitDepth != 16 {
				return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, track.BitDepth)
			}
			haveFormat = true
		case "data":
			track.Data = buf[pos : pos+size]
		}

		// Chunks are padded to even sizes.
		pos += size + size%2
	}

	if !haveFormat {
		return nil, fmt.Errorf("%w: missing format chunk", ErrInvalidFile)
	}
	if track.Data == nil {
		return nil, ErrNoData
	}
	return track, nil
}
