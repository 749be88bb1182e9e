// Package avi assembles independently encoded JPEG frames and an
// optional raw PCM track into a baseline AVI 1.0 file, entirely in
// memory. It is the fallback recording path for hosts without a native
// video encoder.
package avi

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"camrec/pkg/avi/bitio"
	"camrec/pkg/avi/riff"
)

// MimeType of the finished file.
const MimeType = "video/avi"

const (
	// Microsecond time base used for frame durations.
	microsecPerSec = 1000000

	// Main header flag: an idx1 chunk is present.
	hasIndexFlag = 0x10

	// Index entry flag: chunk is independently decodable.
	keyFrameFlag = 0x10

	chunkHeaderSize = 8
	indexEntrySize  = 16

	// The main header always declares two streams, even when no audio
	// track was captured. Players ignore the missing second stream
	// descriptor, and files produced by this recorder have always
	// carried the value.
	declaredStreamCount = 2
)

// Errors.
var (
	ErrNoFrames      = errors.New("no frames accumulated")
	ErrZeroFrameRate = errors.New("frame rate is zero")
	ErrFileTooLarge  = errors.New("file size exceeds 32-bit limit")
)

// Muxer accumulates frame and audio buffers and assembles them into a
// single AVI file. Frames are appended in capture order. Not safe for
// concurrent use.
type Muxer struct {
	width     int
	height    int
	frameRate int

	frames       [][]byte
	videoSize    int64
	maxFrameSize int

	audio *audioTrack
}

type audioTrack struct {
	data       []byte
	channels   int
	sampleRate int
}

// NewMuxer returns a muxer for the given frame dimensions and nominal
// frame rate.
func NewMuxer(width, height, frameRate int) *Muxer {
	return &Muxer{
		width:     width,
		height:    height,
		frameRate: frameRate,
	}
}

// AddFrame appends a single encoded JPEG image. The buffer is not
// copied and must not be modified until Build has returned.
func (m *Muxer) AddFrame(frame []byte) {
	m.frames = append(m.frames, frame)
	m.videoSize += int64(len(frame))
	if len(frame) > m.maxFrameSize {
		m.maxFrameSize = len(frame)
	}
}

// SetAudio stores the finished recording's audio track as a single
// little-endian 16-bit PCM buffer. Calling it again replaces the
// previous track.
func (m *Muxer) SetAudio(pcm []byte, channels, sampleRate int) {
	m.audio = &audioTrack{
		data:       pcm,
		channels:   channels,
		sampleRate: sampleRate,
	}
}

// FrameCount returns the number of accumulated frames.
func (m *Muxer) FrameCount() int {
	return len(m.frames)
}

// Build serializes the accumulated state into a finished AVI file.
// The accumulated state is not modified, building twice on unchanged
// state yields byte-identical output.
func (m *Muxer) Build() ([]byte, error) {
	if m.frameRate == 0 {
		return nil, ErrZeroFrameRate
	}
	if len(m.frames) == 0 {
		return nil, ErrNoFrames
	}

	fileSize, err := m.checkCapacity()
	if err != nil {
		return nil, err
	}

	chunks, index := m.generateMovieData()
	body := riff.Define(
		riff.Chars("AVI "),
		riff.Array(
			m.generateHeaderList(),
			generateList("movi", chunks...),
			generateIndex(index),
		),
	)
	root := generateChunk("RIFF", body)

	if err := root.Validate(); err != nil {
		return nil, fmt.Errorf("validate descriptor tree: %w", err)
	}

	buf := bytes.NewBuffer(make([]byte, 0, fileSize))
	if err := root.Marshal(bitio.NewWriter(buf)); err != nil {
		return nil, fmt.Errorf("marshal descriptor tree: %w", err)
	}
	return buf.Bytes(), nil
}

// checkCapacity returns the total file size, or ErrFileTooLarge if any
// 32-bit size field of the container would overflow.
func (m *Muxer) checkCapacity() (int, error) {
	headerList := int64(headerListSize(m.audio != nil))

	entries := int64(len(m.frames))
	movieList := 4 + m.videoSize + entries*chunkHeaderSize
	if m.audio != nil {
		entries++
		movieList += chunkHeaderSize + int64(len(m.audio.data))
	}

	// "RIFF" + size + "AVI " plus the three top-level chunks.
	total := 12 +
		(chunkHeaderSize + headerList) +
		(chunkHeaderSize + movieList) +
		(chunkHeaderSize + entries*indexEntrySize)

	if total-chunkHeaderSize > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, total)
	}
	return int(total), nil
}
