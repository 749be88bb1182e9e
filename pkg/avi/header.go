package avi

import (
	"camrec/pkg/avi/riff"
)

// Data chunk tags. The two digits are the stream index.
const (
	videoChunkTag = "00dc"
	audioChunkTag = "01wb"
)

// Fixed payload sizes of the header records.
const (
	mainHeaderSize   = 56
	streamHeaderSize = 56
	videoFormatSize  = 40
	audioFormatSize  = 16
)

func headerListSize(hasAudio bool) int {
	size := 4 +
		chunkHeaderSize + mainHeaderSize +
		chunkHeaderSize + 4 +
		chunkHeaderSize + streamHeaderSize +
		chunkHeaderSize + videoFormatSize
	if hasAudio {
		size += chunkHeaderSize + 4 +
			chunkHeaderSize + streamHeaderSize +
			chunkHeaderSize + audioFormatSize
	}
	return size
}

func generateChunk(tag string, body *riff.Descriptor) *riff.Descriptor {
	return riff.Define(
		riff.Chars(tag),
		riff.Uint32(uint32(body.Size())),
		riff.Nested(body),
	)
}

func generateList(listType string, children ...*riff.Descriptor) *riff.Descriptor {
	return generateChunk("LIST", riff.Define(
		riff.Chars(listType),
		riff.Array(children...),
	))
}

type indexEntry struct {
	tag    string
	flags  uint32
	offset uint32
	length uint32
}

// generateMovieData wraps each accumulated buffer as a data chunk and
// derives the matching index row. Frame payloads are borrowed, not
// copied.
func (m *Muxer) generateMovieData() ([]*riff.Descriptor, []indexEntry) {
	n := len(m.frames)
	chunks := make([]*riff.Descriptor, 0, n+1)
	index := make([]indexEntry, 0, n+1)

	// Offsets are relative to the first byte after the movie list's
	// own tag and size header.
	offset := uint32(4)
	for _, frame := range m.frames {
		chunks = append(chunks, generateChunk(videoChunkTag,
			riff.Define(riff.Borrowed(frame))))
		index = append(index, indexEntry{
			tag:    videoChunkTag,
			flags:  keyFrameFlag,
			offset: offset,
			length: uint32(len(frame)),
		})
		offset += chunkHeaderSize + uint32(len(frame))
	}

	// The whole capture as one chunk, never split per video frame.
	if m.audio != nil {
		chunks = append(chunks, generateChunk(audioChunkTag,
			riff.Define(riff.Borrowed(m.audio.data))))
		index = append(index, indexEntry{
			tag:    audioChunkTag,
			flags:  keyFrameFlag,
			offset: offset,
			length: uint32(len(m.audio.data)),
		})
	}
	return chunks, index
}

func (m *Muxer) generateHeaderList() *riff.Descriptor {
	/*
	   LIST hdrl
	   - avih
	   - LIST strl (video)
	     - strh
	     - strf
	   - LIST strl (audio)
	     - strh
	     - strf
	*/
	children := []*riff.Descriptor{
		m.generateMainHeader(),
		m.generateVideoStreamList(),
	}
	if m.audio != nil {
		children = append(children, m.generateAudioStreamList())
	}
	return generateList("hdrl", children...)
}

func (m *Muxer) generateMainHeader() *riff.Descriptor {
	return generateChunk("avih", riff.Define(
		riff.Uint32(uint32(microsecPerSec/m.frameRate)), // dwMicroSecPerFrame.
		riff.Uint32(uint32(m.maxFrameSize*m.frameRate)), // dwMaxBytesPerSec.
		riff.Uint32(0),                     // dwPaddingGranularity.
		riff.Uint32(hasIndexFlag),          // dwFlags.
		riff.Uint32(uint32(len(m.frames))), // dwTotalFrames.
		riff.Uint32(0),                     // dwInitialFrames.
		riff.Uint32(declaredStreamCount),   // dwStreams.
		riff.Uint32(0),                     // dwSuggestedBufferSize.
		riff.Uint32(uint32(m.width)),       // dwWidth.
		riff.Uint32(uint32(m.height)),      // dwHeight.
		riff.Uint32(0), riff.Uint32(0),     // dwReserved.
		riff.Uint32(0), riff.Uint32(0),
	))
}

func (m *Muxer) generateVideoStreamList() *riff.Descriptor {
	strh := generateChunk("strh", riff.Define(
		riff.Chars("vids"), // fccType.
		riff.Chars("MJPG"), // fccHandler.
		riff.Uint32(0),     // dwFlags.
		riff.Uint16(0),     // wPriority.
		riff.Uint16(0),     // wLanguage.
		riff.Uint32(0),     // dwInitialFrames.
		riff.Uint32(uint32(microsecPerSec/m.frameRate)), // dwScale, frame duration.
		riff.Uint32(microsecPerSec),                     // dwRate.
		riff.Uint32(0),                                  // dwStart.
		riff.Uint32(uint32(len(m.frames))),              // dwLength.
		riff.Uint32(0),                                  // dwSuggestedBufferSize.
		riff.Uint32(0),                                  // dwQuality.
		riff.Uint32(0),                                  // dwSampleSize.
		riff.Uint16(0),                                  // rcFrame left.
		riff.Uint16(0),                                  // rcFrame top.
		riff.Uint16(uint16(m.width)),                    // rcFrame right.
		riff.Uint16(uint16(m.height)),                   // rcFrame bottom.
	))

	strf := generateChunk("strf", riff.Define(
		riff.Uint32(videoFormatSize),            // biSize.
		riff.Uint32(uint32(m.width)),            // biWidth.
		riff.Uint32(uint32(m.height)),           // biHeight.
		riff.Uint16(1),                          // biPlanes.
		riff.Uint16(24),                         // biBitCount.
		riff.Chars("MJPG"),                      // biCompression.
		riff.Uint32(uint32(3*m.width*m.height)), // biSizeImage, uncompressed equivalent.
		riff.Uint32(0),                          // biXPelsPerMeter.
		riff.Uint32(0),                          // biYPelsPerMeter.
		riff.Uint32(0),                          // biClrUsed.
		riff.Uint32(0),                          // biClrImportant.
	))

	return generateList("strl", strh, strf)
}

func (m *Muxer) generateAudioStreamList() *riff.Descriptor {
	rate := m.audio.channels * m.audio.sampleRate

	strh := generateChunk("strh", riff.Define(
		riff.Chars("auds"),        // fccType.
		riff.Uint32(0),            // fccHandler.
		riff.Uint32(0),            // dwFlags.
		riff.Uint16(0),            // wPriority.
		riff.Uint16(0),            // wLanguage.
		riff.Uint32(0),            // dwInitialFrames.
		riff.Uint32(1),            // dwScale, duration units are samples.
		riff.Uint32(uint32(rate)), // dwRate.
		riff.Uint32(0),            // dwStart.
		// Stream length approximates the video's nominal duration.
		riff.Uint32(uint32(rate*len(m.frames)/m.frameRate)), // dwLength.
		riff.Uint32(0), // dwSuggestedBufferSize.
		riff.Uint32(0), // dwQuality.
		riff.Uint32(2), // dwSampleSize.
		riff.Uint16(0), // rcFrame left.
		riff.Uint16(0), // rcFrame top.
		riff.Uint16(0), // rcFrame right.
		riff.Uint16(0), // rcFrame bottom.
	))

	strf := generateChunk("strf", riff.Define(
		riff.Uint16(1),                          // wFormatTag, PCM.
		riff.Uint16(uint16(m.audio.channels)),   // nChannels.
		riff.Uint32(uint32(m.audio.sampleRate)), // nSamplesPerSec.
		// sic, the bytes-per-sample factor is not included.
		riff.Uint32(uint32(m.audio.sampleRate*m.audio.channels)), // nAvgBytesPerSec.
		riff.Uint16(2),  // nBlockAlign.
		riff.Uint16(16), // wBitsPerSample.
	))

	return generateList("strl", strh, strf)
}

func generateIndex(entries []indexEntry) *riff.Descriptor {
	rows := make([]*riff.Descriptor, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, riff.Define(
			riff.Chars(e.tag),
			riff.Uint32(e.flags),
			riff.Uint32(e.offset),
			riff.Uint32(e.length),
		))
	}
	return generateChunk("idx1", riff.Define(riff.Array(rows...)))
}
