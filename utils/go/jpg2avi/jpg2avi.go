// Package jpg2avi is a CLI utility that packages captured JPEG frames
// and an optional WAVE capture into a stored AVI recording.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"camrec/pkg/avi"
	"camrec/pkg/jpeg"
	"camrec/pkg/storage"
	"camrec/pkg/wav"
)

const usage = `package jpeg frames into an avi recording
example: jpg2avi ./env.yaml ./frames [audio.wav]`

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	args := os.Args
	if len(args) != 3 && len(args) != 4 {
		fmt.Println(usage)
		return nil
	}

	envYAML, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	env, err := storage.NewConfigEnv(envYAML)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	framePaths, err := findFrames(args[2])
	if err != nil {
		return err
	}
	if len(framePaths) == 0 {
		return fmt.Errorf("no jpeg frames in %v", args[2])
	}

	frames := make([][]byte, 0, len(framePaths))
	for _, path := range framePaths {
		frame, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}
		frames = append(frames, frame)
	}

	width, height := env.Width, env.Height
	if width == 0 || height == 0 {
		width, height, err = jpeg.Dimensions(frames[0])
		if err != nil {
			return fmt.Errorf("probe frame size: %w", err)
		}
	}

	muxer := avi.NewMuxer(width, height, env.FrameRate)
	for _, frame := range frames {
		muxer.AddFrame(frame)
	}

	if len(args) == 4 {
		buf, err := os.ReadFile(args[3])
		if err != nil {
			return fmt.Errorf("read audio: %w", err)
		}
		track, err := wav.Decode(buf)
		if err != nil {
			return fmt.Errorf("decode audio: %w", err)
		}
		muxer.SetAudio(track.Data, track.Channels, track.SampleRate)
	}

	video, err := muxer.Build()
	if err != nil {
		return fmt.Errorf("build avi: %w", err)
	}

	now := time.Now()
	duration := time.Duration(len(frames)) * time.Second / time.Duration(env.FrameRate)
	recording, err := env.SaveRecording(
		now.Format("2006-01-02_15-04-05"),
		video,
		storage.RecordingData{
			Start:      now,
			End:        now.Add(duration),
			Width:      width,
			Height:     height,
			FrameRate:  env.FrameRate,
			FrameCount: len(frames),
		},
	)
	if err != nil {
		return fmt.Errorf("save recording: %w", err)
	}

	fmt.Printf("saved %v.avi (%v frames, %v bytes)\n",
		recording.Path, len(frames), len(video))
	return nil
}

func findFrames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
