// Package storage persists finished recordings and their metadata.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Recording contains identifier and path.
// `.avi` or `.json` can be appended to the path to get
// the video or data file.
type Recording struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// RecordingData is saved next to the video file.
type RecordingData struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	FrameRate  int       `json:"frameRate"`
	FrameCount int       `json:"frameCount"`
}

// SaveRecording writes the video and its data file into the recordings
// directory, creating the directory if needed.
func (env ConfigEnv) SaveRecording(
	id string,
	video []byte,
	data RecordingData,
) (Recording, error) {
	dir := env.RecordingsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Recording{}, fmt.Errorf("create recordings directory: %w", err)
	}

	path := filepath.Join(dir, id)
	if err := os.WriteFile(path+".avi", video, 0o600); err != nil {
		return Recording{}, fmt.Errorf("write video: %w", err)
	}

	dataJSON, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return Recording{}, fmt.Errorf("marshal recording data: %w", err)
	}
	if err := os.WriteFile(path+".json", dataJSON, 0o600); err != nil {
		return Recording{}, fmt.Errorf("write recording data: %w", err)
	}

	return Recording{ID: id, Path: path}, nil
}

// ListRecordings returns the stored recordings sorted by ID.
func (env ConfigEnv) ListRecordings() ([]Recording, error) {
	dir := env.RecordingsDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recordings directory: %w", err)
	}

	var recordings []Recording
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".avi") {
			continue
		}
		id := strings.TrimSuffix(name, ".avi")
		recordings = append(recordings, Recording{
			ID:   id,
			Path: filepath.Join(dir, id),
		})
	}
	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].ID < recordings[j].ID
	})
	return recordings, nil
}

// ReadRecordingData reads the data file belonging to a recording.
func ReadRecordingData(recording Recording) (*RecordingData, error) {
	raw, err := os.ReadFile(recording.Path + ".json")
	if err != nil {
		return nil, fmt.Errorf("read recording data: %w", err)
	}
	var data RecordingData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("unmarshal recording data: %w", err)
	}
	return &data, nil
}

// ConfigEnv stores recorder configuration.
type ConfigEnv struct {
	StorageDir string `yaml:"storageDir"`
	FrameRate  int    `yaml:"frameRate"`

	// Frame size. Zero means probe it from the first frame.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Errors.
var (
	ErrInvalidStorageDir = errors.New("invalid storage directory")
	ErrInvalidFrameRate  = errors.New("invalid frame rate")
)

// NewConfigEnv returns a validated environment configuration.
func NewConfigEnv(envYAML []byte) (*ConfigEnv, error) {
	var env ConfigEnv
	if err := yaml.Unmarshal(envYAML, &env); err != nil {
		return nil, fmt.Errorf("unmarshal env.yaml: %w", err)
	}

	if env.StorageDir == "" {
		env.StorageDir = "./storage"
	}
	if env.FrameRate == 0 {
		env.FrameRate = 10
	}
	if env.FrameRate < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameRate, env.FrameRate)
	}

	var err error
	env.StorageDir, err = filepath.Abs(env.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStorageDir, err)
	}
	return &env, nil
}

// RecordingsDir returns the path to the recordings directory.
func (env ConfigEnv) RecordingsDir() string {
	return filepath.Join(env.StorageDir, "recordings")
}
