package storage

import (
	"testing"

	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/logging"
)

func TestSubtitlePath(t *testing.T) {
	tests := []struct {
		id   string
		lang string
		want string
	}{
		{"task-1", "", "subtitles/task-1.srt"},
		{"task-1", "es", "subtitles/task-1-es.srt"},
		{"task-2", "zh-CN", "subtitles/task-2-zh-CN.srt"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := SubtitlePath(tt.id, tt.lang); got != tt.want {
				t.Errorf("SubtitlePath(%q, %q) = %q, want %q", tt.id, tt.lang, got, tt.want)
			}
		})
	}
}

func TestVideoPath(t *testing.T) {
	tests := []struct {
		id   string
		ext  string
		want string
	}{
		{"task-1", "", "videos/task-1.mp4"},
		{"task-1", "mp4", "videos/task-1.mp4"},
		{"task-2", "webm", "videos/task-2.webm"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := VideoPath(tt.id, tt.ext); got != tt.want {
				t.Errorf("VideoPath(%q, %q) = %q, want %q", tt.id, tt.ext, got, tt.want)
			}
		})
	}
}

func TestNewMissingCredentials(t *testing.T) {
	logger, err := logging.NewDefaultLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	_, err = New(config.StorageConfig{Endpoint: "localhost:9000"}, logger)
	if err == nil {
		t.Fatal("Expected error for missing credentials")
	}
}
