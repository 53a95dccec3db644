package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "JSON format to stdout",
			config: Config{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
			wantErr: false,
		},
		{
			name: "Console format to stderr",
			config: Config{
				Level:  "debug",
				Format: "console",
				Output: "stderr",
			},
			wantErr: false,
		},
		{
			name: "Invalid log level defaults to info",
			config: Config{
				Level:  "invalid",
				Format: "json",
				Output: "stdout",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLogger() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && logger == nil {
				t.Error("Expected non-nil logger")
			}
		})
	}
}

func TestLoggerWithFields(t *testing.T) {
	logger, err := NewDefaultLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	withTask := logger.WithTaskID("task-123")
	if withTask == nil {
		t.Fatal("Expected non-nil logger from WithTaskID")
	}
	if withTask == logger {
		t.Error("WithTaskID should return a derived logger")
	}

	withTranslation := logger.WithTranslationID("trans-456").WithPlatform("youtube")
	if withTranslation == nil {
		t.Fatal("Expected non-nil logger from chained With helpers")
	}
}

func TestLogStorageOperation(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "storage.log")

	logger, err := NewLogger(Config{Level: "info", Format: "json", Output: logFile})
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.LogStorageOperation("put", "subtitles/task-1.srt", 2048, 15*time.Millisecond, nil)

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	line := string(data)
	for _, want := range []string{`"operation":"put"`, `"key":"subtitles/task-1.srt"`, `"size_bytes":2048`} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected log line to contain %s, got %s", want, line)
		}
	}
}
