package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/logging"
	"github.com/vidscribe/vidscribe/pkg/models"
)

func newTestClient(t *testing.T, youtubeURL, tiktokURL string) *Client {
	t.Helper()

	logger, err := logging.NewDefaultLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	client, err := New(config.ExtractorConfig{
		APIKey:         "test-key",
		YouTubeBaseURL: youtubeURL,
		TikTokBaseURL:  tiktokURL,
		Timeout:        5 * time.Second,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return client
}

func TestNewMissingAPIKey(t *testing.T) {
	logger, _ := logging.NewDefaultLogger()
	_, err := New(config.ExtractorConfig{}, logger)
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{3661.234, "01:01:01,234"},
		{2.5, "00:00:02,500"},
		{59.9999, "00:00:59,999"},
		{3600, "01:00:00,000"},
		{90.1, "00:01:30,100"},
		{1.001, "00:00:01,001"},
		{7.007, "00:00:07,007"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTime(tt.seconds); got != tt.want {
				t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestConvertToSRT(t *testing.T) {
	captions := []Caption{
		{Start: 0, Duration: 2, Text: "Hello", hasDuration: true},
		{Start: 2, End: 4.5, Text: "World", hasEnd: true},
	}

	srt := ConvertToSRT(captions)
	want := "1\n00:00:00,000 --> 00:00:02,000\nHello\n\n" +
		"2\n00:00:02,000 --> 00:00:04,500\nWorld\n\n"

	if srt != want {
		t.Errorf("ConvertToSRT mismatch:\ngot:\n%q\nwant:\n%q", srt, want)
	}
}

func TestConvertToSRTEmpty(t *testing.T) {
	if got := ConvertToSRT(nil); got != "" {
		t.Errorf("Expected empty SRT for no captions, got %q", got)
	}
}

func TestExtractYouTubeTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-rapidapi-key") != "test-key" {
			t.Errorf("Missing API key header")
		}
		if got := r.URL.Query().Get("video_id"); got != "abc123" {
			t.Errorf("Unexpected video_id: %q", got)
		}
		w.Write([]byte(`{
			"title": "Test Video",
			"author": "Tester",
			"viewCount": 1000,
			"transcript": [
				{"start": 0, "duration": 2, "text": "Hello"},
				{"start": 2, "duration": 2.5, "text": "World"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	result := client.Extract(context.Background(), "abc123", models.PlatformYouTube, "en", "US")

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.ErrorMessage)
	}
	if !strings.Contains(result.SRTContent, "00:00:02,000 --> 00:00:04,500") {
		t.Errorf("Unexpected SRT content:\n%s", result.SRTContent)
	}
	if result.Metadata.Title != "Test Video" {
		t.Errorf("Unexpected title: %q", result.Metadata.Title)
	}
	if result.Metadata.ViewCount == nil || *result.Metadata.ViewCount != 1000 {
		t.Errorf("Unexpected view count: %v", result.Metadata.ViewCount)
	}
	if result.Metadata.ShareCount != nil {
		t.Error("Expected absent share count to stay nil")
	}
	if result.Raw == nil {
		t.Error("Expected raw backend response to be carried")
	}
}

func TestExtractYouTubeBareArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"start": 0, "duration": 1, "text": "Hi"}]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	result := client.Extract(context.Background(), "abc123", models.PlatformYouTube, "en", "US")

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.ErrorMessage)
	}
	if !strings.HasPrefix(result.SRTContent, "1\n00:00:00,000 --> 00:00:01,000\nHi\n") {
		t.Errorf("Unexpected SRT content:\n%s", result.SRTContent)
	}
}

func TestExtractBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("quota exceeded"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	result := client.Extract(context.Background(), "abc123", models.PlatformYouTube, "en", "US")

	if result.Success {
		t.Fatal("Expected failure result")
	}
	if !strings.Contains(result.ErrorMessage, "429") || !strings.Contains(result.ErrorMessage, "quota exceeded") {
		t.Errorf("Error message should carry status and body, got: %q", result.ErrorMessage)
	}
}

func TestExtractTikTokSubtitles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("region"); got != "US" {
			t.Errorf("Unexpected region: %q", got)
		}
		w.Write([]byte(`{
			"video_url": "https://cdn.example.com/v.mp4",
			"author": "someone",
			"likes": 42,
			"subtitle": [{"start": 0, "duration": 1, "text": "Hola"}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	result := client.Extract(context.Background(), "https://tiktok.com/@x/video/1", models.PlatformTikTok, "en", "US")

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.ErrorMessage)
	}
	if result.VideoContentURL != "https://cdn.example.com/v.mp4" {
		t.Errorf("Unexpected video URL: %q", result.VideoContentURL)
	}
	if !strings.Contains(result.SRTContent, "Hola") {
		t.Errorf("Expected subtitle content, got:\n%s", result.SRTContent)
	}
	if result.Metadata.LikeCount == nil || *result.Metadata.LikeCount != 42 {
		t.Errorf("Unexpected like count: %v", result.Metadata.LikeCount)
	}
}

func TestExtractTikTokDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"download_url": "https://cdn.example.com/dl.mp4"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, server.URL)
	result := client.Extract(context.Background(), "https://tiktok.com/@x/video/1", models.PlatformTikTokDownload, "en", "US")

	if !result.Success {
		t.Fatalf("Expected success, got error: %s", result.ErrorMessage)
	}
	if result.VideoContentURL != "https://cdn.example.com/dl.mp4" {
		t.Errorf("Unexpected video URL: %q", result.VideoContentURL)
	}
	if result.SRTContent != "" {
		t.Errorf("Download platform should not produce subtitles, got:\n%s", result.SRTContent)
	}
}
