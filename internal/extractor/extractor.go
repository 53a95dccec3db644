// Package extractor calls third-party extraction backends and normalizes
// their responses into a single Result shape.
package extractor

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/logging"
	"github.com/vidscribe/vidscribe/pkg/models"
)

// Result is the uniform outcome of an extraction call. Backend-reported
// failures come back as Success=false with ErrorMessage set; they are not
// surfaced as Go errors.
type Result struct {
	Success         bool        `json:"success"`
	SRTContent      string      `json:"srt_content,omitempty"`
	VideoContentURL string      `json:"video_content_url,omitempty"`
	ErrorMessage    string      `json:"error_message,omitempty"`
	Metadata        *Metadata   `json:"metadata,omitempty"`
	// Raw carries the backend-native response untouched. Callers needing
	// backend-specific data must treat it as untyped.
	Raw interface{} `json:"raw,omitempty"`
}

// Metadata holds best-effort video metadata from the backend. Nil pointers
// and empty strings mean the backend did not supply the field.
type Metadata struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Description  string `json:"description,omitempty"`
	LikeCount    *int64 `json:"like_count,omitempty"`
	ViewCount    *int64 `json:"view_count,omitempty"`
	ShareCount   *int64 `json:"share_count,omitempty"`
	CommentCount *int64 `json:"comment_count,omitempty"`
	Duration     *int64 `json:"duration,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty"`
}

// Client calls the extraction backends
type Client struct {
	apiKey         string
	youtubeBaseURL string
	tiktokBaseURL  string
	client         *http.Client
	logger         *logging.Logger
}

// New creates a new extraction client. A missing API key is a configuration
// error and is rejected here, before any network call can happen.
func New(cfg config.ExtractorConfig, logger *logging.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extractor API key is not set")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}

	return &Client{
		apiKey:         cfg.APIKey,
		youtubeBaseURL: cfg.YouTubeBaseURL,
		tiktokBaseURL:  cfg.TikTokBaseURL,
		client:         &http.Client{Timeout: timeout},
		logger:         logger,
	}, nil
}

// Extract dispatches to the backend for the given platform. The input is a
// resolved video id for youtube and a video URL for the tiktok platforms.
func (c *Client) Extract(ctx context.Context, input, platform, lang, region string) *Result {
	start := time.Now()

	var result *Result
	switch platform {
	case models.PlatformYouTube:
		result = c.fetchYouTubeTranscript(ctx, input, lang)
	case models.PlatformTikTokDownload:
		result = c.fetchTikTokDownload(ctx, input, region)
	default:
		result = c.fetchTikTokSubtitles(ctx, input, region)
	}

	c.logger.LogExtractionCall(platform, input, result.Success, time.Since(start))
	return result
}
