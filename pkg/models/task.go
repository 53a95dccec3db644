package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Task represents one extraction job for a single source URL
type Task struct {
	ID          string `json:"id" db:"id"`
	URL         string `json:"url" db:"url"`
	Platform    string `json:"platform" db:"platform"`
	Status      string `json:"status" db:"status"`
	ServiceType string `json:"service_type,omitempty" db:"service_type"`
	UserID      string `json:"user_id,omitempty" db:"user_id"`

	// Artifacts, populated only on completion
	OriginalSrtURL string `json:"original_srt_url,omitempty" db:"original_srt_url"`
	VideoURL       string `json:"video_url,omitempty" db:"video_url"`

	// Failure detail, set only on failed
	Error string `json:"error,omitempty" db:"error"`

	// Best-effort video metadata from the extraction backend
	VideoTitle       string   `json:"video_title,omitempty" db:"video_title"`
	VideoAuthor      string   `json:"video_author,omitempty" db:"video_author"`
	VideoDescription string   `json:"video_description,omitempty" db:"video_description"`
	LikeCount        *int64   `json:"like_count,omitempty" db:"like_count"`
	ViewCount        *int64   `json:"view_count,omitempty" db:"view_count"`
	ShareCount       *int64   `json:"share_count,omitempty" db:"share_count"`
	CommentCount     *int64   `json:"comment_count,omitempty" db:"comment_count"`
	VideoDuration    *int64   `json:"video_duration,omitempty" db:"video_duration"`
	VideoThumbnail   string   `json:"video_thumbnail,omitempty" db:"video_thumbnail"`
	VideoMetadata    Metadata `json:"video_metadata,omitempty" db:"video_metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Metadata holds the raw backend-native metadata blob
type Metadata map[string]interface{}

// Value implements driver.Valuer for database storage
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for database retrieval
func (m *Metadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(Metadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// TaskStatus constants
const (
	TaskStatusPending        = "pending"
	TaskStatusProcessing     = "processing"
	TaskStatusCompleted      = "completed"
	TaskStatusFailed         = "failed"
	TaskStatusPaymentPending = "payment_pending"
)

// Platform constants
const (
	PlatformYouTube        = "youtube"
	PlatformTikTok         = "tiktok"
	PlatformTikTokDownload = "tiktok-download"
)

// ServiceType constants
const (
	ServiceTypeExtractSubtitle = "EXTRACT_SUBTITLE"
	ServiceTypeDownloadVideo   = "DOWNLOAD_VIDEO"
)

// ValidPlatform reports whether p is a supported platform
func ValidPlatform(p string) bool {
	switch p {
	case PlatformYouTube, PlatformTikTok, PlatformTikTokDownload:
		return true
	}
	return false
}

// TaskDetail bundles a task with its translations for status responses
type TaskDetail struct {
	Task         *Task          `json:"task"`
	Translations []*Translation `json:"translations"`
}
