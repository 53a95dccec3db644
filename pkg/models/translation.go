package models

import "time"

// Translation represents one language-specific derivative of a task's subtitle
type Translation struct {
	ID               string    `json:"id" db:"id"`
	TaskID           string    `json:"task_id" db:"task_id"`
	TargetLanguage   string    `json:"target_language" db:"target_language"`
	Status           string    `json:"status" db:"status"`
	TranslatedSrtURL string    `json:"translated_srt_url,omitempty" db:"translated_srt_url"`
	Error            string    `json:"error,omitempty" db:"error"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// TranslationStatus constants
const (
	TranslationStatusPending    = "pending"
	TranslationStatusProcessing = "processing"
	TranslationStatusCompleted  = "completed"
	TranslationStatusFailed     = "failed"
)
