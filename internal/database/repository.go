package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/vidscribe/vidscribe/pkg/models"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// Repository provides database operations for tasks and translations
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Health checks database connectivity
func (r *Repository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

// Tasks

const taskColumns = `id, url, platform, status, service_type, user_id,
       original_srt_url, video_url, error,
       video_title, video_author, video_description, like_count, view_count,
       share_count, comment_count, video_duration, video_thumbnail, video_metadata,
       created_at, updated_at`

// CreateTask creates a new task record
func (r *Repository) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	query := `
		INSERT INTO tasks (id, url, platform, status, service_type, user_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		task.ID, task.URL, task.Platform, task.Status, task.ServiceType, task.UserID,
	).Scan(&task.CreatedAt, &task.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// GetTask retrieves a task by ID
func (r *Repository) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	var serviceType, userID, originalSrtURL, videoURL, errMsg *string
	var videoTitle, videoAuthor, videoDescription, videoThumbnail *string

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&task.ID, &task.URL, &task.Platform, &task.Status, &serviceType, &userID,
		&originalSrtURL, &videoURL, &errMsg,
		&videoTitle, &videoAuthor, &videoDescription, &task.LikeCount, &task.ViewCount,
		&task.ShareCount, &task.CommentCount, &task.VideoDuration, &videoThumbnail, &task.VideoMetadata,
		&task.CreatedAt, &task.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	assignString(&task.ServiceType, serviceType)
	assignString(&task.UserID, userID)
	assignString(&task.OriginalSrtURL, originalSrtURL)
	assignString(&task.VideoURL, videoURL)
	assignString(&task.Error, errMsg)
	assignString(&task.VideoTitle, videoTitle)
	assignString(&task.VideoAuthor, videoAuthor)
	assignString(&task.VideoDescription, videoDescription)
	assignString(&task.VideoThumbnail, videoThumbnail)

	return &task, nil
}

// UpdateTaskStatus updates only the status of a task
func (r *Repository) UpdateTaskStatus(ctx context.Context, id, status string) error {
	query := `UPDATE tasks SET status = $2, updated_at = now() WHERE id = $1`

	tag, err := r.db.Pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// MarkTaskFailed moves a task to failed with the captured error message
func (r *Repository) MarkTaskFailed(ctx context.Context, id, errMsg string) error {
	query := `UPDATE tasks SET status = $2, error = $3, updated_at = now() WHERE id = $1`

	_, err := r.db.Pool.Exec(ctx, query, id, models.TaskStatusFailed, errMsg)
	if err != nil {
		return fmt.Errorf("failed to mark task failed: %w", err)
	}

	return nil
}

// UpdateTaskResult persists the full extraction result: status, artifact URLs
// and all metadata fields the backend supplied.
func (r *Repository) UpdateTaskResult(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET status = $2, original_srt_url = NULLIF($3, ''), video_url = NULLIF($4, ''),
		    video_title = NULLIF($5, ''), video_author = NULLIF($6, ''),
		    video_description = NULLIF($7, ''), like_count = $8, view_count = $9,
		    share_count = $10, comment_count = $11, video_duration = $12,
		    video_thumbnail = NULLIF($13, ''), video_metadata = $14, updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query,
		task.ID, task.Status, task.OriginalSrtURL, task.VideoURL,
		task.VideoTitle, task.VideoAuthor, task.VideoDescription,
		task.LikeCount, task.ViewCount, task.ShareCount, task.CommentCount,
		task.VideoDuration, task.VideoThumbnail, task.VideoMetadata,
	)

	if err != nil {
		return fmt.Errorf("failed to update task result: %w", err)
	}

	return nil
}

// UpdateTaskCore persists only the essential completion fields. Used as the
// reduced retry when the full metadata update is rejected, so a completed
// result is never lost to a bad metadata field.
func (r *Repository) UpdateTaskCore(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks
		SET status = $2, original_srt_url = NULLIF($3, ''), video_url = NULLIF($4, ''),
		    updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, task.ID, task.Status, task.OriginalSrtURL, task.VideoURL)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

// ListTasks retrieves recent tasks, optionally filtered by owner
func (r *Repository) ListTasks(ctx context.Context, userID string, limit, offset int) ([]*models.Task, error) {
	query := `
		SELECT id, url, platform, status, COALESCE(service_type, ''), COALESCE(user_id, ''),
		       COALESCE(original_srt_url, ''), COALESCE(video_url, ''), COALESCE(error, ''),
		       created_at, updated_at
		FROM tasks
		WHERE $1 = '' OR user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var task models.Task
		err := rows.Scan(
			&task.ID, &task.URL, &task.Platform, &task.Status, &task.ServiceType, &task.UserID,
			&task.OriginalSrtURL, &task.VideoURL, &task.Error,
			&task.CreatedAt, &task.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}

	return tasks, nil
}

// Translations

// CreateTranslation creates a new translation record
func (r *Repository) CreateTranslation(ctx context.Context, translation *models.Translation) error {
	if translation.ID == "" {
		translation.ID = uuid.New().String()
	}

	query := `
		INSERT INTO translations (id, task_id, target_language, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		translation.ID, translation.TaskID, translation.TargetLanguage, translation.Status,
	).Scan(&translation.CreatedAt, &translation.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create translation: %w", err)
	}

	return nil
}

// CompleteTranslation moves a translation to completed with its artifact URL
func (r *Repository) CompleteTranslation(ctx context.Context, id, translatedSrtURL string) error {
	query := `
		UPDATE translations
		SET status = $2, translated_srt_url = $3, updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, id, models.TranslationStatusCompleted, translatedSrtURL)
	if err != nil {
		return fmt.Errorf("failed to complete translation: %w", err)
	}

	return nil
}

// MarkTranslationFailed moves a translation to failed with the captured error
func (r *Repository) MarkTranslationFailed(ctx context.Context, id, errMsg string) error {
	query := `
		UPDATE translations
		SET status = $2, error = $3, updated_at = now()
		WHERE id = $1
	`

	_, err := r.db.Pool.Exec(ctx, query, id, models.TranslationStatusFailed, errMsg)
	if err != nil {
		return fmt.Errorf("failed to mark translation failed: %w", err)
	}

	return nil
}

// GetTranslationsByTaskID retrieves all translations for a task in insertion order
func (r *Repository) GetTranslationsByTaskID(ctx context.Context, taskID string) ([]*models.Translation, error) {
	query := `
		SELECT id, task_id, target_language, status,
		       COALESCE(translated_srt_url, ''), COALESCE(error, ''),
		       created_at, updated_at
		FROM translations
		WHERE task_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get translations: %w", err)
	}
	defer rows.Close()

	var translations []*models.Translation
	for rows.Next() {
		var tr models.Translation
		err := rows.Scan(
			&tr.ID, &tr.TaskID, &tr.TargetLanguage, &tr.Status,
			&tr.TranslatedSrtURL, &tr.Error,
			&tr.CreatedAt, &tr.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		translations = append(translations, &tr)
	}

	return translations, nil
}

func assignString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
