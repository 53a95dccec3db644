// Package pipeline owns the task and translation state machines. It drives
// extraction, artifact persistence and translation, and is the sole writer
// of status transitions.
package pipeline

import (
	"context"
	"errors"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vidscribe/vidscribe/internal/extractor"
	"github.com/vidscribe/vidscribe/internal/logging"
	"github.com/vidscribe/vidscribe/pkg/models"
)

// Resume runs with fixed language and region; they are not parameterized at
// resume time.
const (
	defaultLang   = "en"
	defaultRegion = "US"
)

var (
	// ErrTaskNotFound is returned when the referenced task does not exist
	ErrTaskNotFound = errors.New("task not found")
	// ErrNoSubtitle is returned when translating a task without a stored subtitle
	ErrNoSubtitle = errors.New("task has no subtitle url")
	// ErrURLRequired is returned when a create request is missing its URL
	ErrURLRequired = errors.New("url is required")
	// ErrPlatformRequired is returned when a create request is missing its platform
	ErrPlatformRequired = errors.New("platform is required")
	// ErrInvalidPlatform is returned for an unsupported platform value
	ErrInvalidPlatform = errors.New("unsupported platform")
)

// Repository is the persistence surface the pipeline drives. GetTask returns
// an error satisfying errors.Is(err, ErrTaskNotFound) for unknown ids.
type Repository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, id, status string) error
	MarkTaskFailed(ctx context.Context, id, errMsg string) error
	UpdateTaskResult(ctx context.Context, task *models.Task) error
	UpdateTaskCore(ctx context.Context, task *models.Task) error
	CreateTranslation(ctx context.Context, translation *models.Translation) error
	CompleteTranslation(ctx context.Context, id, translatedSrtURL string) error
	MarkTranslationFailed(ctx context.Context, id, errMsg string) error
	GetTranslationsByTaskID(ctx context.Context, taskID string) ([]*models.Translation, error)
}

// ArtifactStore persists derived artifacts and returns their public URLs
type ArtifactStore interface {
	SaveText(ctx context.Context, objectName, content, contentType string) (string, error)
	SaveBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
}

// Extractor calls the extraction backend for a platform
type Extractor interface {
	Extract(ctx context.Context, input, platform, lang, region string) *extractor.Result
}

// Translator translates a batch of text segments, preserving order and length
type Translator interface {
	TranslateTexts(ctx context.Context, texts []string, target string) ([]string, error)
}

// StatusCache caches task status payloads. Optional; a nil cache disables it.
type StatusCache interface {
	GetTaskDetail(ctx context.Context, taskID string) (*models.TaskDetail, error)
	SetTaskDetail(ctx context.Context, detail *models.TaskDetail, ttl time.Duration) error
	InvalidateTask(ctx context.Context, taskID string) error
}

// Service orchestrates tasks and translations
type Service struct {
	repo       Repository
	store      ArtifactStore
	extractor  Extractor
	translator Translator
	cache      StatusCache
	fetch      *http.Client
	logger     *logging.Logger
	statusTTL  time.Duration

	group singleflight.Group
}

// Options tunes optional service behavior
type Options struct {
	// Cache for status reads; nil disables caching
	Cache StatusCache
	// StatusTTL bounds staleness of cached status payloads
	StatusTTL time.Duration
	// FetchTimeout bounds outbound artifact fetches (video bytes, stored SRT)
	FetchTimeout time.Duration
}

// New creates a new pipeline service
func New(repo Repository, store ArtifactStore, ext Extractor, tr Translator, logger *logging.Logger, opts Options) *Service {
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 10 * time.Minute
	}

	statusTTL := opts.StatusTTL
	if statusTTL == 0 {
		statusTTL = 30 * time.Second
	}

	return &Service{
		repo:       repo,
		store:      store,
		extractor:  ext,
		translator: tr,
		cache:      opts.Cache,
		fetch:      &http.Client{Timeout: fetchTimeout},
		logger:     logger,
		statusTTL:  statusTTL,
	}
}

func (s *Service) invalidate(ctx context.Context, taskID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTask(ctx, taskID); err != nil {
		s.logger.WithTaskID(taskID).WithError(err).Warn("Failed to invalidate status cache")
	}
}
