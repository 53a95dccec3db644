package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/vidscribe/vidscribe/internal/config"
	"github.com/vidscribe/vidscribe/internal/logging"
)

// Store persists task artifacts (subtitle text, video bytes) to object
// storage and hands back durable public URLs.
type Store struct {
	client     *minio.Client
	bucketName string
	baseURL    string
	logger     *logging.Logger
}

// New creates a new artifact store. Missing credentials fail here; this is a
// configuration error, not a retryable condition.
func New(cfg config.StorageConfig, logger *logging.Logger) (*Store, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, fmt.Errorf("storage credentials are not set")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	// Ensure bucket exists
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{
			Region: cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.BucketName)
	}

	return &Store{
		client:     client,
		bucketName: cfg.BucketName,
		baseURL:    baseURL,
		logger:     logger,
	}, nil
}

// SaveText stores text content and returns its public URL
func (s *Store) SaveText(ctx context.Context, objectName, content, contentType string) (string, error) {
	return s.SaveBytes(ctx, objectName, []byte(content), contentType)
}

// SaveBytes stores binary content and returns its public URL
func (s *Store) SaveBytes(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	start := time.Now()
	_, err := s.client.PutObject(ctx, s.bucketName, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	s.logger.LogStorageOperation("put", objectName, int64(len(data)), time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	return s.ObjectURL(objectName), nil
}

// ObjectURL returns the public URL for an object name
func (s *Store) ObjectURL(objectName string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, objectName)
}

// SubtitlePath builds the storage path for a subtitle artifact. The language
// suffix is present only for translated subtitles.
func SubtitlePath(id, lang string) string {
	if lang != "" {
		return fmt.Sprintf("subtitles/%s-%s.srt", id, lang)
	}
	return fmt.Sprintf("subtitles/%s.srt", id)
}

// VideoPath builds the storage path for a video artifact
func VideoPath(id, ext string) string {
	if ext == "" {
		ext = "mp4"
	}
	return fmt.Sprintf("videos/%s.%s", id, ext)
}
