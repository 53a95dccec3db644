package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/vidscribe/vidscribe/pkg/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	// Create a mini Redis server for testing
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	cache, err := NewCache(mr.Host(), mr.Server().Addr().Port, "", 0)
	if err != nil {
		mr.Close()
		t.Fatalf("Failed to create cache: %v", err)
	}

	return cache, mr
}

func TestNewCache(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	if err := cache.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestTaskDetailRoundTrip(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()
	detail := &models.TaskDetail{
		Task: &models.Task{
			ID:       "task-1",
			URL:      "https://youtu.be/abc123",
			Platform: models.PlatformYouTube,
			Status:   models.TaskStatusCompleted,
		},
		Translations: []*models.Translation{
			{ID: "trans-1", TaskID: "task-1", TargetLanguage: "es", Status: models.TranslationStatusCompleted},
		},
	}

	if err := cache.SetTaskDetail(ctx, detail, time.Minute); err != nil {
		t.Fatalf("SetTaskDetail failed: %v", err)
	}

	got, err := cache.GetTaskDetail(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetTaskDetail failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected cached detail, got nil")
	}
	if got.Task.Status != models.TaskStatusCompleted {
		t.Errorf("Unexpected status: %s", got.Task.Status)
	}
	if len(got.Translations) != 1 || got.Translations[0].TargetLanguage != "es" {
		t.Errorf("Unexpected translations: %+v", got.Translations)
	}
}

func TestGetTaskDetailMiss(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	got, err := cache.GetTaskDetail(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetTaskDetail failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil on cache miss, got %+v", got)
	}
}

func TestInvalidateTask(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()
	detail := &models.TaskDetail{
		Task: &models.Task{ID: "task-1", Status: models.TaskStatusProcessing},
	}

	if err := cache.SetTaskDetail(ctx, detail, time.Minute); err != nil {
		t.Fatalf("SetTaskDetail failed: %v", err)
	}

	if err := cache.InvalidateTask(ctx, "task-1"); err != nil {
		t.Fatalf("InvalidateTask failed: %v", err)
	}

	got, err := cache.GetTaskDetail(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetTaskDetail failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil after invalidation, got %+v", got)
	}
}

func TestTaskDetailExpiry(t *testing.T) {
	cache, mr := setupTestCache(t)
	defer mr.Close()
	defer cache.Close()

	ctx := context.Background()
	detail := &models.TaskDetail{
		Task: &models.Task{ID: "task-1", Status: models.TaskStatusProcessing},
	}

	if err := cache.SetTaskDetail(ctx, detail, time.Second); err != nil {
		t.Fatalf("SetTaskDetail failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	got, err := cache.GetTaskDetail(ctx, "task-1")
	if err != nil {
		t.Fatalf("GetTaskDetail failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil after TTL expiry, got %+v", got)
	}
}
