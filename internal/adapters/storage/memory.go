package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MemoryService keeps uploaded objects in process memory.
// It backs the development mode without MinIO and the package tests.
type MemoryService struct {
	mu      sync.Mutex
	objects map[string][]byte
	buckets map[string]bool
}

// NewMemoryService creates an empty in-memory store.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		objects: make(map[string][]byte),
		buckets: make(map[string]bool),
	}
}

func (s *MemoryService) EnsureBucketExists(_ context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = true
	return nil
}

func (s *MemoryService) UploadLocalFile(ctx context.Context, bucket, folder, localPath, contentType string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", localPath, err)
	}
	return s.UploadBytes(ctx, bucket, folder, filepath.Base(localPath), contentType, data)
}

func (s *MemoryService) UploadBytes(_ context.Context, bucket, folder, fileName, _ string, data []byte) (string, error) {
	key := objectKey(folder, fileName)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return "memory://" + bucket + "/" + key, nil
}

// Len returns the number of stored objects.
func (s *MemoryService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

var _ StorageService = (*MemoryService)(nil)
