package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mindflowai/mindflow/internal/models"
	"github.com/mindflowai/mindflow/internal/reference"
)

// FileStorage implements Store using a JSON file
type FileStorage struct {
	filePath string
	mu       sync.RWMutex
	data     *models.Outbox
	logger   *slog.Logger
	now      func() time.Time
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(filePath string, logger *slog.Logger) (*FileStorage, error) {
	fs := &FileStorage{
		filePath: filePath,
		logger:   logger,
		now:      time.Now,
	}

	if err := fs.load(); err != nil {
		return nil, fmt.Errorf("failed to load storage: %w", err)
	}

	return fs, nil
}

// load reads the outbox from file, starting empty when the file is missing.
// The file is only created on the first write.
func (fs *FileStorage) load() error {
	fileData, err := os.ReadFile(fs.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			fs.data = models.NewOutbox()
			fs.logger.Debug("Storage file not found, starting with empty outbox",
				"file_path", fs.filePath)
			return nil
		}
		return fmt.Errorf("failed to read storage file: %w", err)
	}

	var data models.Outbox
	if err := json.Unmarshal(fileData, &data); err != nil {
		return fmt.Errorf("failed to parse storage file (invalid JSON syntax): %w", err)
	}

	if data.References == nil {
		data.References = make(map[string]*models.StagedReference)
	}

	fs.data = &data
	fs.logger.Debug("Storage file loaded",
		"file_path", fs.filePath,
		"reference_count", len(fs.data.References))

	return nil
}

// saveToFile writes data to file atomically (temp file + rename)
func (fs *FileStorage) saveToFile() error {
	jsonData, err := json.MarshalIndent(fs.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal storage: %w", err)
	}

	dir := filepath.Dir(fs.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".staged-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	// Ensure temp file cleanup on error
	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tempFile = nil // Prevent deferred cleanup

	if err := os.Rename(tempPath, fs.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// snapshot copies the current entries so a failed write can be rolled back
func (fs *FileStorage) snapshot() map[string]*models.StagedReference {
	saved := make(map[string]*models.StagedReference, len(fs.data.References))
	for k, v := range fs.data.References {
		saved[k] = v
	}
	return saved
}

// persist writes the outbox, restoring saved on failure
func (fs *FileStorage) persist(operation string, saved map[string]*models.StagedReference) error {
	if err := fs.saveToFile(); err != nil {
		fs.data.References = saved
		fs.logger.Error("Storage write failed",
			"operation", operation,
			"file_path", fs.filePath,
			"error", err)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Stage implements Store
func (fs *FileStorage) Stage(ctx context.Context, refs []reference.Reference) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	saved := fs.snapshot()
	now := fs.now()
	for _, ref := range refs {
		staged := models.NewStagedReference(ref, now)
		fs.data.References[staged.AbsPath] = staged
	}

	if err := fs.persist("stage", saved); err != nil {
		return err
	}

	fs.logger.Debug("References staged", "count", len(refs))
	return nil
}

// List implements Store
func (fs *FileStorage) List(ctx context.Context) ([]*models.StagedReference, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	result := make([]*models.StagedReference, 0, len(fs.data.References))
	for _, ref := range fs.data.References {
		result = append(result, ref)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AbsPath < result[j].AbsPath
	})
	return result, nil
}

// Remove implements Store
func (fs *FileStorage) Remove(ctx context.Context, keys ...string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	saved := fs.snapshot()
	removed := 0
	for _, key := range keys {
		if _, exists := fs.data.References[key]; exists {
			delete(fs.data.References, key)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}

	return fs.persist("remove", saved)
}

// Clear implements Store
func (fs *FileStorage) Clear(ctx context.Context) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	saved := fs.snapshot()
	fs.data.References = make(map[string]*models.StagedReference)
	return fs.persist("clear", saved)
}

// Count implements Store
func (fs *FileStorage) Count(ctx context.Context) (int, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return len(fs.data.References), nil
}

// Close implements Store
func (fs *FileStorage) Close() error {
	return nil
}
